// Package export renders retrieved article tables in the supported output
// formats: an aligned human-readable table, JSON, CSV, and YAML query files
// that capture a search together with its results.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/diogomachado-bioinfo/pubmedtools/pkg/types"
)

// columns are the seven output columns, in order, for CSV and table output.
var columns = []string{"pmid", "ti", "ab", "fau", "dp", "mh", "ot"}

// FormatTable writes articles as a human-readable table to w.
func FormatTable(articles []types.Article, w io.Writer) {
	if len(articles) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-10s  %-60s  %-24s  %s\n", "PMID", "Title", "Authors", "Date")
	fmt.Fprintln(w, strings.Repeat("-", 104))

	for _, a := range articles {
		fmt.Fprintf(w, "%-10d  %-60s  %-24s  %s\n",
			a.PMID, truncate(a.TI, 60), formatAuthors(a.FAU), a.DP)
	}

	fmt.Fprintf(w, "\n%d results\n", len(articles))
}

// FormatJSON writes articles as indented JSON to w.
func FormatJSON(articles []types.Article, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(articles)
}

// FormatCSV writes articles as CSV with a header row. List fields are joined
// with "; ".
func FormatCSV(articles []types.Article, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, a := range articles {
		row := []string{
			strconv.Itoa(a.PMID),
			a.TI,
			a.AB,
			strings.Join(a.FAU, "; "),
			a.DP,
			strings.Join(a.MH, "; "),
			strings.Join(a.OT, "; "),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return truncate(authors[0], 24)
	default:
		return truncate(authors[0], 17) + " et al."
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
