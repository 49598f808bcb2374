package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/diogomachado-bioinfo/pubmedtools/internal/export"
	"github.com/diogomachado-bioinfo/pubmedtools/internal/store"
	"github.com/diogomachado-bioinfo/pubmedtools/pkg/types"
)

// addOutputFlags registers the output flags shared by the two retrieval
// commands.
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("json", false, "output results as JSON")
	cmd.Flags().Bool("csv", false, "output results as CSV")
	cmd.Flags().String("out", "", "write output to a file instead of stdout")
	cmd.Flags().String("save", "", "save query and results to a YAML query file")
	cmd.Flags().Bool("db", false, "record the search in the result store")
}

// writeResults renders the article table per the command's output flags.
// term and source feed the query file and the result store.
func writeResults(cmd *cobra.Command, term, source string, articles []types.Article) error {
	var w io.Writer = os.Stdout
	if outPath, _ := cmd.Flags().GetString("out"); outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	asCSV, _ := cmd.Flags().GetBool("csv")

	switch {
	case asJSON:
		if err := export.FormatJSON(articles, w); err != nil {
			return err
		}
	case asCSV:
		if err := export.FormatCSV(articles, w); err != nil {
			return err
		}
	default:
		export.FormatTable(articles, w)
	}

	if savePath, _ := cmd.Flags().GetString("save"); savePath != "" {
		if err := export.WriteQueryFile(savePath, term, source, articles); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved query file: %s\n", savePath)
	}

	if saveDB, _ := cmd.Flags().GetBool("db"); saveDB {
		s, err := store.Open(types.StoreConfig{DBPath: viper.GetString("store.db_path")})
		if err != nil {
			return err
		}
		defer s.Close()

		id, err := s.SaveSearch(term, source, articles)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved search %d (%d articles)\n", id, len(articles))
	}

	return nil
}
