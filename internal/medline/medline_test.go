package medline

import (
	"errors"
	"strings"
	"testing"
)

const sampleRecord = `PMID- 36000001
DP  - 2023 Jul 13
TI  - Sequence analysis of a
      conserved protein family.
AB  - Background: proteins were analyzed.
      Results: families were found.
FAU - Machado, Diogo
FAU - Souza, Ana
MH  - Proteins/genetics
MH  - Sequence Analysis
OT  - protein family
`

func TestParseSingleRecord(t *testing.T) {
	records, err := Parse(strings.NewReader(sampleRecord))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	rec := records[0]

	if got := rec.First("PMID"); got != "36000001" {
		t.Errorf("PMID = %q, want %q", got, "36000001")
	}
	if got := rec.First("DP"); got != "2023 Jul 13" {
		t.Errorf("DP = %q, want %q", got, "2023 Jul 13")
	}

	// Continuation lines join with a single space.
	wantTI := "Sequence analysis of a conserved protein family."
	if got := rec.First("TI"); got != wantTI {
		t.Errorf("TI = %q, want %q", got, wantTI)
	}
	wantAB := "Background: proteins were analyzed. Results: families were found."
	if got := rec.First("AB"); got != wantAB {
		t.Errorf("AB = %q, want %q", got, wantAB)
	}

	// Repeated tags accumulate in order.
	if got := rec["FAU"]; len(got) != 2 || got[0] != "Machado, Diogo" || got[1] != "Souza, Ana" {
		t.Errorf("FAU = %v", got)
	}
	if got := rec["MH"]; len(got) != 2 {
		t.Errorf("MH = %v, want 2 entries", got)
	}
	if got := rec["OT"]; len(got) != 1 || got[0] != "protein family" {
		t.Errorf("OT = %v", got)
	}
}

func TestParseMultipleRecords(t *testing.T) {
	input := "PMID- 1\nTI  - First\n\nPMID- 2\nTI  - Second\n\n\nPMID- 3\n"
	records, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	for i, want := range []string{"1", "2", "3"} {
		if got := records[i].First("PMID"); got != want {
			t.Errorf("record %d PMID = %q, want %q", i, got, want)
		}
	}
}

func TestParseCRLFInput(t *testing.T) {
	input := "PMID- 7\r\nTI  - Windows\r\n      line endings.\r\n"
	records, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if got := records[0].First("TI"); got != "Windows line endings." {
		t.Errorf("TI = %q", got)
	}
}

func TestParseIgnoresMalformedLines(t *testing.T) {
	input := "PubMed search output header\nPMID- 9\nTI  - Kept\n"
	records, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(records) != 1 || records[0].First("PMID") != "9" {
		t.Fatalf("records = %v", records)
	}
}

func TestParseEmptyInput(t *testing.T) {
	records, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records, want 0", len(records))
	}
}

func TestSplitTagLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		wantTag string
		wantVal string
		wantOK  bool
	}{
		{"long tag", "PMID- 123", "PMID", "123", true},
		{"short tag", "TI  - A title", "TI", "A title", true},
		{"continuation", "      more text", "", "", false},
		{"no separator", "PMID  123", "", "", false},
		{"too short", "TI -", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tag, val, ok := splitTagLine(tt.line)
			if tag != tt.wantTag || val != tt.wantVal || ok != tt.wantOK {
				t.Errorf("splitTagLine(%q) = (%q, %q, %v), want (%q, %q, %v)",
					tt.line, tag, val, ok, tt.wantTag, tt.wantVal, tt.wantOK)
			}
		})
	}
}

func TestParseArticleCollapsesTitleWhitespace(t *testing.T) {
	rec := Record{
		"PMID": {"42"},
		"TI":   {"Foo\n\tBar"},
	}
	a, err := ParseArticle(rec, true)
	if err != nil {
		t.Fatalf("ParseArticle: %v", err)
	}
	if a.TI != "Foo Bar" {
		t.Errorf("TI = %q, want %q", a.TI, "Foo Bar")
	}
}

func TestParseArticleAbstractCollapseByPath(t *testing.T) {
	// The two retrieval paths intentionally differ: the web API path
	// collapses abstract whitespace, the EDirect path does not. Both
	// behaviors are pinned here so a silent "fix" fails the suite.
	rec := Record{
		"PMID": {"42"},
		"AB":   {"one  two\tthree"},
	}

	collapsed, err := ParseArticle(rec, true)
	if err != nil {
		t.Fatalf("ParseArticle: %v", err)
	}
	if collapsed.AB != "one two three" {
		t.Errorf("collapsed AB = %q, want %q", collapsed.AB, "one two three")
	}

	verbatim, err := ParseArticle(rec, false)
	if err != nil {
		t.Fatalf("ParseArticle: %v", err)
	}
	if verbatim.AB != "one  two\tthree" {
		t.Errorf("verbatim AB = %q, want %q", verbatim.AB, "one  two\tthree")
	}
}

func TestParseArticleMissingPMID(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
	}{
		{"absent", Record{"TI": {"No identifier"}}},
		{"non-numeric", Record{"PMID": {"abc"}}},
		{"empty", Record{"PMID": {""}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseArticle(tt.rec, true)
			if !errors.Is(err, ErrMalformedRecord) {
				t.Errorf("err = %v, want ErrMalformedRecord", err)
			}
		})
	}
}

func TestParseArticleMissingTagsAreEmpty(t *testing.T) {
	a, err := ParseArticle(Record{"PMID": {"7"}}, true)
	if err != nil {
		t.Fatalf("ParseArticle: %v", err)
	}
	if a.TI != "" || a.AB != "" || a.DP != "" {
		t.Errorf("scalar fields not empty: %+v", a)
	}
	if len(a.FAU) != 0 || len(a.MH) != 0 || len(a.OT) != 0 {
		t.Errorf("list fields not empty: %+v", a)
	}
}

func TestParseArticlesAbortsOnFirstMalformed(t *testing.T) {
	records := []Record{
		{"PMID": {"1"}, "TI": {"ok"}},
		{"TI": {"missing pmid"}},
		{"PMID": {"3"}},
	}
	articles, err := ParseArticles(records, true)
	if !errors.Is(err, ErrMalformedRecord) {
		t.Fatalf("err = %v, want ErrMalformedRecord", err)
	}
	if articles != nil {
		t.Errorf("articles = %v, want nil on failure", articles)
	}
}
