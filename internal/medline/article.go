package medline

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/diogomachado-bioinfo/pubmedtools/pkg/types"
)

// ErrMalformedRecord indicates a record whose mandatory PMID field is
// missing or not an integer. Any other tag may be absent without error.
var ErrMalformedRecord = errors.New("malformed medline record")

// ParseArticle normalizes a raw Record into an Article. The title always has
// runs of whitespace collapsed to a single space; the abstract is collapsed
// only when collapseAbstract is true. The web API path passes true; the
// EDirect path passes false and keeps the tool's abstract verbatim. The
// remaining fields are extracted without transformation.
//
// A missing or non-numeric PMID returns ErrMalformedRecord, which aborts the
// whole retrieval call; partial tables are never returned.
func ParseArticle(rec Record, collapseAbstract bool) (types.Article, error) {
	pmidRaw := strings.TrimSpace(rec.First("PMID"))
	pmid, err := strconv.Atoi(pmidRaw)
	if err != nil {
		return types.Article{}, fmt.Errorf("%w: PMID %q: %v", ErrMalformedRecord, pmidRaw, err)
	}

	ab := rec.First("AB")
	if collapseAbstract {
		ab = collapseWhitespace(ab)
	}

	return types.Article{
		PMID: pmid,
		TI:   collapseWhitespace(rec.First("TI")),
		AB:   ab,
		FAU:  append([]string(nil), rec["FAU"]...),
		DP:   rec.First("DP"),
		MH:   append([]string(nil), rec["MH"]...),
		OT:   append([]string(nil), rec["OT"]...),
	}, nil
}

// ParseArticles parses every record in medline-formatted text. Articles are
// returned in record order; the first malformed record fails the whole call.
func ParseArticles(records []Record, collapseAbstract bool) ([]types.Article, error) {
	var articles []types.Article
	for _, rec := range records {
		a, err := ParseArticle(rec, collapseAbstract)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	return articles, nil
}

// collapseWhitespace replaces every run of whitespace with a single space
// and trims the ends.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
