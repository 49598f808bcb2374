package entrez

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/diogomachado-bioinfo/pubmedtools/internal/medline"
	"github.com/diogomachado-bioinfo/pubmedtools/pkg/types"
)

// defaultFetchDelay is the fixed pause between consecutive EFetch requests,
// per NCBI rate etiquette.
const defaultFetchDelay = 3 * time.Second

// sleep is replaced in tests to count throttle pauses without waiting.
var sleep = time.Sleep

// Search runs the full web-API retrieval pipeline: one ESearch resolves the
// match count and history token pair, then the result set is fetched in
// batches of Config.BatchSize with Config.FetchDelay slept after every batch
// except the last. Each batch is parsed from medline text and normalized with
// abstract whitespace collapsed.
//
// A count above MaxWebResults fails with ErrResultSetTooLarge before any
// fetching. Any fetch or parse failure aborts the whole call; rows from
// earlier batches are discarded, never returned partially. Progress lines are
// written to w.
func (c *Client) Search(ctx context.Context, term string, w io.Writer) ([]types.Article, error) {
	fmt.Fprintln(w, term)

	handle, err := c.ESearch(ctx, term)
	if err != nil {
		return nil, err
	}

	if handle.Count > MaxWebResults {
		return nil, fmt.Errorf("%w: %d results (limit %d); use the edirect path",
			ErrResultSetTooLarge, handle.Count, MaxWebResults)
	}

	batches := PlanBatches(handle.Count, c.Config.BatchSize)

	var articles []types.Article
	for i, b := range batches {
		fmt.Fprintf(w, "Downloading %d-%d/%d\n", b.Start, b.End(), handle.Count)

		batch, err := c.fetchBatch(ctx, handle, b)
		if err != nil {
			return nil, err
		}
		articles = append(articles, batch...)

		if i < len(batches)-1 && c.Config.FetchDelay > 0 {
			sleep(c.Config.FetchDelay)
		}
	}

	fmt.Fprintln(w, "Done!")
	return articles, nil
}

// fetchBatch retrieves and parses one batch using the token pair obtained at
// the start of the search; the pair is never refreshed between batches.
func (c *Client) fetchBatch(ctx context.Context, handle SearchHandle, b Batch) ([]types.Article, error) {
	body, err := c.EFetch(ctx, handle, b.Start, b.Size)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	records, err := medline.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("batch %d-%d: %w", b.Start, b.End(), err)
	}

	articles, err := medline.ParseArticles(records, true)
	if err != nil {
		return nil, fmt.Errorf("batch %d-%d: %w", b.Start, b.End(), err)
	}
	return articles, nil
}
