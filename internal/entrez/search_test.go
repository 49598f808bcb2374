package entrez

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/diogomachado-bioinfo/pubmedtools/pkg/types"
)

// fakeEutils serves esearch and efetch endpoints backed by a synthetic
// result set of count records. It records every efetch request for
// assertions.
type fakeEutils struct {
	count    int
	esearch  *httptest.Server
	efetch   *httptest.Server
	fetchReq []map[string]string
}

func newFakeEutils(t *testing.T, count int) *fakeEutils {
	t.Helper()
	f := &fakeEutils{count: count}

	f.esearch = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `<eSearchResult><Count>%d</Count><WebEnv>MCID_test</WebEnv><QueryKey>1</QueryKey></eSearchResult>`, f.count)
	}))
	t.Cleanup(f.esearch.Close)

	f.efetch = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		params := map[string]string{}
		for k := range q {
			params[k] = q.Get(k)
		}
		f.fetchReq = append(f.fetchReq, params)

		start, _ := strconv.Atoi(q.Get("retstart"))
		size, _ := strconv.Atoi(q.Get("retmax"))
		for i := 0; i < size && start+i < f.count; i++ {
			pmid := start + i + 1
			fmt.Fprintf(w, "PMID- %d\nTI  - Article %d\nAB  - Abstract  with   spaces.\nDP  - 2023\n\n", pmid, pmid)
		}
	}))
	t.Cleanup(f.efetch.Close)

	oldSearch, oldFetch := esearchBase, efetchBase
	esearchBase, efetchBase = f.esearch.URL, f.efetch.URL
	t.Cleanup(func() { esearchBase, efetchBase = oldSearch, oldFetch })

	return f
}

// countSleeps replaces the throttle sleep for the duration of a test and
// returns a pointer to the number of invocations.
func countSleeps(t *testing.T) *int {
	t.Helper()
	n := new(int)
	old := sleep
	sleep = func(time.Duration) { *n++ }
	t.Cleanup(func() { sleep = old })
	return n
}

func TestSearchEndToEnd(t *testing.T) {
	f := newFakeEutils(t, 2500)
	sleeps := countSleeps(t)

	c := NewClient(http.DefaultClient, types.Credentials{}, testConfig())
	var progress bytes.Buffer
	articles, err := c.Search(context.Background(), "crispr", &progress)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if len(articles) != 2500 {
		t.Fatalf("got %d articles, want 2500", len(articles))
	}

	// Rows come back in fetch order.
	if articles[0].PMID != 1 || articles[2499].PMID != 2500 {
		t.Errorf("row order: first PMID %d, last PMID %d", articles[0].PMID, articles[2499].PMID)
	}

	// Abstract whitespace is collapsed on the web API path.
	if articles[0].AB != "Abstract with spaces." {
		t.Errorf("AB = %q", articles[0].AB)
	}

	// Three fetches with starts 0, 1000, 2000 and sizes 1000, 1000, 500.
	if len(f.fetchReq) != 3 {
		t.Fatalf("got %d fetches, want 3", len(f.fetchReq))
	}
	wantStarts := []string{"0", "1000", "2000"}
	wantSizes := []string{"1000", "1000", "500"}
	for i, req := range f.fetchReq {
		if req["retstart"] != wantStarts[i] || req["retmax"] != wantSizes[i] {
			t.Errorf("fetch %d: retstart=%s retmax=%s, want %s/%s",
				i, req["retstart"], req["retmax"], wantStarts[i], wantSizes[i])
		}
		// Every batch reuses the token pair from the initial search.
		if req["WebEnv"] != "MCID_test" || req["query_key"] != "1" {
			t.Errorf("fetch %d: WebEnv=%s query_key=%s, want MCID_test/1",
				i, req["WebEnv"], req["query_key"])
		}
	}

	// One throttle pause between each pair of consecutive batches.
	if *sleeps != 2 {
		t.Errorf("slept %d times, want 2", *sleeps)
	}
}

func TestSearchResultSetTooLarge(t *testing.T) {
	f := newFakeEutils(t, MaxWebResults+1)

	c := NewClient(http.DefaultClient, types.Credentials{}, testConfig())
	_, err := c.Search(context.Background(), "cancer", &bytes.Buffer{})
	if !errors.Is(err, ErrResultSetTooLarge) {
		t.Fatalf("err = %v, want ErrResultSetTooLarge", err)
	}

	if len(f.fetchReq) != 0 {
		t.Errorf("issued %d fetches, want 0", len(f.fetchReq))
	}
}

func TestSearchCountAtLimitIsAllowed(t *testing.T) {
	f := newFakeEutils(t, MaxWebResults)
	countSleeps(t)

	c := NewClient(http.DefaultClient, types.Credentials{}, testConfig())
	articles, err := c.Search(context.Background(), "x", &bytes.Buffer{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(articles) != MaxWebResults {
		t.Errorf("got %d articles, want %d", len(articles), MaxWebResults)
	}
	if len(f.fetchReq) != 10 {
		t.Errorf("issued %d fetches, want 10", len(f.fetchReq))
	}
}

func TestSearchZeroResults(t *testing.T) {
	f := newFakeEutils(t, 0)
	sleeps := countSleeps(t)

	c := NewClient(http.DefaultClient, types.Credentials{}, testConfig())
	articles, err := c.Search(context.Background(), "nonexistent", &bytes.Buffer{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(articles) != 0 {
		t.Errorf("got %d articles, want 0", len(articles))
	}
	if len(f.fetchReq) != 0 {
		t.Errorf("issued %d fetches, want 0", len(f.fetchReq))
	}
	if *sleeps != 0 {
		t.Errorf("slept %d times, want 0", *sleeps)
	}
}

func TestSearchSingleBatchNoSleep(t *testing.T) {
	newFakeEutils(t, 50)
	sleeps := countSleeps(t)

	c := NewClient(http.DefaultClient, types.Credentials{}, testConfig())
	if _, err := c.Search(context.Background(), "x", &bytes.Buffer{}); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if *sleeps != 0 {
		t.Errorf("slept %d times, want 0 for a single batch", *sleeps)
	}
}

func TestSearchFetchFailureDiscardsPartialRows(t *testing.T) {
	f := newFakeEutils(t, 2500)
	countSleeps(t)

	// Fail the second batch.
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("retstart") == "1000" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		f.efetch.Config.Handler.ServeHTTP(w, r)
	}))
	defer failing.Close()

	old := efetchBase
	efetchBase = failing.URL
	defer func() { efetchBase = old }()

	c := NewClient(http.DefaultClient, types.Credentials{}, testConfig())
	articles, err := c.Search(context.Background(), "x", &bytes.Buffer{})
	if err == nil {
		t.Fatal("Search succeeded despite failing batch")
	}
	if articles != nil {
		t.Errorf("got %d partial rows, want none", len(articles))
	}
}

func TestSearchMalformedRecordAbortsCall(t *testing.T) {
	newFakeEutils(t, 5)
	countSleeps(t)

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "PMID- 1\nTI  - ok\n\nTI  - record without identifier\n\n")
	}))
	defer broken.Close()

	old := efetchBase
	efetchBase = broken.URL
	defer func() { efetchBase = old }()

	c := NewClient(http.DefaultClient, types.Credentials{}, testConfig())
	articles, err := c.Search(context.Background(), "x", &bytes.Buffer{})
	if err == nil {
		t.Fatal("Search succeeded despite malformed record")
	}
	if articles != nil {
		t.Errorf("got partial rows on failure: %v", articles)
	}
}

func TestSearchProgressOutput(t *testing.T) {
	newFakeEutils(t, 1500)
	countSleeps(t)

	c := NewClient(http.DefaultClient, types.Credentials{}, testConfig())
	var progress bytes.Buffer
	if _, err := c.Search(context.Background(), "p53", &progress); err != nil {
		t.Fatalf("Search: %v", err)
	}

	out := progress.String()
	for _, want := range []string{"p53", "Downloading 0-1000/1500", "Downloading 1000-1500/1500", "Done!"} {
		if !bytes.Contains([]byte(out), []byte(want)) {
			t.Errorf("progress output missing %q:\n%s", want, out)
		}
	}
}
