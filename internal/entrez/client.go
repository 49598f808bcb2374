// Package entrez retrieves PubMed records through the NCBI E-utilities web
// API: an ESearch call resolves the match count and a history token pair
// (WebEnv, QueryKey), and successive EFetch calls page through the result
// set in medline format.
package entrez

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/diogomachado-bioinfo/pubmedtools/pkg/types"
)

// E-utilities endpoints. Declared as vars so tests can substitute an
// httptest server.
var (
	esearchBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi"
	efetchBase  = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/efetch.fcgi"
)

// toolName identifies this client to NCBI on every request.
const toolName = "pubmedtools"

// MaxWebResults is the hard ceiling of the web API path. Searches matching
// more records must use the EDirect path, which streams the full result set.
const MaxWebResults = 10000

// ErrResultSetTooLarge indicates a search whose match count exceeds
// MaxWebResults. No fetching is attempted.
var ErrResultSetTooLarge = errors.New("result set exceeds the web API limit")

// Client queries the E-utilities API. Credentials are plain fields passed at
// construction; concurrent clients with different credentials are safe.
type Client struct {
	HTTPClient *http.Client
	Creds      types.Credentials
	Config     types.EntrezConfig
}

// NewClient returns a Client with config defaults applied: batch size 1000,
// fetch delay 3s.
func NewClient(httpClient *http.Client, creds types.Credentials, cfg types.EntrezConfig) *Client {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1000
	}
	if cfg.FetchDelay == 0 {
		cfg.FetchDelay = defaultFetchDelay
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{HTTPClient: httpClient, Creds: creds, Config: cfg}
}

// SearchHandle is the outcome of an ESearch call: the total match count and
// the opaque history token pair used to page through the results. The pair
// is obtained once per search and reused verbatim for every EFetch batch.
type SearchHandle struct {
	Count    int
	WebEnv   string
	QueryKey string
}

// eSearchResult is the esearch.fcgi XML response.
type eSearchResult struct {
	Count    string `xml:"Count"`
	WebEnv   string `xml:"WebEnv"`
	QueryKey string `xml:"QueryKey"`
}

// ESearch issues the initial search with history enabled and returns the
// match count plus the WebEnv/QueryKey token pair.
func (c *Client) ESearch(ctx context.Context, term string) (SearchHandle, error) {
	params := url.Values{
		"db":         {"pubmed"},
		"term":       {term},
		"usehistory": {"y"},
	}
	c.addIdentity(params)

	body, err := c.get(ctx, esearchBase, params)
	if err != nil {
		return SearchHandle{}, fmt.Errorf("ESearch: %w", err)
	}
	defer body.Close()

	var sr eSearchResult
	if err := xml.NewDecoder(body).Decode(&sr); err != nil {
		return SearchHandle{}, fmt.Errorf("parsing ESearch response: %w", err)
	}

	count, err := strconv.Atoi(sr.Count)
	if err != nil {
		return SearchHandle{}, fmt.Errorf("parsing ESearch count %q: %w", sr.Count, err)
	}

	return SearchHandle{Count: count, WebEnv: sr.WebEnv, QueryKey: sr.QueryKey}, nil
}

// EFetch retrieves one batch of medline-formatted records using the history
// token pair from an earlier ESearch. The caller must close the returned body.
func (c *Client) EFetch(ctx context.Context, h SearchHandle, start, size int) (io.ReadCloser, error) {
	params := url.Values{
		"db":        {"pubmed"},
		"rettype":   {"medline"},
		"retmode":   {"text"},
		"retstart":  {strconv.Itoa(start)},
		"retmax":    {strconv.Itoa(size)},
		"WebEnv":    {h.WebEnv},
		"query_key": {h.QueryKey},
	}
	c.addIdentity(params)

	body, err := c.get(ctx, efetchBase, params)
	if err != nil {
		return nil, fmt.Errorf("EFetch: %w", err)
	}
	return body, nil
}

// addIdentity appends the tool name and any caller credentials, per NCBI
// usage guidelines.
func (c *Client) addIdentity(params url.Values) {
	params.Set("tool", toolName)
	if c.Creds.Email != "" {
		params.Set("email", c.Creds.Email)
	}
	if c.Creds.APIKey != "" {
		params.Set("api_key", c.Creds.APIKey)
	}
}

// get performs a GET request and returns the response body on HTTP 200.
// Transport and status failures propagate to the caller unmodified; there is
// no retry here beyond what the caller's fixed throttle provides.
func (c *Client) get(ctx context.Context, base string, params url.Values) (io.ReadCloser, error) {
	reqURL := base + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.Config.UserAgent != "" {
		req.Header.Set("User-Agent", c.Config.UserAgent)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("E-utilities request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("E-utilities returned HTTP %d", resp.StatusCode)
	}
	return resp.Body, nil
}
