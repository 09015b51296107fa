// Package kakao provides a client for the Kakao book search REST API.
package kakao

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/minji/book-fairy/internal/isbn"
	"github.com/minji/book-fairy/internal/ratelimit"
	"github.com/minji/book-fairy/internal/types"
)

// DefaultBaseURL is the Kakao book search endpoint.
const DefaultBaseURL = "https://dapi.kakao.com/v3/search/book"

// DefaultTimeout bounds a single search request. A timeout is a recoverable
// per-query failure, never fatal for the whole run.
const DefaultTimeout = 10 * time.Second

// SearchError wraps a failed search call with the query that caused it.
type SearchError struct {
	Query      string
	StatusCode int
	Cause      error
}

func (e *SearchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("kakao search for %q failed with status %d", e.Query, e.StatusCode)
	}
	return fmt.Sprintf("kakao search for %q failed: %v", e.Query, e.Cause)
}

func (e *SearchError) Unwrap() error {
	return e.Cause
}

// document is one book record on the wire.
type document struct {
	Title      string   `json:"title"`
	Contents   string   `json:"contents"`
	Authors    []string `json:"authors"`
	Publisher  string   `json:"publisher"`
	Datetime   string   `json:"datetime"`
	ISBN       string   `json:"isbn"`
	Translator []string `json:"translators"`
}

type searchResponse struct {
	Documents []document `json:"documents"`
}

// Options configures the client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	// Limiter spaces requests under the caller-side rate ceiling. Nil
	// disables local limiting.
	Limiter *ratelimit.Limiter
}

// Client calls the Kakao book search API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *ratelimit.Limiter
}

// NewClient creates a search client. The REST API key is required.
func NewClient(apiKey string, opts *Options) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("kakao REST API key is required")
	}
	if opts == nil {
		opts = &Options{}
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout == 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		limiter:    opts.Limiter,
	}, nil
}

// Search runs one accuracy-sorted title search and maps the documents to
// BookRecords. Malformed documents (no title) are skipped, not fatal.
// Records get their canonical identifier chosen at ingest so every later
// stage keys on the same value.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]types.BookRecord, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &SearchError{Query: query, Cause: err}
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("sort", "accuracy")
	params.Set("size", strconv.Itoa(maxResults))
	params.Set("target", "title")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &SearchError{Query: query, Cause: err}
	}
	req.Header.Set("Authorization", "KakaoAK "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &SearchError{Query: query, Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &SearchError{Query: query, StatusCode: resp.StatusCode}
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, &SearchError{Query: query, Cause: fmt.Errorf("failed to decode response: %w", err)}
	}

	records := make([]types.BookRecord, 0, len(parsed.Documents))
	for _, doc := range parsed.Documents {
		if doc.Title == "" {
			continue
		}
		records = append(records, types.BookRecord{
			Title:          doc.Title,
			Authors:        doc.Authors,
			Publisher:      doc.Publisher,
			PublishedAt:    doc.Datetime,
			RawISBN:        doc.ISBN,
			Description:    doc.Contents,
			NormalizedISBN: isbn.Canonical(doc.ISBN),
		})
	}
	return records, nil
}
