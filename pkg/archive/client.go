// Package archive provides a client for the archive.org search and metadata
// APIs, with bounded retries and tolerant decoding of the catalog's loosely
// typed JSON fields.
package archive

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultBaseURL = "https://archive.org"
	defaultS3URL   = "https://s3.us.archive.org"
)

// searchFields are the advancedsearch columns the curator consumes.
var searchFields = []string{
	"identifier",
	"title",
	"mediatype",
	"creator",
	"publisher",
	"date",
	"description",
	"collection",
	"format",
	"downloads",
	"num_favorites",
}

// Client talks to the archive.org API.
type Client struct {
	http    *resty.Client
	baseURL string
	s3URL   string
	verbose bool
}

// Option defines configuration options for Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.http.SetTimeout(timeout)
	}
}

// WithBaseURL overrides the API base URL (used by tests).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithS3BaseURL overrides the S3 endpoint used for credential checks (used by
// tests).
func WithS3BaseURL(baseURL string) Option {
	return func(c *Client) {
		c.s3URL = baseURL
	}
}

// WithRetries sets the retry count for failed requests.
func WithRetries(count int) Option {
	return func(c *Client) {
		c.http.SetRetryCount(count)
	}
}

// WithVerbose enables request logging to stderr.
func WithVerbose(verbose bool) Option {
	return func(c *Client) {
		c.verbose = verbose
	}
}

// New creates an archive.org client. By default requests time out after 30s
// and are retried twice with exponential backoff on network errors, 429s, and
// 5xx responses.
func New(options ...Option) *Client {
	c := &Client{baseURL: defaultBaseURL, s3URL: defaultS3URL}

	c.http = resty.New().
		SetTimeout(30 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("User-Agent", "curio/0.1 (+https://github.com/pcannon/curio)").
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}

			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500
		})

	for _, option := range options {
		option(c)
	}

	return c
}

// Search runs an advancedsearch query and returns up to rows documents,
// ordered by download count descending so the most established items are
// considered first.
func (c *Client) Search(ctx context.Context, query string, rows int) ([]SearchDoc, error) {
	if rows <= 0 {
		rows = 50
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("rows", fmt.Sprintf("%d", rows))
	params.Set("page", "1")
	params.Set("output", "json")
	params.Add("sort[]", "downloads desc")

	for _, field := range searchFields {
		params.Add("fl[]", field)
	}

	if c.verbose {
		fmt.Fprintf(os.Stderr, "GET %s/advancedsearch.php q=%s rows=%d\n", c.baseURL, query, rows)
	}

	var parsed searchResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParamsFromValues(params).
		SetResult(&parsed).
		Get(c.baseURL + "/advancedsearch.php")
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}

	if resp.IsError() {
		return nil, &APIError{
			Operation: "search",
			Target:    query,
			Status:    resp.StatusCode(),
			Body:      string(resp.Body()),
		}
	}

	docs := parsed.Response.Docs
	if len(docs) > rows {
		docs = docs[:rows]
	}

	return docs, nil
}

// Metadata fetches the full metadata record for an item. The endpoint returns
// 200 with an empty object for unknown identifiers, which is reported as a
// nil record rather than an error.
func (c *Client) Metadata(ctx context.Context, identifier string) (*ItemMetadata, error) {
	var parsed ItemMetadata

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&parsed).
		Get(c.baseURL + "/metadata/" + url.PathEscape(identifier))
	if err != nil {
		return nil, fmt.Errorf("metadata request failed for %s: %w", identifier, err)
	}

	if resp.IsError() {
		return nil, &APIError{
			Operation: "metadata",
			Target:    identifier,
			Status:    resp.StatusCode(),
			Body:      string(resp.Body()),
		}
	}

	if parsed.Metadata.Identifier == "" && len(parsed.Files) == 0 {
		return nil, nil
	}

	return &parsed, nil
}

// DetailsURL returns the public item page for an identifier.
func DetailsURL(identifier string) string {
	return "https://archive.org/details/" + identifier
}
