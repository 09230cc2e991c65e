// Package kinguin – HTTP client for the upstream catalog API.
//
// The client is stateless and deliberately thin: it issues one GET per page,
// authenticates with an API key header, and surfaces every network or non-2xx
// failure to the caller as a retryable error. Retrying is the caller's
// responsibility (the bulk sync engine absorbs per-page failures itself).
package kinguin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	// maxPageLimit caps the page size sent upstream regardless of what the
	// caller requested; the upstream API rejects larger values.
	maxPageLimit = 100

	defaultBaseURL   = "https://gateway.kinguin.net/esa/api/v1"
	defaultUserAgent = "uzplatform-store/1.0"
)

// Client fetches pages of product records from the upstream catalog API.
// It is safe for concurrent use.
type Client struct {
	baseURL   string
	apiKey    string
	userAgent string
	http      *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the upstream base URL (used by tests and staging).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient replaces the underlying *http.Client, including its timeout.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithUserAgent overrides the User-Agent header sent upstream.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient constructs a Client authenticated with apiKey. The default HTTP
// client carries a 30s timeout; per-page deadlines beyond that belong to the
// caller's context.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:   defaultBaseURL,
		apiKey:    apiKey,
		userAgent: defaultUserAgent,
		http:      &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// FetchPage requests one page of the product listing. Pages are 1-indexed and
// limit is capped at 100. An empty Results slice signals end-of-catalog.
//
// The client never retries; network errors and non-2xx statuses are returned
// as-is for the caller to count and move on.
func (c *Client) FetchPage(ctx context.Context, page, limit int) (SearchResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxPageLimit {
		limit = maxPageLimit
	}

	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/products?"+q.Encode(), nil)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("kinguin: build request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("kinguin: fetch page %d: %w", page, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little of the body for diagnostics without logging payloads.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return SearchResponse{}, fmt.Errorf("kinguin: fetch page %d: unexpected status %d: %s", page, resp.StatusCode, snippet)
	}

	var out SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return SearchResponse{}, fmt.Errorf("kinguin: decode page %d: %w", page, err)
	}
	return out, nil
}
