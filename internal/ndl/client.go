// Package ndl is a client for the NDL next-generation digital library search
// API: full-text book search plus in-book passage search over digitized
// materials.
package ndl

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

const DefaultBaseURL = "https://lab.ndl.go.jp/dl"

// Config holds client configuration.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the document and passage search endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new search client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// BaseURL returns the configured API base.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SearchBooks runs a full-text document search. from is a result offset and
// size the page size.
func (c *Client) SearchBooks(ctx context.Context, keyword string, from, size int) ([]Book, error) {
	params := url.Values{}
	params.Set("keyword", keyword)
	if from > 0 {
		params.Set("from", strconv.Itoa(from))
	}
	params.Set("size", strconv.Itoa(size))

	var resp searchResponse[Book]
	if err := c.get(ctx, "/api/book/search", params, &resp); err != nil {
		return nil, fmt.Errorf("book search failed: %w", err)
	}
	return resp.List, nil
}

// SearchPassages searches passages inside a single book for a keyword.
func (c *Client) SearchPassages(ctx context.Context, bookID, keyword string, size int) ([]Passage, error) {
	params := url.Values{}
	params.Set("f-book", bookID)
	params.Set("q-contents", keyword)
	params.Set("size", strconv.Itoa(size))

	var resp searchResponse[Passage]
	if err := c.get(ctx, "/api/page/search", params, &resp); err != nil {
		return nil, fmt.Errorf("passage search failed: %w", err)
	}
	return resp.List, nil
}

// BookLink builds the stable viewer URL for a page (koma) of a book.
func (c *Client) BookLink(bookID, page string) string {
	return fmt.Sprintf("%s/book/%s?page=%s", c.baseURL, bookID, url.QueryEscape(page))
}

func (c *Client) get(ctx context.Context, path string, params url.Values, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("search error (status %d): %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

type searchResponse[T any] struct {
	List []T `json:"list"`
}
