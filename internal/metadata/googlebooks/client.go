// Package googlebooks provides a client for the Google Books volumes API.
package googlebooks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Match represents the single best Google Books search result.
type Match struct {
	Title         string
	Authors       []string
	Publisher     string
	PublishedDate string
}

type volumesResponse struct {
	TotalItems int    `json:"totalItems"`
	Items      []item `json:"items"`
}

type item struct {
	VolumeInfo volumeInfo `json:"volumeInfo"`
}

type volumeInfo struct {
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	Publisher     string   `json:"publisher"`
	PublishedDate string   `json:"publishedDate"`
}

// Client provides access to the Google Books API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithAPIKey attaches an API key to every request.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = strings.TrimSpace(key)
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// New creates a Google Books client.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("googlebooks base url required")
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Search queries the volumes API for the best match. ISBN terms take
// precedence in the query string. A nil Match with a nil error means the
// lookup succeeded but found nothing.
func (c *Client) Search(ctx context.Context, title, author, isbn string) (*Match, error) {
	terms := make([]string, 0, 3)
	if isbn = strings.TrimSpace(isbn); isbn != "" {
		terms = append(terms, "isbn:"+isbn)
	}
	if title = strings.TrimSpace(title); title != "" {
		terms = append(terms, "intitle:"+title)
	}
	if author = strings.TrimSpace(author); author != "" {
		terms = append(terms, "inauthor:"+author)
	}
	if len(terms) == 0 {
		return nil, errors.New("googlebooks search: title, author, or isbn required")
	}

	params := url.Values{}
	params.Set("q", strings.Join(terms, " "))
	params.Set("maxResults", "1")
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	endpoint := c.baseURL + "/volumes?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("googlebooks request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("googlebooks search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("googlebooks search: unexpected status %d", resp.StatusCode)
	}

	var payload volumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("googlebooks decode: %w", err)
	}
	if len(payload.Items) == 0 {
		return nil, nil
	}

	info := payload.Items[0].VolumeInfo
	return &Match{
		Title:         info.Title,
		Authors:       append([]string(nil), info.Authors...),
		Publisher:     info.Publisher,
		PublishedDate: info.PublishedDate,
	}, nil
}
