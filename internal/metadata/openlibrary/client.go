// Package openlibrary provides a client for the Open Library search and
// covers APIs.
package openlibrary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Match represents the single best Open Library search result.
type Match struct {
	Title     string
	Authors   []string
	Publisher string
	// CoverID identifies artwork on the covers endpoint; zero means none.
	CoverID int64
}

type searchResponse struct {
	NumFound int   `json:"numFound"`
	Docs     []doc `json:"docs"`
}

type doc struct {
	Title      string   `json:"title"`
	AuthorName []string `json:"author_name"`
	Publisher  []string `json:"publisher"`
	CoverI     int64    `json:"cover_i"`
}

// Client provides access to the Open Library APIs.
type Client struct {
	baseURL    string
	coversURL  string
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

// WithTimeout overrides the default request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// New creates an Open Library client.
func New(baseURL, coversURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("openlibrary base url required")
	}
	coversURL = strings.TrimSpace(coversURL)
	if coversURL == "" {
		return nil, errors.New("openlibrary covers url required")
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		coversURL:  strings.TrimRight(coversURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Search queries the search API for the best match on title/author. A nil
// Match with a nil error means the lookup succeeded but found nothing.
func (c *Client) Search(ctx context.Context, title, author string) (*Match, error) {
	params := url.Values{}
	if title = strings.TrimSpace(title); title != "" {
		params.Set("title", title)
	}
	if author = strings.TrimSpace(author); author != "" {
		params.Set("author", author)
	}
	if len(params) == 0 {
		return nil, errors.New("openlibrary search: title or author required")
	}
	params.Set("limit", "1")

	endpoint := c.baseURL + "/search.json?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("openlibrary request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openlibrary search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openlibrary search: unexpected status %d", resp.StatusCode)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("openlibrary decode: %w", err)
	}
	if len(payload.Docs) == 0 {
		return nil, nil
	}

	best := payload.Docs[0]
	match := &Match{
		Title:   best.Title,
		Authors: append([]string(nil), best.AuthorName...),
		CoverID: best.CoverI,
	}
	if len(best.Publisher) > 0 {
		match.Publisher = best.Publisher[0]
	}
	return match, nil
}

// DownloadCover fetches the large rendition of the given cover and saves it
// into destDir as {id}-cover.jpg, returning the written path.
func (c *Client) DownloadCover(ctx context.Context, coverID int64, destDir string) (string, error) {
	if coverID <= 0 {
		return "", errors.New("openlibrary cover: id required")
	}

	endpoint := fmt.Sprintf("%s/b/id/%d-L.jpg", c.coversURL, coverID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("openlibrary cover request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("openlibrary cover fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openlibrary cover fetch: unexpected status %d", resp.StatusCode)
	}

	coverPath := filepath.Join(destDir, strconv.FormatInt(coverID, 10)+"-cover.jpg")
	file, err := os.Create(coverPath)
	if err != nil {
		return "", fmt.Errorf("create cover file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, resp.Body); err != nil {
		os.Remove(coverPath)
		return "", fmt.Errorf("save cover: %w", err)
	}
	return coverPath, nil
}
