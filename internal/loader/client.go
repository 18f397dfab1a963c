package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"github.com/matheuskafuri/epaper/internal/archive"
)

// Client retrieves the archive document.
type Client interface {
	Fetch(ctx context.Context) (*archive.Document, error)
}

// StatusError is returned for non-2xx archive responses.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetching %s: unexpected status %d", e.URL, e.Code)
}

// HTTPClient fetches the archive with a single GET and caching disabled.
type HTTPClient struct {
	url    string
	client *http.Client
}

// NewHTTPClient validates rawURL and returns a client for it.
// A nil hc uses http.DefaultClient.
func NewHTTPClient(rawURL string, hc *http.Client) (*HTTPClient, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid archive URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("archive URL scheme must be http or https, got %q", u.Scheme)
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	return &HTTPClient{url: rawURL, client: hc}, nil
}

func (c *HTTPClient) Fetch(ctx context.Context) (*archive.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache, no-store, must-revalidate")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("Expires", "0")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", c.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: c.url, Code: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", c.url, err)
	}
	return archive.Decode(data)
}

// FileClient reads the archive from a local JSON file.
type FileClient struct {
	Path string
}

func (c FileClient) Fetch(ctx context.Context) (*archive.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return nil, fmt.Errorf("reading archive file: %w", err)
	}
	return archive.Decode(data)
}

// StaticClient serves an in-memory document.
type StaticClient struct {
	Doc *archive.Document
}

func (c StaticClient) Fetch(ctx context.Context) (*archive.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.Doc, nil
}
