package scrape

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/matheuskafuri/epaper/internal/config"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Fetcher returns the HTML of a newspaper page.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (string, error)
}

// StatusError is a page response that is worth retrying.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetching %s: status %d", e.URL, e.Code)
}

// NewFetcher builds the page fetcher selected by the scraper config.
func NewFetcher(cfg *config.Config) (Fetcher, error) {
	if cfg.Scraper.Browser {
		return NewBrowserFetcher(BrowserOptions{
			Headless:   cfg.Headless(),
			ProxyURL:   cfg.ProxyURL(),
			Timeout:    cfg.TimeoutDuration(),
			MaxRetries: cfg.Scraper.MaxRetries,
		}), nil
	}
	return NewHTTPFetcher(cfg.TimeoutDuration(), cfg.ProxyURL(), cfg.Scraper.MaxRetries)
}

// HTTPFetcher fetches pages with a plain HTTP client dressed as a browser.
type HTTPFetcher struct {
	client     *http.Client
	maxRetries int
	// Backoff is multiplied by the attempt number between retries.
	Backoff time.Duration
}

func NewHTTPFetcher(timeout time.Duration, proxyURL string, maxRetries int) (*HTTPFetcher, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy url: %w", err)
		}
		transport.Proxy = http.ProxyURL(u)
	}
	return &HTTPFetcher{
		client:     &http.Client{Timeout: timeout, Transport: transport},
		maxRetries: maxRetries,
		Backoff:    3 * time.Second,
	}, nil
}

func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	var body string
	err := retry(ctx, f.maxRetries, f.Backoff, func() error {
		var err error
		body, err = f.get(ctx, pageURL)
		return err
	})
	return body, err
}

func (f *HTTPFetcher) get(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode >= 500 {
		return "", &StatusError{URL: pageURL, Code: resp.StatusCode}
	}

	// Other statuses still carry a page; missing editions are detected from
	// the body.
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", pageURL, err)
	}
	return string(data), nil
}

// retry runs fn up to maxRetries+1 times, waiting attempt*backoff between
// tries. Context errors end the loop immediately.
func retry(ctx context.Context, maxRetries int, backoff time.Duration, fn func() error) error {
	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			if werr := sleep(ctx, time.Duration(attempt)*backoff); werr != nil {
				return werr
			}
		}
		err = fn()
		if err == nil {
			return nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
	}
	return fmt.Errorf("failed after %d attempts: %w", maxRetries+1, err)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
