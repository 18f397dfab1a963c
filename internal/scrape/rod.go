package scrape

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"
)

type BrowserOptions struct {
	Headless   bool
	ProxyURL   string
	Timeout    time.Duration
	MaxRetries int
}

// BrowserFetcher renders pages in headless Chrome with stealth patches
// applied. Chrome is launched on first use and shared across fetches.
type BrowserFetcher struct {
	opts BrowserOptions

	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
	closed  bool
}

func NewBrowserFetcher(opts BrowserOptions) *BrowserFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 90 * time.Second
	}
	return &BrowserFetcher{opts: opts}
}

func (f *BrowserFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	b, err := f.connect()
	if err != nil {
		return "", err
	}
	var html string
	err = retry(ctx, f.opts.MaxRetries, 3*time.Second, func() error {
		var err error
		html, err = f.render(ctx, b, pageURL)
		return err
	})
	return html, err
}

func (f *BrowserFetcher) render(ctx context.Context, b *rod.Browser, pageURL string) (string, error) {
	page, err := stealth.Page(b)
	if err != nil {
		return "", fmt.Errorf("browser: create page: %w", err)
	}
	defer page.Close()

	navCtx, cancel := context.WithTimeout(ctx, f.opts.Timeout)
	defer cancel()

	if err := page.Context(navCtx).Navigate(pageURL); err != nil {
		return "", fmt.Errorf("browser: navigate %s: %w", pageURL, err)
	}
	// A slow load still leaves usable markup behind.
	_ = page.Context(navCtx).WaitLoad()

	html, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("browser: read %s: %w", pageURL, err)
	}
	return html, nil
}

func (f *BrowserFetcher) connect() (*rod.Browser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil, errors.New("browser: fetcher is closed")
	}
	if f.browser != nil {
		return f.browser, nil
	}

	l := launcher.New().Headless(f.opts.Headless)
	l = l.Set("disable-blink-features", "AutomationControlled")
	if f.opts.ProxyURL != "" {
		l = l.Proxy(f.opts.ProxyURL)
	}
	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("browser: launch: %w", err)
	}

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("browser: connect: %w", err)
	}
	f.browser = b
	f.lnch = l
	return b, nil
}

// Close shuts Chrome down. Fetch fails afterwards.
func (f *BrowserFetcher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	var err error
	if f.browser != nil {
		err = f.browser.Close()
		f.browser = nil
	}
	if f.lnch != nil {
		f.lnch.Cleanup()
		f.lnch = nil
	}
	return err
}
