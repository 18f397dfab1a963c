package tui

import (
	"context"
	"fmt"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matheuskafuri/epaper/internal/loader"
)

// Prober checks whether a story image can be loaded.
type Prober interface {
	Probe(ctx context.Context, url string) error
}

// headProber issues a HEAD request per image.
type headProber struct {
	client *http.Client
}

func newHeadProber() *headProber {
	return &headProber{client: &http.Client{Timeout: 10 * time.Second}}
}

func (p *headProber) Probe(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	// Some image hosts refuse HEAD but serve GET.
	if resp.StatusCode >= 400 && resp.StatusCode != http.StatusMethodNotAllowed {
		return fmt.Errorf("image %s: status %d", url, resp.StatusCode)
	}
	return nil
}

func probeCmd(p Prober, ld *loader.Loader, set, title, url string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := p.Probe(ctx, url); err != nil {
			return imageFailedMsg{ld: ld, set: set, title: title}
		}
		return nil
	}
}
