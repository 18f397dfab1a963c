package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matheuskafuri/epaper/internal/cache"
	"github.com/matheuskafuri/epaper/internal/config"
	"github.com/matheuskafuri/epaper/internal/scrape"
	"github.com/matheuskafuri/epaper/internal/server"
)

var (
	flagAddr    string
	flagBrowser bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the archive document, the rendered pages and the API",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := cfg.Server.Addr
		if flagAddr != "" {
			addr = flagAddr
		}

		db, err := cache.Open(config.CachePath())
		if err != nil {
			return fmt.Errorf("opening cache: %w", err)
		}
		defer db.Close()

		svc, closeFetcher, err := newService(db)
		if err != nil {
			return err
		}
		defer closeFetcher()

		srv, err := server.New(cfg, svc, db, logger)
		if err != nil {
			return fmt.Errorf("building server: %w", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.ListenAndServe(ctx, addr)
	},
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [YYYY-MM-DD]",
	Short: "Scrape one day's archive into the local store",
	Long: `Scrape every enabled section for a date and store the result.

Without a date, scrapes today's archive date (the current day in the
scraper's timezone, shifted back by years_back).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagBrowser {
			cfg.Scraper.Browser = true
		}

		db, err := cache.Open(config.CachePath())
		if err != nil {
			return fmt.Errorf("opening cache: %w", err)
		}
		defer db.Close()

		svc, closeFetcher, err := newService(db)
		if err != nil {
			return err
		}
		defer closeFetcher()

		day := svc.Today(time.Now())
		if len(args) == 1 {
			day = args[0]
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		doc, err := svc.ScrapeDay(ctx, day)
		if err != nil {
			return fmt.Errorf("scraping %s: %w", day, err)
		}
		if err := db.SetLastRefresh(); err != nil {
			logger.Warn("recording refresh time", zap.Error(err))
		}

		total := 0
		for _, name := range cfg.SectionNames() {
			n := len(doc.Section(name))
			total += n
			fmt.Printf("  %-18s %d\n", name, n)
		}
		fmt.Printf("Stored %s: %d stories.\n", day, total)
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "listen address (overrides server.addr)")
	scrapeCmd.Flags().BoolVar(&flagBrowser, "browser", false, "render pages in headless Chrome")
}

// newService wires the scraper to db. The returned func stops running
// scrapes and releases the page fetcher, which may own a browser process.
func newService(db *cache.Cache) (*scrape.Service, func(), error) {
	pages, err := scrape.NewFetcher(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("building fetcher: %w", err)
	}
	release := func() {
		if c, ok := pages.(io.Closer); ok {
			if err := c.Close(); err != nil {
				logger.Warn("closing fetcher", zap.Error(err))
			}
		}
	}

	svc, err := scrape.NewService(cfg, db, pages, logger)
	if err != nil {
		release()
		return nil, nil, fmt.Errorf("building scraper: %w", err)
	}
	return svc, func() {
		svc.Close()
		release()
	}, nil
}
