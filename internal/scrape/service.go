package scrape

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/matheuskafuri/epaper/internal/archive"
	"github.com/matheuskafuri/epaper/internal/cache"
	"github.com/matheuskafuri/epaper/internal/config"
)

// Repository persists scraped archives.
type Repository interface {
	Save(doc *archive.Document) error
	Load(date string) (*archive.Document, error)
	Exists(date string) (bool, error)
}

// Service collects whole editions and keeps recently served days in memory.
type Service struct {
	cfg    *config.Config
	repo   Repository
	pages  Fetcher
	feeds  *FeedSource
	log    *zap.Logger
	origin string

	flight singleflight.Group

	// life scopes shared scrapes, which outlive any single caller.
	life    context.Context
	stop    context.CancelFunc
	running sync.WaitGroup
	closed  bool

	mu   sync.RWMutex
	memo map[string]*archive.Document
}

func NewService(cfg *config.Config, repo Repository, pages Fetcher, log *zap.Logger) (*Service, error) {
	origin, err := SiteOrigin(cfg.Scraper.BaseURL)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	life, stop := context.WithCancel(context.Background())
	return &Service{
		cfg:    cfg,
		repo:   repo,
		pages:  pages,
		feeds:  NewFeedSource(cfg.TimeoutDuration()),
		log:    log,
		origin: origin,
		life:   life,
		stop:   stop,
		memo:   make(map[string]*archive.Document),
	}, nil
}

// Today is the archive date shown "today": the configured number of years
// before now in the newspaper's timezone.
func (s *Service) Today(now time.Time) string {
	return s.shifted(now).Format(cache.DateLayout)
}

func (s *Service) Tomorrow(now time.Time) string {
	return s.shifted(now).AddDate(0, 0, 1).Format(cache.DateLayout)
}

func (s *Service) shifted(now time.Time) time.Time {
	return now.In(s.cfg.Location()).AddDate(-s.cfg.Scraper.YearsBack, 0, 0)
}

// ScrapeDay collects every enabled section for date and stores the result.
// Concurrent calls for the same date share one scrape. The scrape runs until
// it finishes or the service closes; ctx only bounds how long this caller
// waits for it.
func (s *Service) ScrapeDay(ctx context.Context, date string) (*archive.Document, error) {
	if _, err := time.Parse(cache.DateLayout, date); err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ch := s.flight.DoChan(date, func() (any, error) {
		if !s.begin() {
			return nil, fmt.Errorf("scraping %s: %w", date, context.Canceled)
		}
		defer s.running.Done()
		return s.scrapeDay(s.life, date)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*archive.Document), nil
	}
}

func (s *Service) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.running.Add(1)
	return true
}

// Close cancels running scrapes and waits for them to return.
func (s *Service) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.stop()
	s.running.Wait()
}

func (s *Service) scrapeDay(ctx context.Context, date string) (*archive.Document, error) {
	sections := s.cfg.EnabledSections()
	results := make([][]archive.Story, len(sections))
	delay := s.cfg.DelayDuration()

	s.log.Info("scraping day", zap.String("date", date), zap.Int("sections", len(sections)))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Scraper.Concurrency)
	for i, sec := range sections {
		g.Go(func() error {
			stories, err := s.scrapeSection(gctx, sec, date)
			switch {
			case err == nil:
				s.log.Info("section scraped", zap.String("section", sec.Name), zap.Int("stories", len(stories)))
			case errors.Is(err, ErrMissingPage):
				s.log.Info("section not published", zap.String("section", sec.Name), zap.String("date", date))
			case gctx.Err() != nil:
				return gctx.Err()
			default:
				s.log.Warn("section failed", zap.String("section", sec.Name), zap.Error(err))
			}
			if stories == nil {
				stories = []archive.Story{}
			}
			results[i] = stories

			// The slot is held through the delay to pace requests.
			if i < len(sections)-1 {
				return sleep(gctx, delay)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scraping %s: %w", date, err)
	}

	doc := &archive.Document{
		Date:     date,
		Sections: make(map[string][]archive.Story, len(sections)),
		CachedAt: time.Now().Format(time.RFC3339),
	}
	for i, sec := range sections {
		doc.Sections[sec.Name] = results[i]
	}

	if err := s.repo.Save(doc); err != nil {
		return nil, err
	}
	s.remember(doc)
	return doc, nil
}

func (s *Service) scrapeSection(ctx context.Context, sec config.Section, date string) ([]archive.Story, error) {
	if sec.Type == "rss" || sec.Type == "atom" {
		return s.feeds.Fetch(ctx, sec, date)
	}

	pageURL := strings.TrimRight(s.cfg.Scraper.BaseURL, "/") + "/" + sec.Name + "/" + date
	html, err := s.pages.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	if IsMissingPage(html) {
		return nil, fmt.Errorf("%s: %w", pageURL, ErrMissingPage)
	}
	return ParseSection(html, sec.Name, date, s.origin)
}

// LoadArchive returns a stored archive from memory or the repository, or
// nil when the date was never scraped.
func (s *Service) LoadArchive(ctx context.Context, date string) (*archive.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	doc, ok := s.memo[date]
	s.mu.RUnlock()
	if ok {
		return doc, nil
	}

	doc, err := s.repo.Load(date)
	if errors.Is(err, cache.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.remember(doc)
	return doc, nil
}

// Precompute scrapes date unless it is already stored.
func (s *Service) Precompute(ctx context.Context, date string) error {
	ok, err := s.repo.Exists(date)
	if err != nil {
		return err
	}
	if ok {
		s.log.Debug("archive already stored", zap.String("date", date))
		return nil
	}
	s.log.Info("precomputing archive", zap.String("date", date))
	_, err = s.ScrapeDay(ctx, date)
	return err
}

// EnsureTomorrow precomputes the next day's edition.
func (s *Service) EnsureTomorrow(ctx context.Context) error {
	return s.Precompute(ctx, s.Tomorrow(time.Now()))
}

// CachedDates lists the dates held in memory, oldest first.
func (s *Service) CachedDates() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dates := make([]string, 0, len(s.memo))
	for d := range s.memo {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// Forget drops every in-memory archive.
func (s *Service) Forget() {
	s.mu.Lock()
	s.memo = make(map[string]*archive.Document)
	s.mu.Unlock()
}

func (s *Service) remember(doc *archive.Document) {
	s.mu.Lock()
	s.memo[doc.Date] = doc
	s.mu.Unlock()
}
