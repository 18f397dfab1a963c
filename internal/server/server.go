package server

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/matheuskafuri/epaper/internal/archive"
	"github.com/matheuskafuri/epaper/internal/config"
	"github.com/matheuskafuri/epaper/internal/scrape"
)

//go:embed fallback.json
var fallbackJSON []byte

// Store is the slice of the archive repository the server manages directly.
type Store interface {
	Dates() ([]string, error)
	DeleteBefore(date string) (int64, error)
	DeleteAll() (int64, error)
}

// Server serves the archive document, the rendered newspaper and the
// management API.
type Server struct {
	cfg      *config.Config
	svc      *scrape.Service
	store    Store
	log      *zap.Logger
	fallback *archive.Document
	pages    *renderer
	router   chi.Router
	now      func() time.Time

	// base scopes background scrapes; cancelled on shutdown.
	base   context.Context
	cancel context.CancelFunc
	jobs   sync.WaitGroup
}

func New(cfg *config.Config, svc *scrape.Service, store Store, log *zap.Logger) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}
	fallback, err := archive.Decode(fallbackJSON)
	if err != nil {
		return nil, fmt.Errorf("embedded fallback: %w", err)
	}
	fallback.IsFallback = true

	pages, err := newRenderer()
	if err != nil {
		return nil, err
	}

	base, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:      cfg,
		svc:      svc,
		store:    store,
		log:      log,
		fallback: fallback,
		pages:    pages,
		now:      time.Now,
		base:     base,
		cancel:   cancel,
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)

	r.Get("/archive.json", s.handleArchiveJSON)
	r.Get("/", s.handleHome)
	r.Get("/section/{category}", s.handleSection)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(requireAPIKey(s.cfg.APIKey(), s.log))
		r.Get("/", s.handleDirectory)
		r.Get("/archive/today", s.handleToday)
		r.Get("/archive/{date}", s.handleDate)
		r.Get("/cache", s.handleCacheInfo)
		r.Get("/cache/files", s.handleCacheFiles)
		r.Delete("/cache/clear", s.handleCacheClear)
	})
	return r
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe runs until ctx is cancelled, then shuts down gracefully
// and waits for background scrapes to stop.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.cfg.Live() {
		s.background("ensure tomorrow", s.svc.EnsureTomorrow)
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening", zap.String("addr", addr), zap.Bool("live", s.cfg.Live()))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Close()
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close cancels background work and waits for it to finish.
func (s *Server) Close() {
	s.cancel()
	s.jobs.Wait()
}

// background runs fn detached from the request on the server's base context.
func (s *Server) background(name string, fn func(ctx context.Context) error) {
	s.jobs.Add(1)
	go func() {
		defer s.jobs.Done()
		if err := fn(s.base); err != nil && s.base.Err() == nil {
			s.log.Warn("background job failed", zap.String("job", name), zap.Error(err))
		}
	}()
}

// current is the edition served to readers: today's archive when live
// collection is on and it has been scraped, the fallback otherwise.
func (s *Server) current(ctx context.Context) (*archive.Document, error) {
	if !s.cfg.Live() {
		return s.fallback, nil
	}
	today := s.svc.Today(s.now())
	doc, err := s.svc.LoadArchive(ctx, today)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		s.background("precompute "+today, func(ctx context.Context) error {
			return s.svc.Precompute(ctx, today)
		})
		return s.fallback, nil
	}
	return doc, nil
}
