package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/matheuskafuri/epaper/internal/cache"
)

type errorBody struct {
	Detail string `json:"detail"`
}

// writeJSON sends v with status. Headers are already out when encoding
// fails, so the error is only reported.
func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) error {
	return writeJSON(w, status, errorBody{Detail: detail})
}

func (s *Server) reply(w http.ResponseWriter, status int, v any) {
	if err := writeJSON(w, status, v); err != nil {
		s.log.Debug("writing response", zap.Int("status", status), zap.Error(err))
	}
}

func (s *Server) fail(w http.ResponseWriter, status int, detail string) {
	s.reply(w, status, errorBody{Detail: detail})
}

// requireAPIKey rejects requests whose X-API-Key header does not match key.
// An empty key rejects everything.
func requireAPIKey(key string, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get("X-API-Key")
			if key == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				if err := writeError(w, http.StatusForbidden, "Forbidden"); err != nil {
					log.Debug("writing response", zap.Error(err))
				}
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type endpoint struct {
	Method string `json:"method"`
	Path   string `json:"path"`
	About  string `json:"description"`
}

func (s *Server) handleDirectory(w http.ResponseWriter, r *http.Request) {
	s.reply(w, http.StatusOK, map[string]any{
		"name": "epaper archive API",
		"endpoints": []endpoint{
			{http.MethodGet, "/api/v1/archive/today", "today's archive"},
			{http.MethodGet, "/api/v1/archive/{date}", "archive for a YYYY-MM-DD date, scraped on demand"},
			{http.MethodGet, "/api/v1/cache", "dates held in memory"},
			{http.MethodGet, "/api/v1/cache/files", "dates held in the archive store"},
			{http.MethodDelete, "/api/v1/cache/clear", "delete every stored archive"},
		},
	})
}

func (s *Server) handleToday(w http.ResponseWriter, r *http.Request) {
	today := s.svc.Today(s.now())

	deleted, err := s.store.DeleteBefore(today)
	if err != nil {
		s.log.Warn("deleting old archives", zap.Error(err))
	} else if deleted > 0 {
		s.log.Info("deleted old archives", zap.Int64("count", deleted), zap.String("before", today))
	}

	doc, err := s.svc.LoadArchive(r.Context(), today)
	if err != nil {
		s.log.Error("loading archive", zap.String("date", today), zap.Error(err))
		s.fail(w, http.StatusInternalServerError, "Internal server error: "+err.Error())
		return
	}
	if doc == nil {
		s.fail(w, http.StatusNotFound, fmt.Sprintf("No data for today (%s)", today))
		return
	}

	tomorrow := s.svc.Tomorrow(s.now())
	s.background("precompute "+tomorrow, func(ctx context.Context) error {
		return s.svc.Precompute(ctx, tomorrow)
	})
	s.reply(w, http.StatusOK, doc)
}

func (s *Server) handleDate(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	day, err := time.Parse(cache.DateLayout, date)
	if err != nil {
		s.fail(w, http.StatusBadRequest, "Invalid date format. Use YYYY-MM-DD")
		return
	}

	doc, err := s.svc.LoadArchive(r.Context(), date)
	if err != nil {
		s.log.Error("loading archive", zap.String("date", date), zap.Error(err))
		s.fail(w, http.StatusInternalServerError, "Internal server error: "+err.Error())
		return
	}
	if doc == nil {
		s.log.Info("archive not stored, scraping", zap.String("date", date))
		doc, err = s.svc.ScrapeDay(r.Context(), date)
		if err != nil {
			s.fail(w, http.StatusInternalServerError, "Scraping error: "+err.Error())
			return
		}
	}

	next := day.AddDate(0, 0, 1).Format(cache.DateLayout)
	s.background("precompute "+next, func(ctx context.Context) error {
		return s.svc.Precompute(ctx, next)
	})
	s.reply(w, http.StatusOK, doc)
}

func (s *Server) handleCacheInfo(w http.ResponseWriter, r *http.Request) {
	dates := s.svc.CachedDates()
	s.reply(w, http.StatusOK, map[string]any{
		"cached_dates": dates,
		"count":        len(dates),
	})
}

func (s *Server) handleCacheFiles(w http.ResponseWriter, r *http.Request) {
	dates, err := s.store.Dates()
	if err != nil {
		s.log.Error("listing archives", zap.Error(err))
		s.fail(w, http.StatusInternalServerError, "Internal server error: "+err.Error())
		return
	}
	s.reply(w, http.StatusOK, map[string]any{
		"files": dates,
		"count": len(dates),
	})
}

func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	errs := []string{}
	deleted, err := s.store.DeleteAll()
	if err != nil {
		errs = append(errs, err.Error())
	}
	s.svc.Forget()
	s.log.Info("cleared archives", zap.Int64("count", deleted))
	s.reply(w, http.StatusOK, map[string]any{
		"deleted_count": deleted,
		"errors":        errs,
	})
}
