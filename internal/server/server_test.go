package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/matheuskafuri/epaper/internal/archive"
	"github.com/matheuskafuri/epaper/internal/cache"
	"github.com/matheuskafuri/epaper/internal/config"
	"github.com/matheuskafuri/epaper/internal/scrape"
)

const testKey = "secret"

// Karachi date 2025-09-10 shifted back twelve years.
var fixedNow = time.Date(2025, 9, 10, 6, 0, 0, 0, time.UTC)

const today = "2013-09-10"

type failingFetcher struct{}

func (failingFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	return "", errors.New("offline")
}

func newTestServer(t *testing.T, live bool) (*Server, *cache.Cache) {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{APIKey: testKey, Live: &live},
		Scraper: config.ScraperConfig{
			BaseURL:     "https://www.dawn.com/newspaper",
			Delay:       "0s",
			Concurrency: 1,
			YearsBack:   12,
			Timezone:    "Asia/Karachi",
		},
		Sections: []config.Section{{Name: "national", Type: "html", Enabled: true}},
	}

	repo, err := cache.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening cache: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	svc, err := scrape.NewService(cfg, repo, failingFetcher{}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	t.Cleanup(svc.Close)
	srv, err := New(cfg, svc, repo, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	srv.now = func() time.Time { return fixedNow }
	t.Cleanup(srv.Close)
	return srv, repo
}

func do(t *testing.T, srv *Server, method, path string, withKey bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if withKey {
		req.Header.Set("X-API-Key", testKey)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
}

func save(t *testing.T, repo *cache.Cache, date string) {
	t.Helper()
	doc := &archive.Document{Date: date, Sections: map[string][]archive.Story{
		"national": {{Title: "Stored story " + date, URL: "https://www.dawn.com/news/1"}},
	}}
	if err := repo.Save(doc); err != nil {
		t.Fatalf("saving %s: %v", date, err)
	}
}

func TestArchiveJSONFallback(t *testing.T) {
	srv, _ := newTestServer(t, false)
	rec := do(t, srv, http.MethodGet, "/archive.json", false)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if cc := rec.Header().Get("Cache-Control"); cc != "no-store" {
		t.Errorf("Cache-Control = %q", cc)
	}
	var doc archive.Document
	decode(t, rec, &doc)
	if !doc.IsFallback || doc.Date != "2025-09-09" {
		t.Errorf("unexpected document: date=%s fallback=%v", doc.Date, doc.IsFallback)
	}
}

func TestArchiveJSONLive(t *testing.T) {
	srv, repo := newTestServer(t, true)
	save(t, repo, today)

	rec := do(t, srv, http.MethodGet, "/archive.json", false)
	var doc archive.Document
	decode(t, rec, &doc)
	if doc.Date != today || doc.IsFallback {
		t.Errorf("expected live archive for %s, got date=%s fallback=%v", today, doc.Date, doc.IsFallback)
	}
}

func TestArchiveJSONLiveMissingPrecomputes(t *testing.T) {
	srv, repo := newTestServer(t, true)

	rec := do(t, srv, http.MethodGet, "/archive.json", false)
	var doc archive.Document
	decode(t, rec, &doc)
	if !doc.IsFallback {
		t.Error("expected fallback while today is not yet scraped")
	}

	srv.jobs.Wait()
	if ok, _ := repo.Exists(today); !ok {
		t.Error("expected today to be precomputed in the background")
	}
}

func TestHomePage(t *testing.T) {
	srv, _ := newTestServer(t, false)
	rec := do(t, srv, http.MethodGet, "/", false)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	page := string(body)
	for _, want := range []string{
		"September 09, 2025",
		"Monsoon floods displace thousands across Punjab",
		"read more",
		"More from the front page",
		"Live collection is disabled",
		"PRISM",
		"No Back Page stories right now.",
		"After the deluge",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("home page missing %q", want)
		}
	}
}

func TestSectionPage(t *testing.T) {
	srv, _ := newTestServer(t, false)

	rec := do(t, srv, http.MethodGet, "/section/sport", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("sport status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Pakistan name squad for Asia Cup") {
		t.Error("sport page missing story")
	}

	rec = do(t, srv, http.MethodGet, "/section/letters", false)
	if !strings.Contains(rec.Body.String(), "No Letters stories right now.") {
		t.Error("letters page missing empty message")
	}

	rec = do(t, srv, http.MethodGet, "/section/weather", false)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown section status = %d, want 404", rec.Code)
	}
}

func TestAPIKeyRequired(t *testing.T) {
	srv, _ := newTestServer(t, false)
	for _, path := range []string{"/api/v1/", "/api/v1/cache", "/api/v1/archive/today"} {
		rec := do(t, srv, http.MethodGet, path, false)
		if rec.Code != http.StatusForbidden {
			t.Errorf("%s without key: status %d, want 403", path, rec.Code)
		}
		var body errorBody
		decode(t, rec, &body)
		if body.Detail != "Forbidden" {
			t.Errorf("%s: detail = %q", path, body.Detail)
		}
	}

	rec := do(t, srv, http.MethodGet, "/api/v1/", true)
	if rec.Code != http.StatusOK {
		t.Errorf("directory with key: status %d", rec.Code)
	}
}

func TestAPIRejectsWhenNoKeyConfigured(t *testing.T) {
	h := requireAPIKey("", zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run")
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cache", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestArchiveToday(t *testing.T) {
	srv, repo := newTestServer(t, true)

	rec := do(t, srv, http.MethodGet, "/api/v1/archive/today", true)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing today: status %d, want 404", rec.Code)
	}
	var body errorBody
	decode(t, rec, &body)
	if !strings.Contains(body.Detail, today) {
		t.Errorf("detail should name the date: %q", body.Detail)
	}

	save(t, repo, "2013-09-01")
	save(t, repo, today)
	rec = do(t, srv, http.MethodGet, "/api/v1/archive/today", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var doc archive.Document
	decode(t, rec, &doc)
	if doc.Date != today {
		t.Errorf("date = %s", doc.Date)
	}

	srv.jobs.Wait()
	dates, _ := repo.Dates()
	want := []string{today, "2013-09-11"}
	if strings.Join(dates, ",") != strings.Join(want, ",") {
		t.Errorf("stored dates = %v, want %v (old pruned, tomorrow precomputed)", dates, want)
	}
}

func TestArchiveByDate(t *testing.T) {
	srv, repo := newTestServer(t, true)

	rec := do(t, srv, http.MethodGet, "/api/v1/archive/09-10-2013", true)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad date: status %d, want 400", rec.Code)
	}

	save(t, repo, "2013-08-01")
	rec = do(t, srv, http.MethodGet, "/api/v1/archive/2013-08-01", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("stored date: status %d", rec.Code)
	}
	var doc archive.Document
	decode(t, rec, &doc)
	if len(doc.Section("national")) != 1 {
		t.Errorf("unexpected stored document: %+v", doc)
	}

	// Missing dates are scraped on demand; every section fails offline and
	// comes back empty.
	rec = do(t, srv, http.MethodGet, "/api/v1/archive/2013-07-01", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("scraped date: status %d", rec.Code)
	}
	decode(t, rec, &doc)
	if stories, ok := doc.Sections["national"]; !ok || len(stories) != 0 {
		t.Errorf("expected empty national list, got %v", stories)
	}

	srv.jobs.Wait()
	for _, d := range []string{"2013-07-01", "2013-07-02", "2013-08-02"} {
		if ok, _ := repo.Exists(d); !ok {
			t.Errorf("expected %s to be stored", d)
		}
	}
}

func TestCacheEndpoints(t *testing.T) {
	srv, repo := newTestServer(t, true)
	save(t, repo, "2013-08-01")
	save(t, repo, "2013-08-02")

	do(t, srv, http.MethodGet, "/api/v1/archive/2013-08-01", true)
	srv.jobs.Wait()

	var info struct {
		CachedDates []string `json:"cached_dates"`
		Count       int      `json:"count"`
	}
	decode(t, do(t, srv, http.MethodGet, "/api/v1/cache", true), &info)
	if info.Count != 1 || info.CachedDates[0] != "2013-08-01" {
		t.Errorf("unexpected cache info %+v", info)
	}

	var files struct {
		Files []string `json:"files"`
		Count int      `json:"count"`
	}
	decode(t, do(t, srv, http.MethodGet, "/api/v1/cache/files", true), &files)
	if files.Count != 2 {
		t.Errorf("unexpected files %+v", files)
	}

	var cleared struct {
		Deleted int      `json:"deleted_count"`
		Errors  []string `json:"errors"`
	}
	decode(t, do(t, srv, http.MethodDelete, "/api/v1/cache/clear", true), &cleared)
	if cleared.Deleted != 2 || len(cleared.Errors) != 0 {
		t.Errorf("unexpected clear result %+v", cleared)
	}
	if dates, _ := repo.Dates(); len(dates) != 0 {
		t.Errorf("expected empty store, got %v", dates)
	}
	if len(srv.svc.CachedDates()) != 0 {
		t.Error("clear should drop the memory cache")
	}
}

func TestReplyReportsEncodeFailure(t *testing.T) {
	srv, _ := newTestServer(t, false)
	core, logs := observer.New(zapcore.DebugLevel)
	srv.log = zap.New(core)

	rec := httptest.NewRecorder()
	srv.reply(rec, http.StatusOK, map[string]any{"bad": make(chan int)})

	entries := logs.FilterMessage("writing response").All()
	if len(entries) != 1 {
		t.Fatalf("expected one logged write failure, got %d", len(entries))
	}
	if entries[0].Level != zapcore.DebugLevel {
		t.Errorf("level = %v, want debug", entries[0].Level)
	}
}
