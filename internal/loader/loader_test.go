package loader

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matheuskafuri/epaper/internal/archive"
)

const sampleArchive = `{"date":"2025-09-09","isFallback":true,"sections":{"front-page":[{"title":"Hero","url":"https://example.com/hero"}]}}`

func archiveServer(t *testing.T, status int, body string) (*httptest.Server, *http.Header) {
	t.Helper()
	var seen http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Clone()
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func TestLoadReady(t *testing.T) {
	srv, seen := archiveServer(t, http.StatusOK, sampleArchive)
	client, err := NewHTTPClient(srv.URL+"/archive.json", srv.Client())
	if err != nil {
		t.Fatalf("NewHTTPClient: %v", err)
	}

	l := New(client)
	if !l.Status().Loading() {
		t.Fatal("new loader should be loading")
	}
	st := l.Load(context.Background())
	if st.State != Ready {
		t.Fatalf("expected ready, got %s (%v)", st.State, l.Err())
	}
	if st.Date != "2025-09-09" || !st.IsFallback {
		t.Errorf("unexpected status: %+v", st)
	}
	if st.Loading() {
		t.Error("ready status should not be loading")
	}
	if got := (*seen).Get("Cache-Control"); got == "" {
		t.Error("expected cache-disabling header on request")
	}
	if got := (*seen).Get("Pragma"); got != "no-cache" {
		t.Errorf("Pragma = %q, want no-cache", got)
	}
	fp := l.Resolver().FrontPage()
	if fp.Hero == nil || fp.Hero.Title != "Hero" {
		t.Errorf("unexpected hero: %+v", fp.Hero)
	}
}

func TestLoadNon2xx(t *testing.T) {
	srv, _ := archiveServer(t, http.StatusNotFound, "nope")
	client, _ := NewHTTPClient(srv.URL, srv.Client())

	l := New(client)
	st := l.Load(context.Background())
	if st.State != Failed {
		t.Fatalf("expected error state, got %s", st.State)
	}
	if st.Message != ErrorMessage {
		t.Errorf("message = %q, want %q", st.Message, ErrorMessage)
	}
	var se *StatusError
	if !errors.As(l.Err(), &se) || se.Code != http.StatusNotFound {
		t.Errorf("expected StatusError 404, got %v", l.Err())
	}
	if got := l.Resolver().Stories(archive.FrontPage); len(got) != 0 {
		t.Errorf("failed loader should resolve nothing, got %d", len(got))
	}
}

func TestLoadMalformed(t *testing.T) {
	srv, _ := archiveServer(t, http.StatusOK, "{not json")
	client, _ := NewHTTPClient(srv.URL, srv.Client())

	l := New(client)
	st := l.Load(context.Background())
	if st.State != Failed || st.Message == "" {
		t.Fatalf("expected error with message, got %+v", st)
	}
	if !errors.Is(l.Err(), archive.ErrMalformed) {
		t.Errorf("expected ErrMalformed, got %v", l.Err())
	}
}

func TestLoadNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client, _ := NewHTTPClient(url, nil)
	l := New(client)
	st := l.Load(context.Background())
	if st.State != Failed {
		t.Fatalf("expected error state, got %s", st.State)
	}
	if st.Loading() {
		t.Error("failed status should not be loading")
	}
	if st.Message == "" {
		t.Error("expected non-empty message")
	}
}

func TestNewHTTPClientRejectsScheme(t *testing.T) {
	for _, u := range []string{"file:///etc/passwd", "ftp://example.com", ""} {
		if _, err := NewHTTPClient(u, nil); err == nil {
			t.Errorf("NewHTTPClient(%q): expected error", u)
		}
	}
}

type countingClient struct {
	calls atomic.Int32
	doc   *archive.Document
}

func (c *countingClient) Fetch(ctx context.Context) (*archive.Document, error) {
	c.calls.Add(1)
	time.Sleep(10 * time.Millisecond)
	return c.doc, nil
}

func TestLoadFetchesOnce(t *testing.T) {
	client := &countingClient{doc: &archive.Document{Date: "2025-09-09"}}
	l := New(client)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Load(context.Background())
		}()
	}
	wg.Wait()
	l.Load(context.Background())

	if n := client.calls.Load(); n != 1 {
		t.Errorf("expected exactly one fetch, got %d", n)
	}
	if l.Status().State != Ready {
		t.Errorf("expected ready, got %s", l.Status().State)
	}
}

type blockingClient struct {
	release chan struct{}
	doc     *archive.Document
}

func (c *blockingClient) Fetch(ctx context.Context) (*archive.Document, error) {
	<-c.release
	return c.doc, nil
}

func TestLoadContextExpires(t *testing.T) {
	client := &blockingClient{release: make(chan struct{}), doc: &archive.Document{Date: "2025-09-09"}}
	l := New(client)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if st := l.Load(ctx); st.State != Loading {
		t.Fatalf("expected loading while fetch is outstanding, got %s", st.State)
	}

	close(client.release)
	<-l.Done()
	if st := l.Status(); st.State != Ready {
		t.Errorf("expected ready after release, got %s", st.State)
	}
}

func TestCloseDiscardsLateResult(t *testing.T) {
	client := &blockingClient{release: make(chan struct{}), doc: &archive.Document{Date: "2025-09-09"}}
	l := New(client)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l.Load(ctx)
	l.Close()

	close(client.release)
	<-l.Done()
	if st := l.Status(); st.State != Loading {
		t.Errorf("late result should be discarded, got %s", st.State)
	}
	if r := l.Resolver(); r.Date() != "" {
		t.Errorf("detached loader should not expose a document, got date %q", r.Date())
	}
}

func TestFileClient(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.json")
	if err := os.WriteFile(path, []byte(sampleArchive), 0o644); err != nil {
		t.Fatalf("writing archive: %v", err)
	}
	st := New(FileClient{Path: path}).Load(context.Background())
	if st.State != Ready || st.Date != "2025-09-09" {
		t.Errorf("unexpected status: %+v", st)
	}

	st = New(FileClient{Path: filepath.Join(t.TempDir(), "missing.json")}).Load(context.Background())
	if st.State != Failed {
		t.Errorf("expected missing file to fail, got %s", st.State)
	}
}

func TestStaticClientNilDocument(t *testing.T) {
	st := New(StaticClient{}).Load(context.Background())
	if st.State != Failed {
		t.Errorf("nil document should fail, got %s", st.State)
	}
}
