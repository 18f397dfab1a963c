package loader

import (
	"context"
	"sync"

	"github.com/matheuskafuri/epaper/internal/archive"
)

// ErrorMessage is the user-facing text for any fetch or parse failure.
const ErrorMessage = "Unable to load archive data"

// State is the loader's lifecycle position.
type State int

const (
	Loading State = iota
	Failed
	Ready
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Failed:
		return "error"
	case Ready:
		return "ready"
	}
	return "unknown"
}

// Status is a snapshot of the loader. Message is set only when Failed;
// Date and IsFallback only when Ready.
type Status struct {
	State      State
	Message    string
	Date       string
	IsFallback bool
}

// Loading reports whether the fetch is still outstanding.
func (s Status) Loading() bool { return s.State == Loading }

// Loader performs the archive fetch exactly once and records its outcome.
// Build one at the application root and hand it to every consumer.
type Loader struct {
	client Client

	once sync.Once
	done chan struct{}

	mu       sync.RWMutex
	status   Status
	doc      *archive.Document
	cause    error
	detached bool
}

// New returns a loader in the Loading state.
func New(client Client) *Loader {
	return &Loader{
		client: client,
		done:   make(chan struct{}),
		status: Status{State: Loading},
	}
}

// Load runs the fetch on first call and waits for it. Later and concurrent
// callers wait for the same outcome. If ctx ends first, Load returns the
// current status without cancelling the fetch.
func (l *Loader) Load(ctx context.Context) Status {
	l.once.Do(func() {
		go l.run(context.WithoutCancel(ctx))
	})
	select {
	case <-l.done:
	case <-ctx.Done():
	}
	return l.Status()
}

func (l *Loader) run(ctx context.Context) {
	defer close(l.done)
	doc, err := l.client.Fetch(ctx)
	l.settle(doc, err)
}

func (l *Loader) settle(doc *archive.Document, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.detached || l.status.State == Ready {
		return
	}
	if err == nil && doc == nil {
		err = archive.ErrMalformed
	}
	if err != nil {
		l.cause = err
		l.status = Status{State: Failed, Message: ErrorMessage}
		return
	}
	l.doc = doc
	l.status = Status{State: Ready, Date: doc.Date, IsFallback: doc.IsFallback}
}

// Done is closed once the fetch has finished, whatever its outcome.
func (l *Loader) Done() <-chan struct{} {
	return l.done
}

// Status returns the current snapshot.
func (l *Loader) Status() Status {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.status
}

// Err is the underlying failure when Failed, for logging.
func (l *Loader) Err() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cause
}

// Resolver resolves against the loaded document; empty until Ready.
func (l *Loader) Resolver() *archive.Resolver {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return archive.NewResolver(l.doc)
}

// Close detaches the loader from its consumers. A fetch that completes
// afterwards is discarded.
func (l *Loader) Close() {
	l.mu.Lock()
	l.detached = true
	l.mu.Unlock()
}
