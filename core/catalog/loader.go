package catalog

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/pkg/errors"
)

var (
	// ErrNotReady is returned while the catalog document is still being fetched.
	ErrNotReady = errors.New("catalog not loaded yet")
)

// Source fetches the raw catalog document. Fetching is the only asynchronous
// operation in the planning core; everything downstream waits on the Loader.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// FileSource reads the catalog document from a local path.
type FileSource string

func (src FileSource) Fetch(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(string(src))
	return data, errors.Wrapf(err, "reading catalog file %s", string(src))
}

// HTTPSource fetches the catalog document over HTTP.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

func (src HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	client := src.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "building catalog request")
	}
	res, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetching catalog")
	}
	defer func() { _ = res.Body.Close() }()
	if res.StatusCode != http.StatusOK {
		return nil, errors.Errorf("fetching catalog: unexpected status %d", res.StatusCode)
	}
	body, err := io.ReadAll(res.Body)
	return body, errors.Wrap(err, "reading catalog body")
}

// Loader owns the one-shot asynchronous catalog load. Callers either poll
// Catalog (getting ErrNotReady until the fetch completes) or block on
// Await/Ready; partially-loaded data is never observable.
type Loader struct {
	src Source

	once  sync.Once
	ready chan struct{}

	mu  sync.Mutex
	cat *Catalog
	err error
}

func NewLoader(src Source) *Loader {
	return &Loader{src: src, ready: make(chan struct{})}
}

// Start begins fetching and parsing on a new goroutine. Subsequent calls
// are no-ops.
func (l *Loader) Start(ctx context.Context) {
	l.once.Do(func() {
		go func() {
			defer close(l.ready)
			cat, err := l.load(ctx)
			l.mu.Lock()
			l.cat, l.err = cat, err
			l.mu.Unlock()
		}()
	})
}

func (l *Loader) load(ctx context.Context) (*Catalog, error) {
	data, err := l.src.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return Load(bytes.NewReader(data))
}

// Ready is closed once loading finished, successfully or not.
func (l *Loader) Ready() <-chan struct{} { return l.ready }

// Catalog returns the loaded catalog, ErrNotReady while loading is in
// flight, or the load error.
func (l *Loader) Catalog() (*Catalog, error) {
	select {
	case <-l.ready:
	default:
		return nil, ErrNotReady
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cat, l.err
}

// Await blocks until the catalog is loaded or ctx expires.
func (l *Loader) Await(ctx context.Context) (*Catalog, error) {
	select {
	case <-l.ready:
		return l.Catalog()
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), "awaiting catalog")
	}
}
