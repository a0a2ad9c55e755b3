package folio

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/alnah/go-folio/internal/pipeline"
)

// Loader resolves, fetches and prepares project fragments.
type Loader struct {
	registry    *Registry
	fetcher     Fetcher
	store       *Store
	now         func() time.Time
	logger      *slog.Logger
	readThrough bool
}

// Option configures a Loader.
type Option func(*Loader)

// WithRegistry replaces the default project registry.
func WithRegistry(r *Registry) Option {
	return func(l *Loader) { l.registry = r }
}

// WithStore sets the content store, e.g. to share one across loaders.
func WithStore(s *Store) Option {
	return func(l *Loader) { l.store = s }
}

// WithClock sets the time source of the cache-busting token.
func WithClock(now func() time.Time) Option {
	return func(l *Loader) { l.now = now }
}

// WithLogger sets the diagnostic logger. Logs are discarded by default.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// WithReadThrough serves stored content instead of fetching again.
// Without it the store is written on every successful load but never read,
// so each load is a fresh network fetch.
func WithReadThrough() Option {
	return func(l *Loader) { l.readThrough = true }
}

// NewLoader creates a Loader fetching through f.
func NewLoader(f Fetcher, opts ...Option) *Loader {
	l := &Loader{
		registry: DefaultRegistry(),
		fetcher:  f,
		store:    NewStore(),
		now:      time.Now,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Store returns the loader's content store.
func (l *Loader) Store() *Store {
	return l.store
}

// Registry returns the loader's project registry.
func (l *Loader) Registry() *Registry {
	return l.registry
}

// Load fetches project id for a page at loc and returns its content with
// image and link paths rewritten using prefix.
//
// Unmapped identifiers fail with *NotFoundError before any fetch. Fetch,
// status and parse failures fail with *LoadError.
func (l *Loader) Load(ctx context.Context, id ProjectID, loc Location, prefix string) (*Content, error) {
	if l.readThrough {
		if c, ok := l.store.Get(id); ok {
			return c, nil
		}
	}

	relPath, err := ResolvePath(l.registry, id, loc)
	if err != nil {
		l.logger.ErrorContext(ctx, "loading project",
			"project", int(id), "location", loc.String(), "error", err)
		return nil, err
	}

	fetchPath := CacheBust(relPath, l.now())
	content, err := l.fetchContent(ctx, id, loc, fetchPath, prefix)
	if err != nil {
		l.logger.ErrorContext(ctx, "loading project",
			"project", int(id), "path", fetchPath, "location", loc.String(), "error", err)
		return nil, err
	}

	l.store.Put(id, content)
	l.logger.DebugContext(ctx, "loaded project",
		"project", int(id), "path", fetchPath, "bytes", len(content.HTML))
	return content, nil
}

func (l *Loader) fetchContent(ctx context.Context, id ProjectID, loc Location, fetchPath, prefix string) (*Content, error) {
	body, err := l.fetcher.Fetch(ctx, loc, fetchPath)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			return nil, loadErr
		}
		return nil, &LoadError{Path: fetchPath, Err: err}
	}

	frag, err := pipeline.ExtractContent(string(body), prefix)
	if err != nil {
		return nil, &LoadError{Path: fetchPath, Err: err}
	}

	return &Content{
		ProjectID: id,
		HTML:      frag.HTML,
		Title:     frag.Title,
		Path:      fetchPath,
	}, nil
}
