package folio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

// Fetcher retrieves the raw fragment document at a path relative to the
// including page.
//
// Implementations report a non-success response as *LoadError with Status
// set. Any other error is wrapped into a LoadError by the Loader.
type Fetcher interface {
	Fetch(ctx context.Context, loc Location, relPath string) ([]byte, error)
}

// Fetch defaults.
const (
	DefaultFetchTimeout = 10 * time.Second
	DefaultUserAgent    = "go-folio"
	DefaultMaxBytes     = 4 << 20
)

// ErrContentTooLarge indicates the fragment exceeded the fetcher's size limit.
var ErrContentTooLarge = errors.New("content too large")

// HTTPFetcher fetches fragments over HTTP(S). Relative paths are resolved
// against the location URL the way a browser resolves fetch() targets, so
// the location must be absolute.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
}

// HTTPFetcherOption configures an HTTPFetcher.
type HTTPFetcherOption func(*HTTPFetcher)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) HTTPFetcherOption {
	return func(f *HTTPFetcher) { f.client = c }
}

// WithUserAgent sets the User-Agent header. Empty keeps the default.
func WithUserAgent(ua string) HTTPFetcherOption {
	return func(f *HTTPFetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithMaxBytes limits the accepted body size. Zero or less keeps the default.
func WithMaxBytes(n int64) HTTPFetcherOption {
	return func(f *HTTPFetcher) {
		if n > 0 {
			f.maxBytes = n
		}
	}
}

// NewHTTPFetcher creates an HTTPFetcher with the given request timeout.
func NewHTTPFetcher(timeout time.Duration, opts ...HTTPFetcherOption) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	f := &HTTPFetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: DefaultUserAgent,
		maxBytes:  DefaultMaxBytes,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch performs a GET on relPath resolved against loc.
func (f *HTTPFetcher) Fetch(ctx context.Context, loc Location, relPath string) ([]byte, error) {
	if loc.URL == nil || !loc.URL.IsAbs() {
		return nil, fmt.Errorf("%w: %s is not an absolute URL", ErrInvalidLocation, loc)
	}
	ref, err := url.Parse(relPath)
	if err != nil {
		return nil, fmt.Errorf("parse path: %w", err)
	}
	target := loc.URL.ResolveReference(ref)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &LoadError{Path: relPath, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("%w: exceeds %d bytes", ErrContentTooLarge, f.maxBytes)
	}
	return body, nil
}

// FSFetcher reads fragments from a site tree on a filesystem, for offline
// rendering. Query strings are ignored; a missing file is reported as a 404.
type FSFetcher struct {
	fsys fs.FS
}

// NewFSFetcher creates an FSFetcher rooted at the site root.
func NewFSFetcher(fsys fs.FS) *FSFetcher {
	return &FSFetcher{fsys: fsys}
}

// Fetch reads relPath resolved against the directory of loc.
func (f *FSFetcher) Fetch(ctx context.Context, loc Location, relPath string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := relPath
	if i := strings.IndexAny(name, "?#"); i != -1 {
		name = name[:i]
	}
	if !strings.HasPrefix(name, "/") {
		base := loc.Path()
		if !strings.HasSuffix(base, "/") {
			base = path.Dir(base)
		}
		name = path.Join(base, name)
	}
	name = strings.TrimPrefix(path.Clean(name), "/")
	if name == "" {
		name = "."
	}

	data, err := fs.ReadFile(f.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &LoadError{Path: relPath, Status: http.StatusNotFound, Err: err}
		}
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

// Compile-time interface checks.
var (
	_ Fetcher = (*HTTPFetcher)(nil)
	_ Fetcher = (*FSFetcher)(nil)
)
