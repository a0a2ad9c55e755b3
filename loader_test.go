package folio

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

const testFragment = `<!DOCTYPE html><html><head><title>P</title></head><body>` +
	`<nav><a href="/index.html">Home</a></nav><h1>Title</h1><p><img src="/img/x.png"></p>` +
	`<p><a href="/about">About</a> <a href="#section">Jump</a> <a href="https://github.com">GH</a></p>` +
	`</body></html>`

// recordingFetcher serves fixed responses and records every requested path.
type recordingFetcher struct {
	mu    sync.Mutex
	paths []string
	body  string
	err   error
}

func (f *recordingFetcher) Fetch(_ context.Context, _ Location, relPath string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths = append(f.paths, relPath)
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.body), nil
}

func (f *recordingFetcher) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.paths...)
}

// steppingClock advances one millisecond per reading.
func steppingClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	now := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Millisecond)
		return now
	}
}

func TestLoader_Load_FetchPath(t *testing.T) {
	t.Parallel()

	for _, id := range DefaultRegistry().IDs() {
		t.Run(FragmentFilename(id), func(t *testing.T) {
			t.Parallel()

			f := &recordingFetcher{body: testFragment}
			l := NewLoader(f, WithClock(steppingClock(time.UnixMilli(1000))))
			loc := mustLocation(t, "/index.html")

			if _, err := l.Load(context.Background(), id, loc, ""); err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if _, err := l.Load(context.Background(), id, loc, ""); err != nil {
				t.Fatalf("Load() error = %v", err)
			}

			calls := f.calls()
			if len(calls) != 2 {
				t.Fatalf("fetch calls = %d, want exactly one per Load", len(calls))
			}
			for _, c := range calls {
				if !strings.Contains(c, FragmentFilename(id)) || !strings.Contains(c, "?v=") {
					t.Errorf("fetch path %q should contain %q and a cache-busting token", c, FragmentFilename(id))
				}
			}
			if calls[0] == calls[1] {
				t.Errorf("cache-busting token should differ between loads, both %q", calls[0])
			}
		})
	}
}

func TestLoader_Load_Location(t *testing.T) {
	t.Parallel()

	tests := []struct {
		loc  string
		want string
	}{
		{"/index.html", "projects/proj-1.html?v=1700000000000"},
		{"/projects/index.html", "proj-1.html?v=1700000000000"},
	}

	for _, tt := range tests {
		t.Run(tt.loc, func(t *testing.T) {
			t.Parallel()

			f := &recordingFetcher{body: testFragment}
			l := NewLoader(f, WithClock(func() time.Time { return time.UnixMilli(1700000000000) }))
			c, err := l.Load(context.Background(), 1, mustLocation(t, tt.loc), "")
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if calls := f.calls(); len(calls) != 1 || calls[0] != tt.want {
				t.Errorf("fetch calls = %v, want [%s]", calls, tt.want)
			}
			if c.Path != tt.want {
				t.Errorf("Content.Path = %q, want %q", c.Path, tt.want)
			}
		})
	}
}

func TestLoader_Load_Content(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		prefix       string
		wantContains []string
		wantExcludes []string
	}{
		{
			name:         "no prefix",
			prefix:       "",
			wantContains: []string{"<h1>Title</h1>", `src="img/x.png"`, `href="about"`, `href="#section"`, `href="https://github.com"`},
			wantExcludes: []string{"<nav>", "Home", "<title>"},
		},
		{
			name:         "parent prefix",
			prefix:       "../",
			wantContains: []string{"<h1>Title</h1>", `src="../img/x.png"`, `href="../about"`, `href="#section"`, `href="https://github.com"`},
			wantExcludes: []string{"<nav>", `href="../#section"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			l := NewLoader(&recordingFetcher{body: testFragment})
			c, err := l.Load(context.Background(), 2, Location{}, tt.prefix)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			for _, want := range tt.wantContains {
				if !strings.Contains(c.HTML, want) {
					t.Errorf("HTML missing %q\ngot: %s", want, c.HTML)
				}
			}
			for _, bad := range tt.wantExcludes {
				if strings.Contains(c.HTML, bad) {
					t.Errorf("HTML should not contain %q\ngot: %s", bad, c.HTML)
				}
			}
			if c.ProjectID != 2 || c.Title != "Title" {
				t.Errorf("Content = {ProjectID: %d, Title: %q}", c.ProjectID, c.Title)
			}
		})
	}
}

func TestLoader_Load_NotFound(t *testing.T) {
	t.Parallel()

	for _, id := range []ProjectID{0, 5, -1, 99} {
		f := &recordingFetcher{body: testFragment}
		l := NewLoader(f)

		_, err := l.Load(context.Background(), id, Location{}, "")
		if !errors.Is(err, ErrProjectNotFound) {
			t.Errorf("Load(%d) error = %v, want ErrProjectNotFound", id, err)
		}
		var nf *NotFoundError
		if !errors.As(err, &nf) || nf.ProjectID != id {
			t.Errorf("Load(%d) error = %v, want *NotFoundError for %d", id, err, id)
		}
		if n := len(f.calls()); n != 0 {
			t.Errorf("Load(%d) fetched %d times, want 0", id, n)
		}
		if l.Store().Len() != 0 {
			t.Errorf("Load(%d) should not store anything", id)
		}
	}
}

func TestLoader_Load_HTTPStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	l := NewLoader(NewHTTPFetcher(time.Second))
	_, err := l.Load(context.Background(), 1, mustLocation(t, srv.URL+"/"), "")

	if !errors.Is(err, ErrLoadFailed) {
		t.Fatalf("Load() error = %v, want ErrLoadFailed", err)
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("Load() error %q should include the status code", err)
	}
	var loadErr *LoadError
	if !errors.As(err, &loadErr) || !strings.HasPrefix(loadErr.Path, "projects/proj-1.html?v=") {
		t.Errorf("LoadError = %+v, want path of the attempted fetch", loadErr)
	}
}

func TestLoader_Load_TransportError(t *testing.T) {
	t.Parallel()

	cause := errors.New("network down")
	l := NewLoader(&recordingFetcher{err: cause})

	_, err := l.Load(context.Background(), 3, Location{}, "")
	if !errors.Is(err, ErrLoadFailed) || !errors.Is(err, cause) {
		t.Fatalf("Load() error = %v, want LoadError wrapping cause", err)
	}
	if !strings.Contains(err.Error(), "network down") {
		t.Errorf("Load() error %q should carry the original message", err)
	}
}

func TestLoader_Load_Logging(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	l := NewLoader(&recordingFetcher{err: errors.New("boom")}, WithLogger(logger))

	_, _ = l.Load(context.Background(), 1, mustLocation(t, "/projects/index.html"), "")

	out := buf.String()
	for _, want := range []string{"level=ERROR", "project=1", "path=", "proj-1.html?v=", "location=/projects/index.html", "boom"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q\ngot: %s", want, out)
		}
	}
}

func TestLoader_Store(t *testing.T) {
	t.Parallel()

	t.Run("write-only by default", func(t *testing.T) {
		t.Parallel()

		f := &recordingFetcher{body: testFragment}
		l := NewLoader(f)

		first, err := l.Load(context.Background(), 1, Location{}, "")
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if stored, ok := l.Store().Get(1); !ok || stored != first {
			t.Errorf("store should hold the loaded content")
		}
		if _, err := l.Load(context.Background(), 1, Location{}, ""); err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if n := len(f.calls()); n != 2 {
			t.Errorf("fetch calls = %d, want 2 (store is never read)", n)
		}
	})

	t.Run("read-through serves stored content", func(t *testing.T) {
		t.Parallel()

		f := &recordingFetcher{body: testFragment}
		l := NewLoader(f, WithReadThrough())

		first, _ := l.Load(context.Background(), 1, Location{}, "")
		second, err := l.Load(context.Background(), 1, Location{}, "")
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if second != first {
			t.Error("read-through Load() should return stored content")
		}
		if n := len(f.calls()); n != 1 {
			t.Errorf("fetch calls = %d, want 1", n)
		}
	})

	t.Run("shared store", func(t *testing.T) {
		t.Parallel()

		shared := NewStore()
		l := NewLoader(&recordingFetcher{body: testFragment}, WithStore(shared))
		if _, err := l.Load(context.Background(), 4, Location{}, ""); err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if _, ok := shared.Get(4); !ok {
			t.Error("shared store should receive loaded content")
		}
	})

	t.Run("failed load not stored", func(t *testing.T) {
		t.Parallel()

		l := NewLoader(&recordingFetcher{err: errors.New("x")})
		_, _ = l.Load(context.Background(), 1, Location{}, "")
		if l.Store().Len() != 0 {
			t.Error("failed load should not be stored")
		}
	})
}

func TestLoader_CustomRegistry(t *testing.T) {
	t.Parallel()

	reg, err := NewRegistry("work", map[ProjectID]string{7: "robot.html"})
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	f := &recordingFetcher{body: testFragment}
	l := NewLoader(f, WithRegistry(reg), WithClock(func() time.Time { return time.UnixMilli(5) }))

	if _, err := l.Load(context.Background(), 7, mustLocation(t, "/work/"), ""); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if calls := f.calls(); len(calls) != 1 || calls[0] != "robot.html?v=5" {
		t.Errorf("fetch calls = %v, want [robot.html?v=5]", calls)
	}
	if _, err := l.Load(context.Background(), 1, Location{}, ""); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("Load(1) error = %v, want ErrProjectNotFound", err)
	}
	if l.Registry() != reg {
		t.Error("Registry() should return the configured registry")
	}
}
