package folio

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"
)

func TestHTTPFetcher_Fetch(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var gotPath, gotQuery, gotUA string
	last := func() (string, string, string) {
		mu.Lock()
		defer mu.Unlock()
		return gotPath, gotQuery, gotUA
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotPath, gotQuery, gotUA = r.URL.Path, r.URL.RawQuery, r.UserAgent()
		mu.Unlock()
		switch r.URL.Path {
		case "/projects/proj-1.html":
			_, _ = w.Write([]byte("<h1>One</h1>"))
		case "/projects/big.html":
			_, _ = w.Write([]byte(strings.Repeat("x", 64)))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	f := NewHTTPFetcher(time.Second, WithUserAgent("folio-test"), WithMaxBytes(32))

	t.Run("relative to root page", func(t *testing.T) {
		loc := mustLocation(t, srv.URL+"/index.html")
		body, err := f.Fetch(context.Background(), loc, "projects/proj-1.html?v=42")
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if string(body) != "<h1>One</h1>" {
			t.Errorf("Fetch() body = %q", body)
		}
		path, query, ua := last()
		if path != "/projects/proj-1.html" || query != "v=42" {
			t.Errorf("request = %s?%s", path, query)
		}
		if ua != "folio-test" {
			t.Errorf("User-Agent = %q, want folio-test", ua)
		}
	})

	t.Run("relative to collection page", func(t *testing.T) {
		loc := mustLocation(t, srv.URL+"/projects/index.html")
		if _, err := f.Fetch(context.Background(), loc, "proj-1.html?v=1"); err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if path, _, _ := last(); path != "/projects/proj-1.html" {
			t.Errorf("request path = %s, want /projects/proj-1.html", path)
		}
	})

	t.Run("non-success status", func(t *testing.T) {
		loc := mustLocation(t, srv.URL+"/")
		_, err := f.Fetch(context.Background(), loc, "projects/missing.html?v=1")
		var loadErr *LoadError
		if !errors.As(err, &loadErr) {
			t.Fatalf("Fetch() error = %v, want *LoadError", err)
		}
		if loadErr.Status != http.StatusNotFound || loadErr.Path != "projects/missing.html?v=1" {
			t.Errorf("LoadError = %+v", loadErr)
		}
	})

	t.Run("body over limit", func(t *testing.T) {
		loc := mustLocation(t, srv.URL+"/")
		if _, err := f.Fetch(context.Background(), loc, "projects/big.html"); !errors.Is(err, ErrContentTooLarge) {
			t.Errorf("Fetch() error = %v, want ErrContentTooLarge", err)
		}
	})

	t.Run("relative location rejected", func(t *testing.T) {
		if _, err := f.Fetch(context.Background(), mustLocation(t, "/index.html"), "projects/proj-1.html"); !errors.Is(err, ErrInvalidLocation) {
			t.Errorf("Fetch() error = %v, want ErrInvalidLocation", err)
		}
	})
}

func TestFSFetcher_Fetch(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"projects/proj-1.html": {Data: []byte("<h1>One</h1>")},
		"about.html":           {Data: []byte("<h1>About</h1>")},
	}
	f := NewFSFetcher(fsys)

	tests := []struct {
		name       string
		loc        string
		path       string
		want       string
		wantStatus int
	}{
		{"root page", "/index.html", "projects/proj-1.html?v=1", "<h1>One</h1>", 0},
		{"root directory", "/", "projects/proj-1.html", "<h1>One</h1>", 0},
		{"collection page", "/projects/index.html", "proj-1.html?v=1", "<h1>One</h1>", 0},
		{"collection directory", "/projects/", "proj-1.html", "<h1>One</h1>", 0},
		{"site-absolute path", "/projects/index.html", "/about.html", "<h1>About</h1>", 0},
		{"parent traversal clamped at root", "/index.html", "../../about.html", "<h1>About</h1>", 0},
		{"missing file", "/index.html", "projects/proj-9.html?v=1", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			body, err := f.Fetch(context.Background(), mustLocation(t, tt.loc), tt.path)
			if tt.wantStatus != 0 {
				var loadErr *LoadError
				if !errors.As(err, &loadErr) || loadErr.Status != tt.wantStatus {
					t.Fatalf("Fetch() error = %v, want LoadError status %d", err, tt.wantStatus)
				}
				return
			}
			if err != nil {
				t.Fatalf("Fetch() error = %v", err)
			}
			if string(body) != tt.want {
				t.Errorf("Fetch() = %q, want %q", body, tt.want)
			}
		})
	}

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := f.Fetch(ctx, Location{}, "about.html"); !errors.Is(err, context.Canceled) {
			t.Errorf("Fetch() error = %v, want context.Canceled", err)
		}
	})
}
