package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/alnah/go-folio/internal/assets"
	"github.com/alnah/go-folio/internal/preview"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Environment, site fixtures and fake renderer
// ---------------------------------------------------------------------------

var testNow = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

// syncBuffer is a bytes.Buffer safe for the watch goroutine and the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// fakeRenderer records screenshot requests without a browser.
type fakeRenderer struct {
	mu       sync.Mutex
	document string
	opts     *preview.Options
	timeout  time.Duration
	closed   bool
	err      error
}

func (f *fakeRenderer) Screenshot(_ context.Context, filePath string, opts *preview.Options) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	f.document = string(data)
	f.opts = opts
	return []byte("\x89PNG fake"), nil
}

func (f *fakeRenderer) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// testEnv returns an isolated environment. vars stands in for the process
// environment.
func testEnv(vars map[string]string) (*Environment, *syncBuffer, *syncBuffer) {
	env, stdout, stderr, _ := testEnvWithRenderer(vars)
	return env, stdout, stderr
}

// testEnvWithRenderer is testEnv plus the fake renderer preview will use.
func testEnvWithRenderer(vars map[string]string) (*Environment, *syncBuffer, *syncBuffer, *fakeRenderer) {
	stdout, stderr := &syncBuffer{}, &syncBuffer{}
	renderer := &fakeRenderer{}
	env := &Environment{
		Now:    func() time.Time { return testNow },
		Stdout: stdout,
		Stderr: stderr,
		Getenv: func(k string) string { return vars[k] },
		Environ: func() []string {
			out := make([]string, 0, len(vars))
			for k, v := range vars {
				out = append(out, k+"="+v)
			}
			sort.Strings(out)
			return out
		},
		AssetLoader: assets.NewEmbeddedLoader(),
		NewRenderer: func(timeout time.Duration) preview.Renderer {
			renderer.timeout = timeout
			return renderer
		},
		Logger: slog.New(slog.DiscardHandler),
	}
	return env, stdout, stderr, renderer
}

// writeFiles creates files under a temp directory and returns it.
func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
			t.Fatalf("mkdir for %s: %v", name, err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

const fragmentAlpha = `<!DOCTYPE html>
<html><head><title>Alpha</title></head>
<body>
<nav class="project-nav"><a href="../index.html">Back</a></nav>
<h1>Alpha</h1>
<p><img src="img/alpha.png" alt="alpha"> <a href="alpha.pdf">Paper</a> <a href="#notes">Notes</a></p>
</body></html>`

const hostPage = `<!DOCTYPE html>
<html><head><title>Portfolio</title></head>
<body>
<div id="projectModal1" class="modal"><div class="project-modal-content"></div></div>
<div id="projectModal2" class="modal"><div class="project-modal-content"></div></div>
</body></html>`

// testSite lays out a small local site: a host page at the root and one
// fragment in the collection directory. Project 2 has no fragment.
func testSite(t *testing.T) string {
	t.Helper()
	return writeFiles(t, map[string]string{
		"index.html":           hostPage,
		"projects/proj-1.html": fragmentAlpha,
	})
}
