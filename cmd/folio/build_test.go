package main

// Notes:
// - build is exercised against real files in t.TempDir(); the embedded
//   fragment template and styles are used unless a test overrides them.
// - The watch test relies on fsnotify delivering events within a few
//   seconds. It waits for the "Watching" banner so the watcher is armed
//   before the source changes.

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/alnah/go-folio/internal/config"
	"github.com/alnah/go-folio/internal/pipeline"
)

const sourceAlpha = "# Alpha\n\nA project.\n\n![shot](img/alpha.png)\n"

// ---------------------------------------------------------------------------
// TestDiscoverSources - Glob matching
// ---------------------------------------------------------------------------

func TestDiscoverSources(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{
		"proj-9.md":               "# Nine",
		"projects/proj-1.md":      "# One",
		"projects/deep/proj-2.md": "# Two",
		"projects/notes.md":       "notes",
		"projects/proj-1.html":    "<p>old</p>",
	})

	jobs, err := discoverSources(dir, config.DefaultGlob)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 3 {
		t.Fatalf("got %d jobs, want 3: %+v", len(jobs), jobs)
	}
	for _, job := range jobs {
		if !strings.HasSuffix(job.Source, ".md") || !strings.HasPrefix(filepath.Base(job.Source), "proj-") {
			t.Errorf("unexpected source %s", job.Source)
		}
		if job.Output != strings.TrimSuffix(job.Source, ".md")+".html" {
			t.Errorf("Output = %s for %s", job.Output, job.Source)
		}
	}

	t.Run("missing dir", func(t *testing.T) {
		t.Parallel()
		if _, err := discoverSources(filepath.Join(dir, "nope"), config.DefaultGlob); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("file instead of dir", func(t *testing.T) {
		t.Parallel()
		if _, err := discoverSources(filepath.Join(dir, "proj-9.md"), config.DefaultGlob); err == nil {
			t.Error("expected error")
		}
	})
}

// ---------------------------------------------------------------------------
// TestBuildBatch - Worker pool
// ---------------------------------------------------------------------------

func TestBuildBatch(t *testing.T) {
	t.Parallel()

	page, err := pipeline.NewPageRenderer("<html><body><nav></nav>{{.Body}}</body></html>")
	if err != nil {
		t.Fatalf("NewPageRenderer: %v", err)
	}
	builder := pipeline.NewFragmentBuilder(page, "", "../index.html")

	files := map[string]string{}
	for i := 1; i <= 8; i++ {
		files[filepath.Join("projects", "proj-"+string(rune('0'+i))+".md")] = "# Project\n"
	}
	dir := writeFiles(t, files)
	jobs, err := discoverSources(dir, config.DefaultGlob)
	if err != nil {
		t.Fatalf("discoverSources: %v", err)
	}
	jobs = append(jobs, buildJob{Source: filepath.Join(dir, "missing.md"), Output: filepath.Join(dir, "missing.html")})

	results := buildBatch(context.Background(), builder, jobs, runtime.GOMAXPROCS(0))
	if len(results) != len(jobs) {
		t.Fatalf("got %d results, want %d", len(results), len(jobs))
	}
	for i, r := range results {
		if r.Source != jobs[i].Source {
			t.Errorf("result %d out of order: %s", i, r.Source)
		}
		missing := strings.HasSuffix(r.Source, "missing.md")
		if missing != (r.Err != nil) {
			t.Errorf("%s: err = %v", r.Source, r.Err)
		}
		if !missing {
			if _, err := os.Stat(r.Output); err != nil {
				t.Errorf("output not written: %v", err)
			}
		}
	}

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		for _, r := range buildBatch(ctx, builder, jobs[:2], 1) {
			if r.Err == nil {
				t.Errorf("%s built after cancel", r.Source)
			}
		}
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()
		if got := buildBatch(context.Background(), builder, nil, 4); got != nil {
			t.Errorf("buildBatch(nil) = %v, want nil", got)
		}
	})
}

// ---------------------------------------------------------------------------
// TestRunMain_Build - Command behavior
// ---------------------------------------------------------------------------

func TestRunMain_Build(t *testing.T) {
	t.Parallel()

	t.Run("builds fragments the loader can show", func(t *testing.T) {
		t.Parallel()

		root := writeFiles(t, map[string]string{
			"index.html":         hostPage,
			"projects/proj-1.md": sourceAlpha,
		})
		env, stdout, stderr := testEnv(nil)
		if code := runMain(context.Background(), []string{"build", root}, env); code != ExitSuccess {
			t.Fatalf("build exit %d: %s", code, stderr.String())
		}
		if !strings.Contains(stdout.String(), "Built ") {
			t.Errorf("stdout = %q", stdout.String())
		}

		data, err := os.ReadFile(filepath.Join(root, "projects", "proj-1.html"))
		if err != nil {
			t.Fatalf("fragment not written: %v", err)
		}
		page := string(data)
		for _, want := range []string{"<title>Alpha</title>", `<nav class="project-nav">`, `href="../index.html"`, "<style>"} {
			if !strings.Contains(page, want) {
				t.Errorf("fragment missing %q:\n%s", want, page)
			}
		}

		env, stdout, stderr = testEnv(nil)
		code := runMain(context.Background(), []string{"fetch", "1", "-r", root, "-p", "projects/"}, env)
		if code != ExitSuccess {
			t.Fatalf("fetch exit %d: %s", code, stderr.String())
		}
		out := stdout.String()
		if !strings.Contains(out, ">Alpha</h1>") || !strings.Contains(out, `src="projects/img/alpha.png"`) {
			t.Errorf("fetched fragment:\n%s", out)
		}
		if strings.Contains(out, "All projects") {
			t.Errorf("back link should be stripped with the nav:\n%s", out)
		}
	})

	t.Run("no style and custom back link", func(t *testing.T) {
		t.Parallel()

		root := writeFiles(t, map[string]string{"proj-1.md": "no heading here\n"})
		env, _, stderr := testEnv(nil)
		code := runMain(context.Background(), []string{"build", root, "--no-style", "--back-href", "/"}, env)
		if code != ExitSuccess {
			t.Fatalf("exit %d: %s", code, stderr.String())
		}
		data, err := os.ReadFile(filepath.Join(root, "proj-1.html"))
		if err != nil {
			t.Fatalf("fragment not written: %v", err)
		}
		page := string(data)
		if strings.Contains(page, "<style>") {
			t.Error("stylesheet injected despite --no-style")
		}
		if !strings.Contains(page, `<a href="/">`) {
			t.Errorf("back link not applied:\n%s", page)
		}
		if !strings.Contains(page, "<title>proj-1</title>") {
			t.Errorf("fallback title not used:\n%s", page)
		}
	})

	t.Run("custom template from asset path", func(t *testing.T) {
		t.Parallel()

		assetsDir := writeFiles(t, map[string]string{
			"templates/bare.html": "<html><body><nav>x</nav><main>{{.Body}}</main></body></html>",
		})
		root := writeFiles(t, map[string]string{"proj-1.md": sourceAlpha})
		env, _, stderr := testEnv(nil)
		code := runMain(context.Background(), []string{
			"build", root, "--asset-path", assetsDir, "--template", "bare", "--style", "plain", "--verbose",
		}, env)
		if code != ExitSuccess {
			t.Fatalf("exit %d: %s", code, stderr.String())
		}
		data, _ := os.ReadFile(filepath.Join(root, "proj-1.html"))
		if !strings.Contains(string(data), "<main>") || !strings.Contains(string(data), "<style>") {
			t.Errorf("custom template or embedded style missing:\n%s", data)
		}
		if !strings.Contains(stderr.String(), "using site assets") {
			t.Errorf("stderr = %q, want asset directory in debug log", stderr.String())
		}
	})

	t.Run("no sources", func(t *testing.T) {
		t.Parallel()

		env, _, _ := testEnv(nil)
		if code := runMain(context.Background(), []string{"build", t.TempDir()}, env); code != ExitIO {
			t.Errorf("exit %d, want %d", code, ExitIO)
		}
	})

	t.Run("unknown style", func(t *testing.T) {
		t.Parallel()

		root := writeFiles(t, map[string]string{"proj-1.md": sourceAlpha})
		env, _, stderr := testEnv(nil)
		if code := runMain(context.Background(), []string{"build", root, "--style", "fancy"}, env); code != ExitUsage {
			t.Errorf("exit %d, want %d", code, ExitUsage)
		}
		if !strings.Contains(stderr.String(), "hint: available: fragment, plain") {
			t.Errorf("stderr = %q, want style hint", stderr.String())
		}
	})

	t.Run("invalid glob", func(t *testing.T) {
		t.Parallel()

		env, _, _ := testEnv(nil)
		if code := runMain(context.Background(), []string{"build", t.TempDir(), "-g", "[proj"}, env); code != ExitUsage {
			t.Errorf("exit %d, want %d", code, ExitUsage)
		}
	})

	t.Run("too many args", func(t *testing.T) {
		t.Parallel()

		env, _, _ := testEnv(nil)
		if code := runMain(context.Background(), []string{"build", "a", "b"}, env); code != ExitUsage {
			t.Errorf("exit %d, want %d", code, ExitUsage)
		}
	})
}

// ---------------------------------------------------------------------------
// TestRunMain_BuildWatch - Rebuild on change
// ---------------------------------------------------------------------------

func TestRunMain_BuildWatch(t *testing.T) {
	t.Parallel()

	root := writeFiles(t, map[string]string{"projects/proj-1.md": sourceAlpha})
	source := filepath.Join(root, "projects", "proj-1.md")
	output := filepath.Join(root, "projects", "proj-1.html")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	env, _, stderr := testEnv(nil)
	done := make(chan int, 1)
	go func() {
		done <- runMain(ctx, []string{"build", root, "--watch"}, env)
	}()

	waitFor(t, func() bool { return strings.Contains(stderr.String(), "Watching") })

	if err := os.WriteFile(source, []byte("# Beta\n"), 0o644); err != nil {
		t.Fatalf("rewriting source: %v", err)
	}
	waitFor(t, func() bool {
		data, err := os.ReadFile(output)
		return err == nil && strings.Contains(string(data), "<title>Beta</title>")
	})

	cancel()
	select {
	case code := <-done:
		if code != ExitSuccess {
			t.Errorf("watch exit %d: %s", code, stderr.String())
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not met within 5s")
}

// ---------------------------------------------------------------------------
// TestMatchesSource - Watch filtering
// ---------------------------------------------------------------------------

func TestMatchesSource(t *testing.T) {
	t.Parallel()
	dir := filepath.FromSlash("/site")
	tests := []struct {
		file string
		want bool
	}{
		{"/site/proj-1.md", true},
		{"/site/projects/proj-2.md", true},
		{"/site/projects/proj-2.html", false},
		{"/site/projects/notes.md", false},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			t.Parallel()
			if got := matchesSource(dir, config.DefaultGlob, filepath.FromSlash(tt.file)); got != tt.want {
				t.Errorf("matchesSource(%s) = %v, want %v", tt.file, got, tt.want)
			}
		})
	}
}
