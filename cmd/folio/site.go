package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	folio "github.com/alnah/go-folio"
	"github.com/alnah/go-folio/internal/config"
	"github.com/alnah/go-folio/internal/fileutil"
	"github.com/alnah/go-folio/internal/hints"
)

// Sentinel errors for CLI operations.
var (
	ErrUsage       = errors.New("invalid usage")
	ErrReadPage    = errors.New("failed to read host page")
	ErrWriteOutput = errors.New("failed to write output")
	ErrNoSources   = errors.New("no project sources found")
	ErrNoModal     = errors.New("modal not found in host page")
)

// File permission constants.
const (
	filePermissions = 0o644 // rw-r--r--: fragments are served to browsers
)

// loadSettings resolves the effective configuration:
// flags (merged by the caller) > FOLIO_* env > config file > defaults.
// The environment logger is replaced with one built from the result.
func loadSettings(common commonFlags, env *Environment) (*config.Config, error) {
	warnUnknownEnvVars(env.Stderr, env.Environ())
	envCfg := loadEnvConfig(env.Getenv)

	cfg := config.DefaultConfig()
	name := common.config
	if name == "" {
		name = envCfg.ConfigPath
	}
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	applyEnvConfig(envCfg, cfg)
	setIf(&cfg.Log.Format, common.logFormat)
	return cfg, nil
}

// applySiteFlags merges site flags into cfg and revalidates it.
func applySiteFlags(f siteFlags, cfg *config.Config) error {
	setIf(&cfg.Site.BaseURL, f.baseURL)
	setIf(&cfg.Site.Root, f.root)
	setIf(&cfg.Site.Location, f.location)
	setIf(&cfg.Site.Prefix, f.prefix)
	setIf(&cfg.Site.CollectionDir, f.dir)
	setIf(&cfg.Fetch.Timeout, f.timeout)
	return cfg.Validate()
}

// configure loads settings, merges site flags and installs the logger.
func configure(common commonFlags, site siteFlags, env *Environment) (*config.Config, error) {
	cfg, err := loadSettings(common, env)
	if err != nil {
		return nil, err
	}
	if err := applySiteFlags(site, cfg); err != nil {
		return nil, err
	}
	env.Logger = newLogger(env.Stderr, cfg, common)
	return cfg, nil
}

// buildRegistry returns the configured project registry. Without a
// projects section, ids 1 to 4 map to proj-<id>.html.
func buildRegistry(cfg *config.Config) (*folio.Registry, error) {
	dir := cfg.Site.CollectionDir
	if dir == "" {
		dir = folio.DefaultCollectionDir
	}

	files := make(map[folio.ProjectID]string)
	if len(cfg.Projects) == 0 {
		for _, id := range folio.DefaultRegistry().IDs() {
			files[id] = folio.FragmentFilename(id)
		}
	}
	for id, name := range cfg.Projects {
		files[folio.ProjectID(id)] = name
	}
	return folio.NewRegistry(dir, files)
}

// siteSource is a ready-to-use loader plus the location it loads for.
type siteSource struct {
	loader   *folio.Loader
	registry *folio.Registry
	location folio.Location
	remote   bool
}

// newSiteSource picks the fetcher. An absolute location or a base URL
// means HTTP; otherwise fragments are read from the site root on disk.
func newSiteSource(cfg *config.Config, env *Environment) (*siteSource, error) {
	registry, err := buildRegistry(cfg)
	if err != nil {
		return nil, err
	}

	location, remote, err := resolveLocation(cfg)
	if err != nil {
		return nil, err
	}

	var fetcher folio.Fetcher
	if remote {
		fetcher = folio.NewHTTPFetcher(cfg.FetchTimeout(),
			folio.WithUserAgent(cfg.Fetch.UserAgent),
			folio.WithMaxBytes(cfg.Fetch.MaxBytes),
		)
	} else {
		root := cfg.Site.Root
		if root == "" {
			root = "."
		}
		fetcher = folio.NewFSFetcher(os.DirFS(root))
	}

	opts := []folio.Option{
		folio.WithRegistry(registry),
		folio.WithLogger(env.Logger),
		folio.WithClock(env.Now),
	}
	if cfg.Cache.ReadThrough {
		opts = append(opts, folio.WithReadThrough())
	}

	return &siteSource{
		loader:   folio.NewLoader(fetcher, opts...),
		registry: registry,
		location: location,
		remote:   remote,
	}, nil
}

// explain attaches the registry's known ids to a project-not-found error.
func (s *siteSource) explain(err error) error {
	if err == nil || !errors.Is(err, folio.ErrProjectNotFound) {
		return err
	}
	ids := s.registry.IDs()
	known := make([]int, len(ids))
	for i, id := range ids {
		known[i] = int(id)
	}
	return &hintError{err: err, hint: hints.ForProjectNotFound(known)}
}

// hintError carries a hint computed where the context to build it exists.
type hintError struct {
	err  error
	hint string
}

func (e *hintError) Error() string { return e.err.Error() }
func (e *hintError) Unwrap() error { return e.err }

// resolveLocation combines site.baseURL and site.location.
func resolveLocation(cfg *config.Config) (folio.Location, bool, error) {
	raw := cfg.Site.Location
	if raw == "" {
		raw = config.DefaultLocation
	}

	if fileutil.IsURL(raw) {
		loc, err := folio.ParseLocation(raw)
		return loc, true, err
	}
	if cfg.Site.BaseURL == "" {
		loc, err := folio.ParseLocation(raw)
		return loc, false, err
	}

	base, err := url.Parse(cfg.Site.BaseURL)
	if err != nil {
		return folio.Location{}, false, fmt.Errorf("%w: %v", folio.ErrInvalidLocation, err)
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return folio.Location{}, false, fmt.Errorf("%w: %v", folio.ErrInvalidLocation, err)
	}
	loc, err := folio.ParseLocation(base.ResolveReference(ref).String())
	return loc, true, err
}

// pageLocation derives the location of a host page inside the site root,
// e.g. site/projects/index.html under root site is /projects/index.html.
func pageLocation(root, page string) (string, bool) {
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", false
	}
	absPage, err := filepath.Abs(page)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(absRoot, absPage)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return "/" + filepath.ToSlash(rel), true
}

// parseProjectID parses a positional project id.
func parseProjectID(s string) (folio.ProjectID, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: project id must be an integer, got %q", ErrUsage, s)
	}
	return folio.ProjectID(n), nil
}

// writeOutput writes content to path, or to stdout when path is empty.
func writeOutput(env *Environment, path, content string) error {
	if path == "" {
		_, err := fmt.Fprint(env.Stdout, content)
		return err
	}
	if err := os.WriteFile(path, []byte(content), filePermissions); err != nil { // #nosec G306 -- output is public site content
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return nil
}

// errorRecorder wraps a ContentLoader and remembers the last failure, so the
// CLI can report the reason a modal ended in its error state.
type errorRecorder struct {
	folio.ContentLoader
	mu  sync.Mutex
	err error
}

func (r *errorRecorder) Load(ctx context.Context, id folio.ProjectID, loc folio.Location, prefix string) (*folio.Content, error) {
	content, err := r.ContentLoader.Load(ctx, id, loc, prefix)
	if err != nil {
		r.mu.Lock()
		r.err = err
		r.mu.Unlock()
	}
	return content, err
}

func (r *errorRecorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// parseTimeout parses a positive duration flag.
func parseTimeout(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: timeout must be a positive duration, got %q", ErrUsage, s)
	}
	return d, nil
}
