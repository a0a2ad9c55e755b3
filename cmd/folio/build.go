package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/alnah/go-folio/internal/assets"
	"github.com/alnah/go-folio/internal/config"
	"github.com/alnah/go-folio/internal/fileutil"
	"github.com/alnah/go-folio/internal/pipeline"
)

// Sentinel errors for build operations.
var (
	ErrReadSource  = errors.New("failed to read project source")
	ErrBuildFailed = errors.New("some fragments failed to build")
)

// buildJob is one Markdown source and the fragment it produces.
type buildJob struct {
	Source string
	Output string
}

// buildResult holds the outcome of a single fragment build.
type buildResult struct {
	Source   string
	Output   string
	Err      error
	Duration time.Duration
}

// runBuild compiles Markdown project sources into fragment documents.
func runBuild(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseBuildFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) > 1 {
		return fmt.Errorf("%w: build takes at most one directory", ErrUsage)
	}

	cfg, err := configure(flags.common, siteFlags{}, env)
	if err != nil {
		return err
	}
	if err := mergeBuildFlags(flags, cfg); err != nil {
		return err
	}

	dir := cfg.Site.Root
	if len(positional) == 1 {
		dir = positional[0]
	}
	if dir == "" {
		dir = "."
	}

	builder, err := newFragmentBuilder(cfg, flags.noStyle, env)
	if err != nil {
		return err
	}

	jobs, err := discoverSources(dir, cfg.Build.Glob)
	if err != nil {
		return err
	}
	if len(jobs) == 0 && !flags.watch {
		return fmt.Errorf("%w: %s in %s", ErrNoSources, cfg.Build.Glob, dir)
	}

	results := buildBatch(ctx, builder, jobs, runtime.GOMAXPROCS(0))
	failed := printBuildResults(results, flags.common, env)

	if flags.watch {
		return watchSources(ctx, dir, cfg.Build.Glob, builder, flags.common, env)
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrBuildFailed, failed, len(results))
	}
	return nil
}

// mergeBuildFlags applies build flags over the configuration.
func mergeBuildFlags(f *buildFlags, cfg *config.Config) error {
	setIf(&cfg.Build.Glob, f.glob)
	setIf(&cfg.Build.Style, f.style)
	setIf(&cfg.Build.Template, f.template)
	setIf(&cfg.Build.AssetPath, f.assetPath)
	setIf(&cfg.Build.BackHref, f.backHref)
	if cfg.Build.Glob == "" {
		cfg.Build.Glob = config.DefaultGlob
	}
	if !doublestar.ValidatePattern(cfg.Build.Glob) {
		return fmt.Errorf("%w: invalid glob %q", ErrUsage, cfg.Build.Glob)
	}
	return cfg.Validate()
}

// newFragmentBuilder loads the page template and stylesheet. A custom
// asset path overrides the environment's loader, falling back to embedded.
func newFragmentBuilder(cfg *config.Config, noStyle bool, env *Environment) (*pipeline.FragmentBuilder, error) {
	var loader assets.AssetLoader = env.AssetLoader
	if cfg.Build.AssetPath != "" {
		resolver, err := assets.NewAssetResolver(cfg.Build.AssetPath)
		if err != nil {
			return nil, err
		}
		env.Logger.Debug("using site assets", "dir", resolver.CustomPath())
		loader = resolver
	}

	templateName := cfg.Build.Template
	if templateName == "" {
		templateName = assets.DefaultTemplateName
	}
	tmpl, err := loader.LoadTemplate(templateName)
	if err != nil {
		return nil, err
	}
	page, err := pipeline.NewPageRenderer(tmpl)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}

	var style string
	if !noStyle && cfg.Build.Style != "" {
		style, err = loader.LoadStyle(cfg.Build.Style)
		if err != nil {
			return nil, err
		}
	}

	return pipeline.NewFragmentBuilder(page, style, cfg.Build.BackHref), nil
}

// discoverSources matches pattern under dir. Outputs sit next to their
// sources with an .html extension.
func discoverSources(dir, pattern string) ([]buildJob, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSources, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrUsage, dir)
	}

	matches, err := doublestar.Glob(os.DirFS(dir), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("%w: glob %q: %v", ErrUsage, pattern, err)
	}

	jobs := make([]buildJob, 0, len(matches))
	for _, m := range matches {
		src := filepath.Join(dir, filepath.FromSlash(m))
		jobs = append(jobs, buildJob{Source: src, Output: fileutil.ReplaceExt(src, ".html")})
	}
	return jobs, nil
}

// buildBatch builds jobs concurrently with at most workers goroutines.
// Results keep the order of jobs.
func buildBatch(ctx context.Context, builder *pipeline.FragmentBuilder, jobs []buildJob, workers int) []buildResult {
	if len(jobs) == 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	results := make([]buildResult, len(jobs))
	queue := make(chan int, len(jobs))
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range queue {
				if ctx.Err() != nil {
					results[idx] = buildResult{Source: jobs[idx].Source, Err: ctx.Err()}
					continue
				}
				results[idx] = buildOne(ctx, builder, jobs[idx])
			}
		}()
	}

	for i := range jobs {
		queue <- i
	}
	close(queue)

	wg.Wait()
	return results
}

// buildOne compiles a single source and replaces its fragment atomically,
// so a loader reading the site meanwhile never sees a partial file.
func buildOne(ctx context.Context, builder *pipeline.FragmentBuilder, job buildJob) buildResult {
	start := time.Now()
	result := buildResult{Source: job.Source, Output: job.Output}

	source, err := os.ReadFile(job.Source) // #nosec G304 -- discovered path
	if err != nil {
		result.Err = fmt.Errorf("%w: %v", ErrReadSource, err)
		result.Duration = time.Since(start)
		return result
	}

	fallbackTitle := strings.TrimSuffix(path.Base(filepath.ToSlash(job.Source)), filepath.Ext(job.Source))
	doc, err := builder.Build(ctx, string(source), fallbackTitle)
	if err != nil {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	if err := fileutil.WriteFileAtomic(job.Output, doc, filePermissions); err != nil {
		result.Err = fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	result.Duration = time.Since(start)
	return result
}

// printBuildResults reports each build and returns the failure count.
func printBuildResults(results []buildResult, common commonFlags, env *Environment) int {
	var failed int
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.Source, r.Err)
			continue
		}
		if common.quiet {
			continue
		}
		if common.verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%v)\n", r.Source, r.Output, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Built %s\n", r.Output)
		}
	}

	if !common.quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", len(results)-failed, failed)
	}
	return failed
}
