package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/alnah/go-folio/internal/fileutil"
	"github.com/alnah/go-folio/internal/pipeline"
)

// watchDebounce groups the bursts of events editors emit on save.
const watchDebounce = 100 * time.Millisecond

// watchSources rebuilds sources matching pattern under dir as they change,
// until ctx is cancelled.
func watchSources(ctx context.Context, dir, pattern string, builder *pipeline.FragmentBuilder, common commonFlags, env *Environment) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := addWatchDirs(watcher, dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	env.Logger.Info("watching for changes", "dir", dir, "glob", pattern)
	if !common.quiet {
		fmt.Fprintf(env.Stderr, "Watching %s for %s (Ctrl+C to stop)\n", dir, pattern)
	}

	pending := make(map[string]struct{})
	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addWatchDirs(watcher, event.Name); err != nil {
						env.Logger.Warn("cannot watch new directory", "dir", event.Name, "error", err)
					}
					continue
				}
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !matchesSource(dir, pattern, event.Name) {
				continue
			}
			env.Logger.Debug("source changed", "file", event.Name, "op", event.Op.String())
			pending[event.Name] = struct{}{}
			timer.Reset(watchDebounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			env.Logger.Warn("watch error", "error", err)

		case <-timer.C:
			jobs := pendingJobs(pending)
			clear(pending)
			results := buildBatch(ctx, builder, jobs, runtime.GOMAXPROCS(0))
			printBuildResults(results, common, env)
		}
	}
}

// addWatchDirs watches root and every non-hidden directory below it.
// fsnotify does not recurse on its own.
func addWatchDirs(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return watcher.Add(p)
	})
}

// matchesSource reports whether file, under dir, matches the source glob.
func matchesSource(dir, pattern, file string) bool {
	rel, err := filepath.Rel(dir, file)
	if err != nil {
		return false
	}
	ok, err := doublestar.Match(pattern, filepath.ToSlash(rel))
	return err == nil && ok
}

// pendingJobs turns the changed-file set into build jobs that still exist.
func pendingJobs(pending map[string]struct{}) []buildJob {
	jobs := make([]buildJob, 0, len(pending))
	for src := range pending {
		if _, err := os.Stat(src); err != nil {
			continue
		}
		jobs = append(jobs, buildJob{Source: src, Output: fileutil.ReplaceExt(src, ".html")})
	}
	return jobs
}
