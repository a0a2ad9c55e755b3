package main

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/alnah/go-folio/internal/pipeline"
)

// Output formats for fetch.
const (
	formatHTML     = "html"
	formatMarkdown = "markdown"
)

// runFetch loads one project fragment and prints it.
func runFetch(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseFetchFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return fmt.Errorf("%w: fetch takes exactly one project id", ErrUsage)
	}
	id, err := parseProjectID(positional[0])
	if err != nil {
		return err
	}

	format := strings.ToLower(flags.format)
	if format == "md" {
		format = formatMarkdown
	}
	if format != formatHTML && format != formatMarkdown {
		return fmt.Errorf("%w: unknown format %q (must be html or markdown)", ErrUsage, flags.format)
	}

	cfg, err := configure(flags.common, flags.site, env)
	if err != nil {
		return err
	}
	src, err := newSiteSource(cfg, env)
	if err != nil {
		return err
	}

	content, err := src.loader.Load(ctx, id, src.location, cfg.Site.Prefix)
	if err != nil {
		return src.explain(err)
	}
	env.Logger.Info("project loaded", "project", int(id), "path", content.Path, "title", content.Title)

	out := content.HTML
	if format == formatMarkdown {
		out, err = pipeline.NewMarkdownExporter(exportBase(src)).Export(content.HTML)
		if err != nil {
			return err
		}
	}
	return writeOutput(env, flags.output, out)
}

// exportBase is the page the Markdown export resolves relative links
// against. Fragment paths are relative to the including page, so a page
// under /projects/ keeps that directory. Local sites export relative links.
func exportBase(src *siteSource) *url.URL {
	if !src.remote || src.location.URL == nil || !src.location.URL.IsAbs() {
		return nil
	}
	return src.location.URL
}
