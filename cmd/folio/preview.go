package main

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"path/filepath"
	"strings"

	folio "github.com/alnah/go-folio"
	"github.com/alnah/go-folio/internal/preview"
)

// defaultRenderTimeout bounds browser launch, load and capture.
const defaultRenderTimeout = "30s"

// runPreview opens a modal in a host page and saves a screenshot.
func runPreview(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parsePreviewFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) != 2 {
		return fmt.Errorf("%w: preview takes a host page and a project id", ErrUsage)
	}
	if flags.output == "" {
		return fmt.Errorf("%w: --output is required", ErrUsage)
	}

	opened, err := openModal(ctx, positional[0], positional[1], flags.common, flags.site, env)
	if err != nil {
		return err
	}

	// Relative stylesheets and images resolve against the host page,
	// not the temp copy the browser loads.
	pageDir, err := filepath.Abs(filepath.Dir(positional[0]))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrReadPage, err)
	}
	opened.page.Head().PrependHTML(`<base href="` + html.EscapeString(fileBaseURL(pageDir)) + `">`)

	document, err := opened.controller.Render()
	if err != nil {
		return err
	}

	opts := preview.Options{
		Width:    flags.width,
		Height:   flags.height,
		FullPage: flags.fullPage,
	}
	if flags.modalOnly {
		id, _ := parseProjectID(positional[1])
		opts.Selector = fmt.Sprintf("#%s%d", folio.ModalIDPrefix, id)
	}

	renderTimeout, err := parseTimeout(flags.render)
	if err != nil {
		return err
	}

	previewer := preview.New(env.NewRenderer(renderTimeout))
	defer func() {
		if cerr := previewer.Close(); cerr != nil {
			env.Logger.Warn("closing browser", "error", cerr)
		}
	}()

	if err := previewer.CaptureFile(ctx, document, flags.output, opts); err != nil {
		return err
	}
	env.Logger.Info("screenshot written", "path", flags.output)
	return nil
}

// fileBaseURL returns the file URL of dir with a trailing slash, escaping
// spaces and '#' so they stay part of the path.
func fileBaseURL(dir string) string {
	p := filepath.ToSlash(dir)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p // Windows drive letters
	}
	return (&url.URL{Scheme: "file", Path: strings.TrimSuffix(p, "/") + "/"}).String()
}
