package main

import (
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config    string
	quiet     bool
	verbose   bool
	logFormat string
}

// siteFlags describe where fragments come from and where the including page sits.
type siteFlags struct {
	baseURL  string
	root     string
	location string
	prefix   string
	dir      string
	timeout  string
}

type fetchFlags struct {
	common commonFlags
	site   siteFlags
	format string
	output string
}

type openFlags struct {
	common commonFlags
	site   siteFlags
	output string
}

type buildFlags struct {
	common    commonFlags
	glob      string
	watch     bool
	style     string
	template  string
	assetPath string
	backHref  string
	noStyle   bool
}

type previewFlags struct {
	common    commonFlags
	site      siteFlags
	output    string
	width     int
	height    int
	fullPage  bool
	modalOnly bool
	render    string // Browser timeout, separate from the fetch timeout
}

type configFlags struct {
	common commonFlags
}

// newFlagSet creates a FlagSet that reports errors instead of exiting.
// Usage output goes to w through usage.
func newFlagSet(name string, w io.Writer, usage func(io.Writer)) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(w)
	fs.Usage = func() { usage(w) }
	fs.SortFlags = false
	return fs
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "debug logging")
	fs.StringVar(&f.logFormat, "log-format", "", "log format: text, json")
}

// addSiteFlags adds fragment source flags to a FlagSet.
func addSiteFlags(fs *flag.FlagSet, f *siteFlags) {
	fs.StringVar(&f.baseURL, "base-url", "", "site URL to fetch fragments from")
	fs.StringVarP(&f.root, "root", "r", "", "local site directory (used when no base URL)")
	fs.StringVarP(&f.location, "location", "l", "", "path or URL of the including page")
	fs.StringVarP(&f.prefix, "prefix", "p", "", "prefix for rewritten img/a paths")
	fs.StringVar(&f.dir, "collection-dir", "", "directory holding proj-<id>.html")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "fetch timeout (e.g. 5s)")
}

func parseFetchFlags(args []string, w io.Writer) (*fetchFlags, []string, error) {
	f := &fetchFlags{}
	fs := newFlagSet("fetch", w, printFetchUsage)
	addCommonFlags(fs, &f.common)
	addSiteFlags(fs, &f.site)
	fs.StringVarP(&f.format, "format", "f", "html", "output format: html, markdown")
	fs.StringVarP(&f.output, "output", "o", "", "write to file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return nil, nil, wrapFlagError(err)
	}
	return f, fs.Args(), nil
}

func parseOpenFlags(args []string, w io.Writer) (*openFlags, []string, error) {
	f := &openFlags{}
	fs := newFlagSet("open", w, printOpenUsage)
	addCommonFlags(fs, &f.common)
	addSiteFlags(fs, &f.site)
	fs.StringVarP(&f.output, "output", "o", "", "write to file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return nil, nil, wrapFlagError(err)
	}
	return f, fs.Args(), nil
}

func parseBuildFlags(args []string, w io.Writer) (*buildFlags, []string, error) {
	f := &buildFlags{}
	fs := newFlagSet("build", w, printBuildUsage)
	addCommonFlags(fs, &f.common)
	fs.StringVarP(&f.glob, "glob", "g", "", "source pattern (default **/proj-*.md)")
	fs.BoolVarP(&f.watch, "watch", "w", false, "rebuild on change")
	fs.StringVar(&f.style, "style", "", "stylesheet name")
	fs.StringVar(&f.template, "template", "", "page template name")
	fs.StringVar(&f.assetPath, "asset-path", "", "directory overriding embedded assets")
	fs.StringVar(&f.backHref, "back-href", "", "target of the fragment back-link")
	fs.BoolVar(&f.noStyle, "no-style", false, "do not inject a stylesheet")
	if err := fs.Parse(args); err != nil {
		return nil, nil, wrapFlagError(err)
	}
	return f, fs.Args(), nil
}

func parsePreviewFlags(args []string, w io.Writer) (*previewFlags, []string, error) {
	f := &previewFlags{}
	fs := newFlagSet("preview", w, printPreviewUsage)
	addCommonFlags(fs, &f.common)
	addSiteFlags(fs, &f.site)
	fs.StringVarP(&f.output, "output", "o", "", "PNG output path (required)")
	fs.IntVar(&f.width, "width", 0, "viewport width in pixels")
	fs.IntVar(&f.height, "height", 0, "viewport height in pixels")
	fs.BoolVar(&f.fullPage, "full-page", false, "capture the whole page")
	fs.BoolVar(&f.modalOnly, "modal-only", false, "capture only the opened modal")
	fs.StringVar(&f.render, "render-timeout", defaultRenderTimeout, "browser timeout")
	if err := fs.Parse(args); err != nil {
		return nil, nil, wrapFlagError(err)
	}
	return f, fs.Args(), nil
}

func parseConfigFlags(args []string, w io.Writer) (*configFlags, []string, error) {
	f := &configFlags{}
	fs := newFlagSet("config", w, printConfigUsage)
	addCommonFlags(fs, &f.common)
	if err := fs.Parse(args); err != nil {
		return nil, nil, wrapFlagError(err)
	}
	return f, fs.Args(), nil
}

// wrapFlagError keeps flag.ErrHelp recognizable and marks the rest as usage errors.
func wrapFlagError(err error) error {
	if err == flag.ErrHelp {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUsage, err)
}
