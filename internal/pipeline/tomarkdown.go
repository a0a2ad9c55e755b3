package pipeline

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"
)

// ErrMarkdownConversion indicates HTML to Markdown conversion failed.
var ErrMarkdownConversion = errors.New("markdown conversion failed")

// MarkdownExporter renders loaded fragment markup as Markdown text.
type MarkdownExporter struct {
	converter *md.Converter
}

// NewMarkdownExporter creates an exporter with GitHub flavored output.
// Relative links and images are resolved against base, the page the
// fragment was loaded for. A nil base keeps them relative.
func NewMarkdownExporter(base *url.URL) *MarkdownExporter {
	var domain string
	opts := &md.Options{}
	if base != nil {
		domain = base.Host
		opts.GetAbsoluteURL = func(_ *goquery.Selection, raw, _ string) string {
			return absoluteURL(base, raw)
		}
	}
	converter := md.NewConverter(domain, true, opts)
	converter.Use(plugin.GitHubFlavored())
	return &MarkdownExporter{converter: converter}
}

// Export converts markup to Markdown.
func (e *MarkdownExporter) Export(markup string) (string, error) {
	out, err := e.converter.ConvertString(markup)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMarkdownConversion, err)
	}
	return strings.TrimSpace(out) + "\n", nil
}

// absoluteURL resolves raw against base. In-page anchors, data URIs and
// unparsable values are returned as is.
func absoluteURL(base *url.URL, raw string) string {
	if raw == "" || strings.HasPrefix(raw, "#") {
		return raw
	}
	ref, err := url.Parse(raw)
	if err != nil || ref.Scheme == "data" {
		return raw
	}
	return base.ResolveReference(ref).String()
}
