package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// ErrHTMLConversion indicates a project source could not be rendered.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// HTMLConverter turns a Markdown project source into body markup.
type HTMLConverter interface {
	ToHTML(ctx context.Context, source string) (string, error)
}

// GoldmarkConverter renders project write-ups with goldmark.
// A single instance is safe for concurrent builds.
type GoldmarkConverter struct {
	engine goldmark.Markdown
}

// NewGoldmarkConverter enables GFM, footnotes, definition lists and
// class-based highlighting, so fragment styles control code colors.
// Raw HTML passes through: write-ups often embed <figure> and <video>.
func NewGoldmarkConverter() *GoldmarkConverter {
	highlighter := highlighting.NewHighlighting(
		highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
	)
	return &GoldmarkConverter{
		engine: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Footnote, extension.DefinitionList, highlighter),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
}

type rendered struct {
	markup string
	err    error
}

// ToHTML returns body markup without an <html> wrapper. goldmark cannot be
// interrupted, so a cancelled build stops waiting and leaves it to finish.
func (c *GoldmarkConverter) ToHTML(ctx context.Context, source string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	out := make(chan rendered, 1)
	go func() { out <- c.render(source) }()

	select {
	case r := <-out:
		return r.markup, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (c *GoldmarkConverter) render(source string) rendered {
	var buf bytes.Buffer
	if err := c.engine.Convert([]byte(source), &buf); err != nil {
		return rendered{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
	}
	return rendered{markup: buf.String()}
}
