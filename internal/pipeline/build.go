package pipeline

import (
	"context"
	"html/template"
)

// FragmentBuilder turns a Markdown project source into a fragment document.
type FragmentBuilder struct {
	Preprocessor MarkdownPreprocessor
	Converter    HTMLConverter
	Page         *PageRenderer
	CSS          CSSInjector
	Style        string // Stylesheet injected into every page, may be empty
	BackHref     string // Target of the nav back link
}

// NewFragmentBuilder creates a FragmentBuilder with the default preprocessor,
// goldmark converter and CSS injection around the given page renderer.
func NewFragmentBuilder(page *PageRenderer, style, backHref string) *FragmentBuilder {
	return &FragmentBuilder{
		Preprocessor: &SourcePreprocessor{},
		Converter:    NewGoldmarkConverter(),
		Page:         page,
		CSS:          &CSSInjection{},
		Style:        style,
		BackHref:     backHref,
	}
}

// Build converts source and wraps it in the page template.
// fallbackTitle is used when the source has no leading "# Title" line.
func (b *FragmentBuilder) Build(ctx context.Context, source, fallbackTitle string) (string, error) {
	source = b.Preprocessor.PreprocessMarkdown(ctx, source)

	body, err := b.Converter.ToHTML(ctx, source)
	if err != nil {
		return "", err
	}

	title := SourceTitle(source)
	if title == "" {
		title = fallbackTitle
	}

	page, err := b.Page.Render(ctx, &PageData{
		Title:    title,
		BackHref: b.BackHref,
		Body:     template.HTML(body), // #nosec G203 -- goldmark output of site-owned sources
	})
	if err != nil {
		return "", err
	}

	return b.CSS.InjectCSS(ctx, page, b.Style), nil
}
