package pipeline

import (
	"context"
	"regexp"
)

var (
	crlfOrCR           = regexp.MustCompile(`\r\n?`)
	multipleBlankLines = regexp.MustCompile(`\n{3,}`)
	// A leading "# Title" line; fragment sources use it as the document title.
	leadingHeading = regexp.MustCompile(`^\s*#\s+(.+?)\s*#*\s*$`)
)

// MarkdownPreprocessor defines the contract for markdown preprocessing.
type MarkdownPreprocessor interface {
	PreprocessMarkdown(ctx context.Context, content string) string
}

// SourcePreprocessor normalizes project sources before conversion.
type SourcePreprocessor struct{}

// PreprocessMarkdown normalizes line endings and collapses runs of blank lines.
func (p *SourcePreprocessor) PreprocessMarkdown(ctx context.Context, content string) string {
	if ctx.Err() != nil {
		return content
	}

	content = crlfOrCR.ReplaceAllString(content, "\n")
	return multipleBlankLines.ReplaceAllString(content, "\n\n")
}

// SourceTitle returns the text of the first line if it is a level-one ATX
// heading, or "" otherwise.
func SourceTitle(content string) string {
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			content = content[:i]
			break
		}
	}
	m := leadingHeading.FindStringSubmatch(content)
	if m == nil {
		return ""
	}
	return m[1]
}
