// Package pipeline implements the fragment processing stages.
//
// Loading side:
//   - ExtractContent parses a fetched project document, drops its navigation
//     and rewrites img/a paths for the including page
//   - RewriteImageSrc and RewriteLinkHref are the pure path rules
//   - MarkdownExporter renders loaded markup as Markdown for terminals
//
// Authoring side:
//   - Markdown preprocessing (line normalization)
//   - Markdown to HTML conversion via Goldmark
//   - Page template rendering and CSS injection
//
// Fetching and modal display are handled by the root folio package.
package pipeline
