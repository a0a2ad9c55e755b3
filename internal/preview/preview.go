// Package preview renders a host page with an open project modal to a PNG.
package preview

import (
	"context"
	"fmt"
	"os"

	"github.com/alnah/go-folio/internal/fileutil"
)

// Default viewport, a common laptop resolution.
const (
	DefaultWidth  = 1280
	DefaultHeight = 800
)

// Options controls what is captured.
type Options struct {
	Width    int
	Height   int
	FullPage bool
	Selector string // Capture only this element when set, e.g. "#projectModal1"
}

// Validate fills zero sizes with defaults and rejects negative ones.
func (o *Options) Validate() error {
	if o.Width < 0 || o.Height < 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, o.Width, o.Height)
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	return nil
}

// Renderer captures a screenshot of a local HTML file.
type Renderer interface {
	Screenshot(ctx context.Context, filePath string, opts *Options) ([]byte, error)
	Close() error
}

// Previewer writes rendered documents to disk and hands them to a Renderer.
type Previewer struct {
	renderer Renderer
}

// New creates a Previewer around renderer.
func New(renderer Renderer) *Previewer {
	return &Previewer{renderer: renderer}
}

// Capture renders document and returns PNG bytes.
// The document is written to a temp file so relative asset paths resolve
// against the file system; it is removed afterwards.
func (p *Previewer) Capture(ctx context.Context, document string, opts Options) ([]byte, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	path, cleanup, err := fileutil.WriteTempFile(document, "html")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	return p.renderer.Screenshot(ctx, path, &opts)
}

// CaptureFile renders document and writes the PNG to outPath.
func (p *Previewer) CaptureFile(ctx context.Context, document, outPath string, opts Options) error {
	img, err := p.Capture(ctx, document, opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outPath, img, 0o644); err != nil { // #nosec G306 -- screenshots are not secret
		return fmt.Errorf("writing screenshot: %w", err)
	}
	return nil
}

// Close releases the renderer.
func (p *Previewer) Close() error {
	return p.renderer.Close()
}
