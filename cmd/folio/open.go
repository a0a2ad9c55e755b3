package main

import (
	"context"
	"fmt"
	"os"

	folio "github.com/alnah/go-folio"
	"github.com/alnah/go-folio/internal/config"
	"github.com/alnah/go-folio/internal/dom"
)

// openedPage is a host page after a modal was opened and settled.
type openedPage struct {
	controller *folio.Controller
	page       *dom.Document
	state      folio.ModalState
}

// runOpen opens a project modal in a local host page and prints the result.
func runOpen(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseOpenFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) != 2 {
		return fmt.Errorf("%w: open takes a host page and a project id", ErrUsage)
	}

	opened, openErr := openModal(ctx, positional[0], positional[1], flags.common, flags.site, env)
	if opened == nil {
		return openErr
	}

	// The page is written even when the modal shows a load error.
	out, err := opened.controller.Render()
	if err != nil {
		return err
	}
	if err := writeOutput(env, flags.output, out); err != nil {
		return err
	}
	return openErr
}

// openModal parses the host page, opens the modal of the given project and
// waits for it to settle. An error-state modal is reported through the
// returned error; the page still carries the error message.
func openModal(ctx context.Context, pagePath, rawID string, common commonFlags, site siteFlags, env *Environment) (*openedPage, error) {
	id, err := parseProjectID(rawID)
	if err != nil {
		return nil, err
	}

	cfg, err := configure(common, site, env)
	if err != nil {
		return nil, err
	}
	if site.location == "" && cfg.Site.Location == config.DefaultLocation {
		if loc, ok := pageLocation(cfg.Site.Root, pagePath); ok {
			cfg.Site.Location = loc
		}
	}

	f, err := os.Open(pagePath) // #nosec G304 -- host page path is user-provided
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadPage, err)
	}
	page, err := dom.Parse(f)
	_ = f.Close()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadPage, err)
	}

	src, err := newSiteSource(cfg, env)
	if err != nil {
		return nil, err
	}

	recorder := &errorRecorder{ContentLoader: src.loader}
	controller := folio.NewController(page, recorder, src.location, folio.WithControllerLogger(env.Logger))
	controller.OpenModal(ctx, id, cfg.Site.Prefix)
	controller.Wait()

	opened := &openedPage{controller: controller, page: page, state: controller.State(id)}
	switch opened.state {
	case folio.StateHidden:
		return nil, fmt.Errorf("%w: #%s%d with a .%s slot", ErrNoModal, folio.ModalIDPrefix, id, folio.ContentSlotClass)
	case folio.StateErrorDisplayed:
		return opened, src.explain(recorder.Err())
	}
	env.Logger.Info("modal opened", "project", int(id), "location", src.location.String())
	return opened, nil
}
