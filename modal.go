package folio

import (
	"context"
	"fmt"
	"html"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/alnah/go-folio/internal/dom"
)

// Host page conventions.
const (
	ModalIDPrefix      = "projectModal"
	ContentSlotClass   = "project-modal-content"
	ActiveClass        = "active"
	LoadingPlaceholder = "<p>Loading project content...</p>"
	errorMessagePrefix = "Error loading project content: "
)

// ModalState is the display state of one project modal.
type ModalState int

const (
	StateHidden ModalState = iota
	StateLoading
	StateDisplayed
	StateErrorDisplayed
)

func (s ModalState) String() string {
	switch s {
	case StateHidden:
		return "hidden"
	case StateLoading:
		return "loading"
	case StateDisplayed:
		return "displayed"
	case StateErrorDisplayed:
		return "error"
	default:
		return fmt.Sprintf("ModalState(%d)", int(s))
	}
}

// ContentLoader loads project content. *Loader implements it.
type ContentLoader interface {
	Load(ctx context.Context, id ProjectID, loc Location, prefix string) (*Content, error)
}

var _ ContentLoader = (*Loader)(nil)

type modalEntry struct {
	state      ModalState
	generation uint64
}

// Controller opens project modals in a host page.
//
// Each open starts an asynchronous load. Opens and closes bump a per-modal
// generation, and a load whose generation is no longer current is discarded
// instead of overwriting the slot. The controller serializes all access to
// the page, which must not be touched by anything else while loads are in
// flight.
type Controller struct {
	mu       sync.Mutex
	page     *dom.Document
	loader   ContentLoader
	location Location
	logger   *slog.Logger
	modals   map[ProjectID]*modalEntry
	wg       sync.WaitGroup
	newID    func() string
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithControllerLogger sets the diagnostic logger.
func WithControllerLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) { c.logger = logger }
}

// NewController creates a Controller for page, viewed at loc.
func NewController(page *dom.Document, loader ContentLoader, loc Location, opts ...ControllerOption) *Controller {
	c := &Controller{
		page:     page,
		loader:   loader,
		location: loc,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		modals:   make(map[ProjectID]*modalEntry),
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OpenModal shows the modal of project id and loads its content.
//
// The loading placeholder, the active class and the body scroll lock are
// applied before OpenModal returns; the content arrives later. A missing
// modal or content slot is logged and leaves the page unchanged. Use Wait
// to block until started loads have settled.
func (c *Controller) OpenModal(ctx context.Context, id ProjectID, prefix string) {
	requestID := c.newID()
	logger := c.logger.With("project", int(id), "request", requestID)

	c.mu.Lock()
	modal, slot, err := c.surface(id)
	if err != nil || modal == nil || slot == nil {
		c.mu.Unlock()
		switch {
		case err != nil:
			logger.ErrorContext(ctx, "locating modal", "error", err)
		case modal == nil:
			logger.ErrorContext(ctx, "modal not found", "selector", modalSelector(id))
		default:
			logger.ErrorContext(ctx, "content slot not found", "selector", modalSelector(id)+" ."+ContentSlotClass)
		}
		return
	}

	slot.SetInnerHTML(LoadingPlaceholder)
	modal.AddClass(ActiveClass)
	c.page.Body().SetStyle("overflow", "hidden")

	entry := c.entry(id)
	entry.generation++
	entry.state = StateLoading
	generation := entry.generation
	c.wg.Add(1)
	c.mu.Unlock()

	logger.DebugContext(ctx, "opening modal", "generation", generation)

	go func() {
		defer c.wg.Done()
		content, err := c.loader.Load(ctx, id, c.location, prefix)
		c.settle(ctx, logger, id, generation, content, err)
	}()
}

// settle writes a finished load into the slot if it is still current.
func (c *Controller) settle(ctx context.Context, logger *slog.Logger, id ProjectID, generation uint64, content *Content, loadErr error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := c.entry(id)
	if entry.generation != generation {
		logger.DebugContext(ctx, "discarding superseded load",
			"generation", generation, "current", entry.generation)
		return
	}

	_, slot, err := c.surface(id)
	if err != nil || slot == nil {
		logger.ErrorContext(ctx, "content slot disappeared", "error", err)
		return
	}

	if loadErr != nil {
		slot.SetInnerHTML("<p>" + errorMessagePrefix + html.EscapeString(loadErr.Error()) + "</p>")
		entry.state = StateErrorDisplayed
		return
	}

	slot.SetInnerHTML(content.HTML)
	entry.state = StateDisplayed
}

// CloseModal hides the modal of project id. The scroll lock is released once
// no other modal is visible. A load still in flight for it is discarded when
// it completes.
func (c *Controller) CloseModal(id ProjectID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := c.entry(id)
	entry.generation++
	entry.state = StateHidden

	if modal, _, err := c.surface(id); err == nil && modal != nil {
		modal.RemoveClass(ActiveClass)
	}
	for _, other := range c.modals {
		if other.state != StateHidden {
			return
		}
	}
	c.page.Body().SetStyle("overflow", "")
}

// State returns the display state of project id's modal.
func (c *Controller) State(id ProjectID) ModalState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.modals[id]; ok {
		return e.state
	}
	return StateHidden
}

// Wait blocks until every load started by OpenModal has settled.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Render serializes the host page in its current state.
func (c *Controller) Render() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page.Render()
}

// entry must be called with c.mu held.
func (c *Controller) entry(id ProjectID) *modalEntry {
	e, ok := c.modals[id]
	if !ok {
		e = &modalEntry{}
		c.modals[id] = e
	}
	return e
}

// surface must be called with c.mu held.
func (c *Controller) surface(id ProjectID) (modal, slot *dom.Element, err error) {
	modal, err = c.page.Find(modalSelector(id))
	if err != nil || modal == nil {
		return nil, nil, err
	}
	slot, err = modal.Find("." + ContentSlotClass)
	if err != nil {
		return nil, nil, err
	}
	return modal, slot, nil
}

func modalSelector(id ProjectID) string {
	return fmt.Sprintf("#%s%d", ModalIDPrefix, id)
}
