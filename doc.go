// Package folio loads project fragments of a portfolio site and shows them
// in modal dialogs of a host page.
//
// # Loading
//
// A Loader maps a ProjectID to a fragment file through a Registry, resolves
// the file's path from the including page's Location, fetches it and returns
// the displayable markup:
//
//	loader := folio.NewLoader(folio.NewHTTPFetcher(10 * time.Second))
//	loc, _ := folio.ParseLocation("https://me.dev/index.html")
//	content, err := loader.Load(ctx, 1, loc, "")
//
// Pages inside the collection directory ("projects" by default) address
// fragments by filename; other pages go through the directory. Every fetch
// carries a v=<unix-ms> query parameter so caches are bypassed.
//
// The fragment's first <nav> is dropped. Site-absolute img and a paths lose
// their leading "/" and, when a prefix is given, are made relative to it.
// External URLs and in-page anchors are never prefixed.
//
// # Errors
//
// Unmapped identifiers fail with *NotFoundError (errors.Is ErrProjectNotFound)
// without any fetch. Failed fetches fail with *LoadError (errors.Is
// ErrLoadFailed), which carries the attempted path and HTTP status.
//
// # Modals
//
// A Controller drives the modals of a host page parsed with internal/dom:
//
//	ctrl := folio.NewController(page, loader, loc)
//	ctrl.OpenModal(ctx, 1, "../")
//	ctrl.Wait()
//
// Each modal moves from hidden to loading, then to displayed or error
// displayed, and back to hidden only through CloseModal.
package folio
