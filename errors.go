package folio

import (
	"errors"
	"fmt"
)

// Sentinel errors for library operations.
var (
	ErrProjectNotFound = errors.New("project not found")
	ErrLoadFailed      = errors.New("load failed")
	ErrInvalidLocation = errors.New("invalid location")
	ErrInvalidRegistry = errors.New("invalid project registry")
)

// NotFoundError reports a project identifier with no mapped fragment.
// No fetch is attempted for such identifiers.
type NotFoundError struct {
	ProjectID ProjectID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("project %d not found", e.ProjectID)
}

// Is matches ErrProjectNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrProjectNotFound
}

// LoadError reports a failed fragment load: a non-success HTTP status, or a
// transport, read or parse failure wrapped in Err.
type LoadError struct {
	Path   string // Path that was fetched, cache-busting token included
	Status int    // HTTP status, 0 when the request never completed
	Err    error
}

func (e *LoadError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("load failed: failed to load %s (status %d)", e.Path, e.Status)
	}
	return fmt.Sprintf("load failed: %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Is matches ErrLoadFailed.
func (e *LoadError) Is(target error) bool {
	return target == ErrLoadFailed
}
