package main

import (
	"errors"
	"os"

	folio "github.com/alnah/go-folio"
	"github.com/alnah/go-folio/internal/assets"
	"github.com/alnah/go-folio/internal/config"
	"github.com/alnah/go-folio/internal/preview"
)

// Exit codes for the folio CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Command completed
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File or project not found, permission denied
	ExitLoad    = 4 // Fragment fetch or parse failed
	ExitBrowser = 5 // Browser/Chrome errors
)

// exitCodeFor maps an error to an exit code with errors.Is, so callers must
// wrap with %w. Load failures are checked before I/O: an offline 404 also
// wraps fs.ErrNotExist.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, preview.ErrBrowserConnect) ||
		errors.Is(err, preview.ErrPageCreate) ||
		errors.Is(err, preview.ErrPageLoad) ||
		errors.Is(err, preview.ErrScreenshot) {
		return ExitBrowser
	}

	if errors.Is(err, folio.ErrLoadFailed) {
		return ExitLoad
	}

	if errors.Is(err, folio.ErrProjectNotFound) ||
		errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadPage) ||
		errors.Is(err, ErrReadSource) ||
		errors.Is(err, ErrNoModal) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, ErrNoSources) {
		return ExitIO
	}

	if errors.Is(err, ErrUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, folio.ErrInvalidLocation) ||
		errors.Is(err, folio.ErrInvalidRegistry) ||
		errors.Is(err, assets.ErrStyleNotFound) ||
		errors.Is(err, assets.ErrTemplateNotFound) ||
		errors.Is(err, assets.ErrInvalidAssetName) ||
		errors.Is(err, assets.ErrInvalidBasePath) ||
		errors.Is(err, preview.ErrInvalidSize) {
		return ExitUsage
	}

	return ExitGeneral
}
