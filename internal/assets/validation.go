package assets

import (
	"fmt"
	"strings"
)

// MaxAssetNameLength bounds asset names to a portable file stem.
const MaxAssetNameLength = 64

// ValidateAssetName checks that name can be used as a file stem.
// Separators and dots are rejected so a name can neither traverse
// directories nor change the extension.
func ValidateAssetName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	case len(name) > MaxAssetNameLength:
		return fmt.Errorf("%w: %d chars (max %d)", ErrInvalidAssetName, len(name), MaxAssetNameLength)
	case strings.ContainsAny(name, "/\\."):
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}
