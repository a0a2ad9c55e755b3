package folio

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNotFoundError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("opening: %w", &NotFoundError{ProjectID: 7})

	if !errors.Is(err, ErrProjectNotFound) {
		t.Error("errors.Is(err, ErrProjectNotFound) = false")
	}
	if errors.Is(err, ErrLoadFailed) {
		t.Error("NotFoundError should not match ErrLoadFailed")
	}
	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.ProjectID != 7 {
		t.Errorf("errors.As() = %v, want ProjectID 7", nf)
	}
	if got := err.Error(); !strings.Contains(got, "project 7 not found") {
		t.Errorf("Error() = %q", got)
	}
}

func TestLoadError(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")

	tests := []struct {
		name         string
		err          *LoadError
		wantContains []string
		wantCause    bool
	}{
		{
			name:         "status",
			err:          &LoadError{Path: "projects/proj-1.html?v=1", Status: 404},
			wantContains: []string{"load failed", "projects/proj-1.html?v=1", "404"},
		},
		{
			name:         "transport",
			err:          &LoadError{Path: "proj-2.html?v=1", Err: cause},
			wantContains: []string{"load failed", "proj-2.html?v=1", "connection refused"},
			wantCause:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if !errors.Is(tt.err, ErrLoadFailed) {
				t.Error("errors.Is(err, ErrLoadFailed) = false")
			}
			if got := errors.Is(tt.err, cause); got != tt.wantCause {
				t.Errorf("errors.Is(err, cause) = %v, want %v", got, tt.wantCause)
			}
			msg := tt.err.Error()
			for _, want := range tt.wantContains {
				if !strings.Contains(msg, want) {
					t.Errorf("Error() = %q, missing %q", msg, want)
				}
			}
		})
	}
}
