package folio

import (
	"errors"
	"reflect"
	"testing"
)

func TestDefaultRegistry(t *testing.T) {
	t.Parallel()

	reg := DefaultRegistry()

	if reg.Dir() != "projects" {
		t.Errorf("Dir() = %q, want projects", reg.Dir())
	}
	if got, want := reg.IDs(), []ProjectID{1, 2, 3, 4}; !reflect.DeepEqual(got, want) {
		t.Errorf("IDs() = %v, want %v", got, want)
	}
	for _, id := range reg.IDs() {
		name, ok := reg.Lookup(id)
		if !ok || name != FragmentFilename(id) {
			t.Errorf("Lookup(%d) = %q, %v", id, name, ok)
		}
	}
	if _, ok := reg.Lookup(0); ok {
		t.Error("Lookup(0) should be unmapped")
	}
	if p, ok := reg.SitePath(4); !ok || p != "projects/proj-4.html" {
		t.Errorf("SitePath(4) = %q, %v", p, ok)
	}
	if _, ok := reg.SitePath(5); ok {
		t.Error("SitePath(5) should be unmapped")
	}
}

func TestNewRegistry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		dir     string
		files   map[ProjectID]string
		wantErr bool
	}{
		{"valid", "work", map[ProjectID]string{10: "robot.html"}, false},
		{"slashes trimmed", "/work/", map[ProjectID]string{1: "a.html"}, false},
		{"empty dir", "", map[ProjectID]string{1: "a.html"}, true},
		{"nested filename", "work", map[ProjectID]string{1: "sub/a.html"}, true},
		{"query in filename", "work", map[ProjectID]string{1: "a.html?x"}, true},
		{"parent filename", "work", map[ProjectID]string{1: ".."}, true},
		{"empty filename", "work", map[ProjectID]string{1: ""}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			reg, err := NewRegistry(tt.dir, tt.files)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidRegistry) {
					t.Errorf("NewRegistry() error = %v, want ErrInvalidRegistry", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewRegistry() error = %v", err)
			}
			if reg.Dir() != "work" {
				t.Errorf("Dir() = %q, want work", reg.Dir())
			}
		})
	}

	t.Run("input map is copied", func(t *testing.T) {
		t.Parallel()

		files := map[ProjectID]string{1: "a.html"}
		reg, err := NewRegistry("work", files)
		if err != nil {
			t.Fatalf("NewRegistry() error = %v", err)
		}
		files[2] = "b.html"
		if _, ok := reg.Lookup(2); ok {
			t.Error("registry should not observe later changes to the input map")
		}
	})
}
