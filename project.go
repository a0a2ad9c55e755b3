package folio

import (
	"fmt"
	"path"
	"sort"
	"strings"
)

// ProjectID identifies a project fragment.
type ProjectID int

// DefaultCollectionDir is the site directory holding project fragments.
const DefaultCollectionDir = "projects"

// Registry maps project identifiers to fragment files inside one
// collection directory. It is immutable once built.
type Registry struct {
	dir   string
	files map[ProjectID]string
}

// DefaultRegistry maps projects 1 to 4 to projects/proj-<id>.html.
func DefaultRegistry() *Registry {
	files := make(map[ProjectID]string, 4)
	for id := ProjectID(1); id <= 4; id++ {
		files[id] = FragmentFilename(id)
	}
	return &Registry{dir: DefaultCollectionDir, files: files}
}

// NewRegistry builds a registry for dir. Filenames must be plain names:
// fragments are addressed relative to the collection directory.
func NewRegistry(dir string, files map[ProjectID]string) (*Registry, error) {
	dir = strings.Trim(dir, "/")
	if dir == "" {
		return nil, fmt.Errorf("%w: empty collection directory", ErrInvalidRegistry)
	}

	copied := make(map[ProjectID]string, len(files))
	for id, name := range files {
		if name == "" || strings.ContainsAny(name, "/\\?#") || name == "." || name == ".." {
			return nil, fmt.Errorf("%w: project %d: invalid filename %q", ErrInvalidRegistry, id, name)
		}
		copied[id] = name
	}

	return &Registry{dir: dir, files: copied}, nil
}

// FragmentFilename returns the conventional filename of a project fragment.
func FragmentFilename(id ProjectID) string {
	return fmt.Sprintf("proj-%d.html", id)
}

// Dir returns the collection directory name.
func (r *Registry) Dir() string {
	return r.dir
}

// Lookup returns the fragment filename for id.
func (r *Registry) Lookup(id ProjectID) (string, bool) {
	name, ok := r.files[id]
	return name, ok
}

// IDs returns the mapped identifiers in ascending order.
func (r *Registry) IDs() []ProjectID {
	ids := make([]ProjectID, 0, len(r.files))
	for id := range r.files {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// SitePath returns the fragment path relative to the site root.
func (r *Registry) SitePath(id ProjectID) (string, bool) {
	name, ok := r.files[id]
	if !ok {
		return "", false
	}
	return path.Join(r.dir, name), true
}
