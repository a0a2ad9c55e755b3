package folio

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Location is the address of the page that includes the modals.
// The zero value is the site root.
type Location struct {
	URL *url.URL
}

// ParseLocation parses a page address. Both absolute URLs
// ("https://me.dev/projects/") and bare paths ("/projects/index.html")
// are accepted.
func ParseLocation(raw string) (Location, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, fmt.Errorf("%w: %v", ErrInvalidLocation, err)
	}
	if u.Path == "" && u.Opaque == "" {
		u.Path = "/"
	}
	return Location{URL: u}, nil
}

// Path returns the location's URL path, "/" for the zero value.
func (l Location) Path() string {
	if l.URL == nil || l.URL.Path == "" {
		return "/"
	}
	return l.URL.Path
}

func (l Location) String() string {
	if l.URL == nil {
		return "/"
	}
	return l.URL.String()
}

// InCollection reports whether the page lives inside the collection
// directory: its path contains "/<dir>/" or ends with "/<dir>".
func (l Location) InCollection(dir string) bool {
	dir = strings.Trim(dir, "/")
	if dir == "" {
		return false
	}
	p := l.Path()
	return strings.Contains(p, "/"+dir+"/") || strings.HasSuffix(p, "/"+dir)
}

// ResolvePath returns the fetch path of a project fragment for a page at loc.
// Pages inside the collection address fragments by filename; everywhere else
// they go through the collection directory.
func ResolvePath(reg *Registry, id ProjectID, loc Location) (string, error) {
	name, ok := reg.Lookup(id)
	if !ok {
		return "", &NotFoundError{ProjectID: id}
	}
	if loc.InCollection(reg.Dir()) {
		return name, nil
	}
	sitePath, _ := reg.SitePath(id)
	return sitePath, nil
}

// CacheBust appends a v=<unix-milliseconds> query parameter so every load
// bypasses HTTP and browser caches.
func CacheBust(p string, now time.Time) string {
	sep := "?"
	if strings.Contains(p, "?") {
		sep = "&"
	}
	return p + sep + "v=" + strconv.FormatInt(now.UnixMilli(), 10)
}
