// Package hints provides actionable follow-ups appended to CLI error messages.
// Hints are formatted consistently as "\n  hint: <text>".
package hints

import (
	"os"
	"strconv"
	"strings"

	"github.com/alnah/go-folio/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForBrowserConnect returns hints for headless Chrome launch failures.
func ForBrowserConnect() string {
	var hints []string

	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != ""

	if (inCI || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use an installed Chrome")
	}

	return formatHints(hints)
}

// ForConfigNotFound suggests --config or creating one of the searched files.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/folio.yaml"
	for _, p := range searchedPaths {
		if strings.Contains(p, "go-folio") {
			hint += " or create " + p
			break
		}
	}
	return format(hint)
}

// ForProjectNotFound lists the project ids the registry knows.
func ForProjectNotFound(known []int) string {
	if len(known) == 0 {
		return format("no projects are configured; add a projects: section to the config")
	}
	ids := make([]string, len(known))
	for i, id := range known {
		ids[i] = strconv.Itoa(id)
	}
	return format("known projects: " + strings.Join(ids, ", "))
}

// ForLoadStatus explains the usual cause of a failed fragment request.
func ForLoadStatus(status int) string {
	switch {
	case status == 404:
		return format("check --location and site.collectionDir; the fragment path depends on the including page")
	case status == 401 || status == 403:
		return format("the server refused the request; check site.baseURL")
	case status >= 500:
		return format("the server failed; retry later")
	}
	return ""
}

// ForTimeout suggests raising the fetch timeout.
func ForTimeout() string {
	return format("raise fetch.timeout or FOLIO_TIMEOUT for slow hosts")
}

// ForStyleNotFound lists the built-in styles.
func ForStyleNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
