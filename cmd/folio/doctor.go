package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-rod/rod/lib/launcher"

	"github.com/alnah/go-folio/internal/assets"
	"github.com/alnah/go-folio/internal/config"
	"github.com/alnah/go-folio/internal/hints"
)

// Doctor statuses.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string      `json:"status"`
	Site     siteInfo    `json:"site"`
	Assets   assetsInfo  `json:"assets"`
	Browser  browserInfo `json:"browser"`
	Env      envInfo     `json:"environment"`
	Warnings []string    `json:"warnings,omitempty"`
	Errors   []string    `json:"errors,omitempty"`
}

// siteInfo describes where fragments would be loaded from.
type siteInfo struct {
	Config  string `json:"config,omitempty"`
	Source  string `json:"source"` // base URL or local root
	Remote  bool   `json:"remote"`
	Healthy bool   `json:"healthy"`
}

// assetsInfo describes where build reads templates and styles from.
type assetsInfo struct {
	Dir    string `json:"dir,omitempty"` // Site asset directory, empty when embedded only
	Custom bool   `json:"custom"`
}

// browserInfo holds Chrome/Chromium detection results. Only preview needs it.
type browserInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
	TempWritable  bool   `json:"temp_writable"`
}

// lookBrowser finds Chrome; replaced in tests.
var lookBrowser = launcher.LookPath

// runDoctorCmd executes the doctor command and returns an exit code:
// 0 when ready (warnings included), 1 when errors were found.
func runDoctorCmd(args []string, env *Environment) int {
	jsonOutput := false
	for _, arg := range args {
		if arg == "--json" {
			jsonOutput = true
		}
	}

	result := runDoctor(env)

	if jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == statusErrors {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(env *Environment) *doctorResult {
	result := &doctorResult{
		Status: statusReady,
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  env.Getenv("ROD_NO_SANDBOX"),
			BrowserBin: env.Getenv("ROD_BROWSER_BIN"),
		},
	}

	checkSite(result, env)
	checkBrowser(result)
	checkEnvironment(result, env)
	checkTempDir(result)

	if len(result.Errors) > 0 {
		result.Status = statusErrors
	} else if len(result.Warnings) > 0 {
		result.Status = statusWarnings
	}
	return result
}

// checkSite loads the effective configuration and checks the fragment source.
func checkSite(result *doctorResult, env *Environment) {
	cfg, err := loadSettings(commonFlags{}, env)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Config: %v", err))
		return
	}
	if err := cfg.Validate(); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Config: %v", err))
		return
	}
	result.Site.Config = env.Getenv("FOLIO_CONFIG")
	checkAssets(result, cfg)

	_, remote, err := resolveLocation(cfg)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Location: %v", err))
		return
	}
	result.Site.Remote = remote
	if remote {
		result.Site.Source = cfg.Site.BaseURL
		if result.Site.Source == "" {
			result.Site.Source = cfg.Site.Location
		}
		result.Site.Healthy = true
		return
	}

	root := cfg.Site.Root
	if root == "" {
		root = "."
	}
	result.Site.Source = root

	dir := cfg.Site.CollectionDir
	if dir == "" {
		dir = config.DefaultCollectionDir
	}
	collection := filepath.Join(root, dir)
	info, err := os.Stat(collection)
	if err != nil || !info.IsDir() {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Collection directory %s not found. Set FOLIO_ROOT or site.root", collection))
		return
	}
	result.Site.Healthy = true
}

// checkAssets verifies build.assetPath. A bad directory fails every build,
// so it is an error.
func checkAssets(result *doctorResult, cfg *config.Config) {
	resolver, err := assets.NewAssetResolver(cfg.Build.AssetPath)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Assets: %v", err))
		return
	}
	result.Assets.Custom = resolver.HasCustomLoader()
	result.Assets.Dir = resolver.CustomPath()
}

// checkBrowser detects Chrome/Chromium. A missing browser only disables
// preview, so it is a warning.
func checkBrowser(result *doctorResult) {
	browserPath := result.Env.BrowserBin

	if browserPath == "" {
		var found bool
		browserPath, found = lookBrowser()
		if !found {
			result.Warnings = append(result.Warnings,
				"Chrome/Chromium not found; preview is unavailable. Install Chrome or set ROD_BROWSER_BIN")
			return
		}
	}

	if _, err := os.Stat(browserPath); err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Chrome not found at %s", browserPath))
		return
	}

	result.Browser.Found = true
	result.Browser.Path = browserPath

	out, err := exec.Command(browserPath, "--version").Output() // #nosec G204 -- browser path from env or rod lookup
	if err == nil {
		result.Browser.Version = strings.TrimSpace(string(out))
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get Chrome version: %v", err))
	}

	result.Browser.Sandbox = result.Env.NoSandbox != "1"
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult, env *Environment) {
	result.Env.Container, result.Env.ContainerHint = isContainer(env.Getenv)

	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if env.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	if (result.Env.Container || result.Env.CI) && result.Env.NoSandbox != "1" && result.Browser.Found {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
}

// isContainer reports whether we run in a container and which signal said so.
func isContainer(getenv func(string) string) (bool, string) {
	if getenv("FOLIO_CONTAINER") == "1" {
		return true, "FOLIO_CONTAINER=1"
	}
	if hints.IsInContainer() {
		return true, "/.dockerenv"
	}
	if v := getenv("container"); v != "" {
		return true, "container=" + v
	}
	if getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkTempDir verifies preview can write its temp page.
func checkTempDir(result *doctorResult) {
	f, err := os.CreateTemp("", "folio-doctor-*")
	if err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", os.TempDir()))
		return
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	result.Env.TempWritable = true
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "folio doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Site")
	if r.Site.Source != "" {
		kind := "local"
		if r.Site.Remote {
			kind = "remote"
		}
		fmt.Fprintf(w, "  [OK] Source: %s (%s)\n", r.Site.Source, kind)
	}
	if r.Site.Config != "" {
		fmt.Fprintf(w, "  [OK] Config: %s\n", r.Site.Config)
	}
	if r.Assets.Custom {
		fmt.Fprintf(w, "  [OK] Assets: %s (embedded fallback)\n", r.Assets.Dir)
	} else {
		fmt.Fprintln(w, "  [OK] Assets: embedded")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Chrome/Chromium")
	if r.Browser.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Browser.Path)
		if r.Browser.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Browser.Version)
		}
		if r.Browser.Sandbox {
			fmt.Fprintln(w, "  [OK] Sandbox: enabled")
		} else {
			fmt.Fprintln(w, "  [OK] Sandbox: disabled (ROD_NO_SANDBOX=1)")
		}
	} else {
		fmt.Fprintln(w, "  [WARN] Not found")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	if r.Env.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready")
	case statusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case statusErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
