package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/alnah/go-folio/internal/fileutil"
	"github.com/alnah/go-folio/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxURLLength       = 2048 // Browser limit
	MaxPathLength      = 4096 // PATH_MAX on Linux
	MaxDirNameLength   = 255  // Single path segment
	MaxFilenameLength  = 255
	MaxPrefixLength    = 256 // "../../../" and friends
	MaxUserAgentLength = 256
	MaxGlobLength      = 512
	MaxNameLength      = 100 // Style and template names
)

// Default values.
const (
	DefaultCollectionDir = "projects"
	DefaultLocation      = "/"
	DefaultTimeout       = "10s"
	DefaultUserAgent     = "go-folio"
	DefaultMaxBytes      = 4 << 20
	DefaultGlob          = "**/proj-*.md"
	DefaultStyle         = "fragment"
	DefaultTemplate      = "fragment"
	DefaultBackHref      = "../index.html"
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
)

// Config holds all configuration for loading and building project fragments.
type Config struct {
	Site     SiteConfig     `yaml:"site"`
	Projects map[int]string `yaml:"projects"` // Empty = ids 1-4 as proj-<id>.html
	Fetch    FetchConfig    `yaml:"fetch"`
	Cache    CacheConfig    `yaml:"cache"`
	Build    BuildConfig    `yaml:"build"`
	Log      LogConfig      `yaml:"log"`
}

// SiteConfig describes the portfolio site being served.
type SiteConfig struct {
	BaseURL       string `yaml:"baseURL"`       // e.g. https://me.dev (empty = load from Root)
	Root          string `yaml:"root"`          // Local site directory
	CollectionDir string `yaml:"collectionDir"` // Directory holding proj-<id>.html
	Location      string `yaml:"location"`      // Path of the including page
	Prefix        string `yaml:"prefix"`        // Prepended to rewritten paths
}

// FetchConfig defines HTTP fetch options.
type FetchConfig struct {
	Timeout   string `yaml:"timeout"` // Go duration, e.g. "10s"
	UserAgent string `yaml:"userAgent"`
	MaxBytes  int64  `yaml:"maxBytes"` // Response body limit
}

// CacheConfig defines the content store behavior.
type CacheConfig struct {
	ReadThrough bool `yaml:"readThrough"` // Serve repeated loads from the store
}

// BuildConfig defines fragment authoring options.
type BuildConfig struct {
	Glob      string `yaml:"glob"`      // doublestar pattern for Markdown sources
	Style     string `yaml:"style"`     // Name of style in internal/assets/styles/ (empty = no CSS)
	Template  string `yaml:"template"`  // Name of template in internal/assets/templates/
	AssetPath string `yaml:"assetPath"` // Empty = use embedded assets
	BackHref  string `yaml:"backHref"`  // Target of the fragment back-link
}

// LogConfig defines logging options.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Validate checks field lengths and enumerated values.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	fields := []struct {
		name  string
		value string
		max   int
	}{
		{"site.baseURL", c.Site.BaseURL, MaxURLLength},
		{"site.root", c.Site.Root, MaxPathLength},
		{"site.collectionDir", c.Site.CollectionDir, MaxDirNameLength},
		{"site.location", c.Site.Location, MaxURLLength},
		{"site.prefix", c.Site.Prefix, MaxPrefixLength},
		{"fetch.timeout", c.Fetch.Timeout, MaxNameLength},
		{"fetch.userAgent", c.Fetch.UserAgent, MaxUserAgentLength},
		{"build.glob", c.Build.Glob, MaxGlobLength},
		{"build.style", c.Build.Style, MaxNameLength},
		{"build.template", c.Build.Template, MaxNameLength},
		{"build.assetPath", c.Build.AssetPath, MaxPathLength},
		{"build.backHref", c.Build.BackHref, MaxURLLength},
	}
	for _, f := range fields {
		if err := validateFieldLength(f.name, f.value, f.max); err != nil {
			return err
		}
	}

	for _, id := range sortedIDs(c.Projects) {
		name := fmt.Sprintf("projects[%d]", id)
		file := c.Projects[id]
		if err := validateFieldLength(name, file, MaxFilenameLength); err != nil {
			return err
		}
		if file == "" || strings.ContainsAny(file, "/\\") {
			return fmt.Errorf("%w: %s: must be a bare filename, got %q", ErrInvalidValue, name, file)
		}
	}

	if strings.ContainsAny(c.Site.CollectionDir, "/\\") {
		return fmt.Errorf("%w: site.collectionDir: must be a single directory name, got %q", ErrInvalidValue, c.Site.CollectionDir)
	}

	if c.Site.BaseURL != "" {
		u, err := url.Parse(c.Site.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: site.baseURL: must be an absolute http(s) URL, got %q", ErrInvalidValue, c.Site.BaseURL)
		}
	}

	if c.Fetch.Timeout != "" {
		d, err := time.ParseDuration(c.Fetch.Timeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("%w: fetch.timeout: must be a positive duration, got %q", ErrInvalidValue, c.Fetch.Timeout)
		}
	}
	if c.Fetch.MaxBytes < 0 {
		return fmt.Errorf("%w: fetch.maxBytes: must not be negative, got %d", ErrInvalidValue, c.Fetch.MaxBytes)
	}

	if c.Log.Level != "" {
		if _, err := parseLevel(c.Log.Level); err != nil {
			return err
		}
	}
	if c.Log.Format != "" {
		switch strings.ToLower(c.Log.Format) {
		case "text", "json":
			// valid
		default:
			return fmt.Errorf("%w: log.format: %q (must be text or json)", ErrInvalidValue, c.Log.Format)
		}
	}

	return nil
}

// FetchTimeout returns the parsed fetch timeout, or the default when unset.
func (c *Config) FetchTimeout() time.Duration {
	if d, err := time.ParseDuration(c.Fetch.Timeout); err == nil && d > 0 {
		return d
	}
	d, _ := time.ParseDuration(DefaultTimeout)
	return d
}

// LogLevel returns the configured slog level, info when unset.
func (c *Config) LogLevel() slog.Level {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("%w: log.level: %q (must be debug, info, warn, or error)", ErrInvalidValue, s)
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

func sortedIDs(m map[int]string) []int {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			CollectionDir: DefaultCollectionDir,
			Location:      DefaultLocation,
		},
		Fetch: FetchConfig{
			Timeout:   DefaultTimeout,
			UserAgent: DefaultUserAgent,
			MaxBytes:  DefaultMaxBytes,
		},
		Build: BuildConfig{
			Glob:     DefaultGlob,
			Style:    DefaultStyle,
			Template: DefaultTemplate,
			BackHref: DefaultBackHref,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yamlutil.Marshal(c)
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Fields missing from the file keep their DefaultConfig values.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-folio/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-folio", name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}
