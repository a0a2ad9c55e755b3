package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alnah/go-folio/internal/config"
)

const envPrefix = "FOLIO_"

// envConfig holds configuration from FOLIO_* environment variables.
type envConfig struct {
	ConfigPath    string // FOLIO_CONFIG
	BaseURL       string // FOLIO_BASE_URL
	Root          string // FOLIO_ROOT
	CollectionDir string // FOLIO_COLLECTION_DIR
	Location      string // FOLIO_LOCATION
	Prefix        string // FOLIO_PREFIX
	Timeout       string // FOLIO_TIMEOUT
	UserAgent     string // FOLIO_USER_AGENT
	ReadThrough   *bool  // FOLIO_READ_THROUGH
	Style         string // FOLIO_STYLE
	AssetPath     string // FOLIO_ASSET_PATH
	LogLevel      string // FOLIO_LOG_LEVEL
	LogFormat     string // FOLIO_LOG_FORMAT
}

// knownEnvVars lists valid FOLIO_* variables; anything else is likely a typo.
var knownEnvVars = map[string]bool{
	"FOLIO_CONFIG":         true,
	"FOLIO_BASE_URL":       true,
	"FOLIO_ROOT":           true,
	"FOLIO_COLLECTION_DIR": true,
	"FOLIO_LOCATION":       true,
	"FOLIO_PREFIX":         true,
	"FOLIO_TIMEOUT":        true,
	"FOLIO_USER_AGENT":     true,
	"FOLIO_READ_THROUGH":   true,
	"FOLIO_STYLE":          true,
	"FOLIO_ASSET_PATH":     true,
	"FOLIO_LOG_LEVEL":      true,
	"FOLIO_LOG_FORMAT":     true,
}

// loadEnvConfig reads recognized FOLIO_* values through getenv.
// Unparseable booleans are ignored.
func loadEnvConfig(getenv func(string) string) *envConfig {
	cfg := &envConfig{
		ConfigPath:    getenv("FOLIO_CONFIG"),
		BaseURL:       getenv("FOLIO_BASE_URL"),
		Root:          getenv("FOLIO_ROOT"),
		CollectionDir: getenv("FOLIO_COLLECTION_DIR"),
		Location:      getenv("FOLIO_LOCATION"),
		Prefix:        getenv("FOLIO_PREFIX"),
		Timeout:       getenv("FOLIO_TIMEOUT"),
		UserAgent:     getenv("FOLIO_USER_AGENT"),
		Style:         getenv("FOLIO_STYLE"),
		AssetPath:     getenv("FOLIO_ASSET_PATH"),
		LogLevel:      getenv("FOLIO_LOG_LEVEL"),
		LogFormat:     getenv("FOLIO_LOG_FORMAT"),
	}
	if v := getenv("FOLIO_READ_THROUGH"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.ReadThrough = &b
		}
	}
	return cfg
}

// warnUnknownEnvVars reports FOLIO_* variables that are not recognized.
func warnUnknownEnvVars(w io.Writer, environ []string) {
	for _, kv := range environ {
		if !strings.HasPrefix(kv, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(kv, "=")
		if !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig overrides file values with set environment variables.
// Flags are applied afterwards, giving flags > env > file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	setIf(&cfg.Site.BaseURL, env.BaseURL)
	setIf(&cfg.Site.Root, env.Root)
	setIf(&cfg.Site.CollectionDir, env.CollectionDir)
	setIf(&cfg.Site.Location, env.Location)
	setIf(&cfg.Site.Prefix, env.Prefix)
	setIf(&cfg.Fetch.Timeout, env.Timeout)
	setIf(&cfg.Fetch.UserAgent, env.UserAgent)
	setIf(&cfg.Build.Style, env.Style)
	setIf(&cfg.Build.AssetPath, env.AssetPath)
	setIf(&cfg.Log.Level, env.LogLevel)
	setIf(&cfg.Log.Format, env.LogFormat)
	if env.ReadThrough != nil {
		cfg.Cache.ReadThrough = *env.ReadThrough
	}
}

// setIf assigns value to dst when value is non-empty.
func setIf(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}
