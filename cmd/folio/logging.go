package main

import (
	"io"
	"log/slog"
	"strings"

	"github.com/alnah/go-folio/internal/config"
)

// newLogger builds the CLI logger. Logs go to stderr so stdout stays
// reserved for command output. --verbose forces debug, --quiet keeps errors only.
func newLogger(w io.Writer, cfg *config.Config, common commonFlags) *slog.Logger {
	level := cfg.LogLevel()
	switch {
	case common.verbose:
		level = slog.LevelDebug
	case common.quiet:
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
