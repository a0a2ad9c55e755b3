package main

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/alnah/go-folio/internal/assets"
	"github.com/alnah/go-folio/internal/preview"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now         func() time.Time
	Stdout      io.Writer
	Stderr      io.Writer
	Getenv      func(string) string
	Environ     func() []string
	AssetLoader assets.AssetLoader
	// NewRenderer builds the screenshot backend for preview.
	NewRenderer func(timeout time.Duration) preview.Renderer
	// Logger is set by configure once the config is known.
	Logger *slog.Logger
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:         time.Now,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Getenv:      os.Getenv,
		Environ:     os.Environ,
		AssetLoader: assets.NewEmbeddedLoader(),
		NewRenderer: func(timeout time.Duration) preview.Renderer {
			return preview.NewRodRenderer(timeout)
		},
		Logger: slog.New(slog.DiscardHandler),
	}
}
