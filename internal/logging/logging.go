// Package logging provides structured logging setup for the CRM server.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// New returns a logger writing to w. Development uses human-readable text
// at debug level; production uses JSON at info level.
func New(w io.Writer, devMode bool) *slog.Logger {
	if devMode {
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// Setup initializes the default slog logger on stdout.
func Setup(devMode bool) {
	slog.SetDefault(New(os.Stdout, devMode))
}
