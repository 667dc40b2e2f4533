package logger

import (
	"log/slog"
	"os"
)

// NewJSONHandler returns the production handler: structured JSON on stdout.
func NewJSONHandler(level slog.Level) slog.Handler {
	return slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
}
