package config

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// NewLogger builds a text or JSON logger at the given level and installs it
// as the default. Unknown levels fall back to info.
func NewLogger(format, level string) *slog.Logger {
	logger := newLogger(os.Stdout, format, level)
	slog.SetDefault(logger)
	return logger
}

func newLogger(w io.Writer, format, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}
