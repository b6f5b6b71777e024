// Package app holds process-level wiring shared by the commands.
package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/heartmarshall/pinyin-dict/internal/config"
)

// NewLogger builds the process logger on os.Stderr and installs it with
// slog.SetDefault.
func NewLogger(cfg config.LogConfig) *slog.Logger {
	logger := NewLoggerTo(os.Stderr, cfg)
	slog.SetDefault(logger)
	return logger
}

// NewLoggerTo builds a logger on w without touching the default logger.
//
// Format "json" writes one JSON object per line for log shippers. Any other
// format writes text with the caller as file:line. Every record carries the
// binary version.
func NewLoggerTo(w io.Writer, cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: parseLevel(cfg.Level)})
	} else {
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{
			Level:       parseLevel(cfg.Level),
			AddSource:   true,
			ReplaceAttr: shortSource,
		})
	}

	return slog.New(handler).With(slog.String("version", Version))
}

// shortSource renders the source attribute as base-name:line.
func shortSource(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 || a.Key != slog.SourceKey {
		return a
	}
	if src, ok := a.Value.Any().(*slog.Source); ok {
		a.Value = slog.StringValue(fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line))
	}
	return a
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return level
}
