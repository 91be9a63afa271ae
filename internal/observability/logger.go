package observability

import (
	"log/slog"
	"os"

	"github.com/couchcryptid/flowmap-etl/internal/config"
)

// NewLogger builds the service logger from config. LOG_FORMAT selects JSON
// (the default, for log shippers) or text; LOG_LEVEL falls back to info on
// unrecognized values.
func NewLogger(cfg *config.Config) *slog.Logger {
	level := parseLevel(cfg.LogLevel)
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
