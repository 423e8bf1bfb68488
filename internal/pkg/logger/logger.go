package logger

import (
	"io"
	"log/slog"
	"strings"

	"github.com/go-chi/httplog/v3"
)

const appName = "mind-links-contractors"

// Schema is the attribute schema shared by application and request logs
var Schema = httplog.SchemaECS

// Options configures the application logger
type Options struct {
	Level   string
	Env     string
	Version string
}

// New builds a JSON logger using the ECS attribute names
func New(w io.Writer, opts Options) *slog.Logger {
	logFormat := Schema.Concise(opts.Env != "production")

	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       ParseLevel(opts.Level),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", appName),
		slog.String("version", opts.Version),
		slog.String("env", opts.Env),
	)
}

// ParseLevel maps LOG_LEVEL values to slog levels. Unknown values mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
