package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Setup configures the global slog default. The level comes from the
// STAGEFLOW_LOG environment variable (debug, info, warn, error); anything
// else, including unset, means info. If w is nil, os.Stderr is used.
func Setup(w ...io.Writer) {
	var writer io.Writer = os.Stderr
	if len(w) > 0 && w[0] != nil {
		writer = w[0]
	}
	opts := &slog.HandlerOptions{Level: LevelFromEnv()}
	slog.SetDefault(slog.New(slog.NewTextHandler(writer, opts)))
}

// LevelFromEnv parses STAGEFLOW_LOG into a slog.Level, defaulting to Info.
func LevelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("STAGEFLOW_LOG")) {
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

// New returns a logger with a "component" attribute for package-scoped logging.
func New(component string) *slog.Logger {
	return slog.Default().With(slog.String("component", component))
}
