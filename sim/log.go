package sim

import (
	"context"
	"io"
	"log/slog"
)

// LevelTrace sits below Debug and carries per-record predictor state.
const LevelTrace slog.Level = slog.LevelDebug - 4

// NewLogger creates a logger writing to w at the given level. JSON output
// is used when asJSON is set, plain text otherwise.
func NewLogger(w io.Writer, level slog.Level, asJSON bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if asJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelError + 1,
	}))
}

func (s *Simulator) logTrace(msg string, args ...any) {
	s.logger.Log(context.Background(), LevelTrace, msg, args...)
}
