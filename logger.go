package comat

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with comat-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithShape adds the rank and extents of the primary grid to the logger.
func (l *Logger) WithShape(extents []int) *Logger {
	return &Logger{
		Logger: l.Logger.With("rank", len(extents), "shape", extents),
	}
}

// WithLevels adds the primary and secondary level counts to the logger.
func (l *Logger) WithLevels(levels1, levels2 int) *Logger {
	return &Logger{
		Logger: l.Logger.With("levels1", levels1, "levels2", levels2),
	}
}

// LogCompute logs the outcome of one histogram computation.
func (l *Logger) LogCompute(ctx context.Context, offsets int, stats Stats, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "compute failed",
			"offsets", offsets,
			"duration", duration,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "compute completed",
		"offsets", offsets,
		"eligible", stats.Eligible,
		"outside", stats.Outside,
		"neighborMasked", stats.NeighborMasked,
		"dropped", stats.Dropped,
		"counted", stats.Counted,
		"duration", duration,
	)
}

// LogDroppedLabel logs a pair excluded because a label is outside its level range.
func (l *Logger) LogDroppedLabel(ctx context.Context, coord []int, center, neighbor int64) {
	l.WarnContext(ctx, "label out of range, pair dropped",
		"coord", coord,
		"center", center,
		"neighbor", neighbor,
	)
}
