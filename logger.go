package duckvec

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with duckvec-specific context.
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
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithTable adds the destination table to the logger.
func (l *Logger) WithTable(table string) *Logger {
	return &Logger{
		Logger: l.Logger.With("table", table),
	}
}

// WithColumns adds a column count field to the logger.
func (l *Logger) WithColumns(n int) *Logger {
	return &Logger{
		Logger: l.Logger.With("columns", n),
	}
}

// LogFlush logs the submission of one chunk to the engine.
func (l *Logger) LogFlush(ctx context.Context, rows int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "chunk flush failed",
			"rows", rows,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "chunk flushed",
			"rows", rows,
		)
	}
}

// LogClose logs the end of an appender session.
func (l *Logger) LogClose(ctx context.Context, totalRows int64, flushes int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "appender close failed",
			"rows", totalRows,
			"flushes", flushes,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "appender closed",
			"rows", totalRows,
			"flushes", flushes,
		)
	}
}

// LogRowsCopied logs bulk copy progress or completion.
func (l *Logger) LogRowsCopied(ctx context.Context, copied int64, done bool, err error) {
	switch {
	case err != nil:
		l.ErrorContext(ctx, "bulk copy failed",
			"rows", copied,
			"error", err,
		)
	case done:
		l.InfoContext(ctx, "bulk copy completed",
			"rows", copied,
		)
	default:
		l.DebugContext(ctx, "bulk copy progress",
			"rows", copied,
		)
	}
}
