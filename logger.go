package ipactivity

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with ipactivity-specific context.
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
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithDataset adds a dataset field to the logger.
func (l *Logger) WithDataset(dataset string) *Logger {
	return &Logger{
		Logger: l.Logger.With("dataset", dataset),
	}
}

// WithKind adds a bitmap kind field to the logger.
func (l *Logger) WithKind(kind Kind) *Logger {
	return &Logger{
		Logger: l.Logger.With("kind", kind.String()),
	}
}

// LogOpen logs the initial configuration load.
func (l *Logger) LogOpen(ctx context.Context, dataset, mode string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "open failed",
			"dataset", dataset,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "engine opened",
			"dataset", dataset,
			"mode", mode,
		)
	}
}

// LogRefresh logs a configuration refresh. A failed refresh keeps the
// previous configuration, so it is a warning.
func (l *Logger) LogRefresh(ctx context.Context, dataset, transition string, err error) {
	if err != nil {
		l.WarnContext(ctx, "configuration refresh rejected",
			"dataset", dataset,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "configuration refreshed",
			"dataset", dataset,
			"transition", transition,
		)
	}
}

// LogRead logs a bitmap read.
func (l *Logger) LogRead(ctx context.Context, name string, rows, cols int, noData bool, err error) {
	switch {
	case err != nil:
		l.ErrorContext(ctx, "bitmap read failed",
			"file", name,
			"error", err,
		)
	case noData:
		l.InfoContext(ctx, "bitmap has no data",
			"file", name,
		)
	default:
		l.DebugContext(ctx, "bitmap read",
			"file", name,
			"rows", rows,
			"cols", cols,
		)
	}
}

// LogSelect logs a selection.
func (l *Logger) LogSelect(ctx context.Context, rows, cols int, err error) {
	if err != nil {
		l.DebugContext(ctx, "selection rejected",
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "selection completed",
			"rows", rows,
			"cols", cols,
		)
	}
}

// LogRender logs a rendering.
func (l *Logger) LogRender(ctx context.Context, width, height int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "render failed",
			"width", width,
			"height", height,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "render completed",
			"width", width,
			"height", height,
		)
	}
}
