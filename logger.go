package symgo

import (
	"context"
	"log/slog"
	"os"

	"github.com/hupe1980/symgo/kb"
)

// Logger wraps slog.Logger with symgo-specific context.
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
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithConcept adds a concept label field to the logger.
func (l *Logger) WithConcept(label string) *Logger {
	return &Logger{
		Logger: l.Logger.With("concept", label),
	}
}

// WithRelation adds a relation field to the logger.
func (l *Logger) WithRelation(relation string) *Logger {
	return &Logger{
		Logger: l.Logger.With("relation", relation),
	}
}

// WithGeometry adds a geometry field to the logger.
func (l *Logger) WithGeometry(geometry int) *Logger {
	return &Logger{
		Logger: l.Logger.With("geometry", geometry),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogAssert logs a fact assertion.
func (l *Logger) LogAssert(ctx context.Context, triple string, id kb.FactID, err error) {
	if err != nil {
		l.ErrorContext(ctx, "assert failed",
			"triple", triple,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "assert completed",
			"triple", triple,
			"id", uint32(id),
		)
	}
}

// LogObserve logs an example observation.
func (l *Logger) LogObserve(ctx context.Context, label string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "observe failed",
			"concept", label,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "observe completed",
			"concept", label,
		)
	}
}

// LogProve logs a proof attempt.
func (l *Logger) LogProve(ctx context.Context, goal string, proven bool, err error) {
	if err != nil {
		l.ErrorContext(ctx, "prove failed",
			"goal", goal,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "prove completed",
			"goal", goal,
			"proven", proven,
		)
	}
}

// LogQuery logs an inference query.
func (l *Logger) LogQuery(ctx context.Context, triple, truth string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "query failed",
			"triple", triple,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "query completed",
			"triple", triple,
			"truth", truth,
		)
	}
}

// LogForget logs a forget sweep.
func (l *Logger) LogForget(ctx context.Context, removed int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "forget failed",
			"removed", removed,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "forget completed",
			"removed", removed,
		)
	}
}

// LogChain logs a forward-chaining run.
func (l *Logger) LogChain(ctx context.Context, derived, iterations int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "forward chain failed",
			"derived", derived,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "forward chain completed",
			"derived", derived,
			"iterations", iterations,
		)
	}
}

// LogSnapshot logs a snapshot operation.
func (l *Logger) LogSnapshot(ctx context.Context, name string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot saved",
			"name", name,
		)
	}
}

// LogRecovery logs a journal recovery operation.
func (l *Logger) LogRecovery(ctx context.Context, entriesReplayed int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "journal recovery failed",
			"entries_replayed", entriesReplayed,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "journal recovery completed",
			"entries_replayed", entriesReplayed,
		)
	}
}
