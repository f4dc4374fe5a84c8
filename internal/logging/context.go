package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldBook is the standardized structured logging key for book titles or folders.
	FieldBook = "book"
	// FieldStage is the standardized structured logging key for pipeline stage names.
	FieldStage = "stage"
	// FieldRunID is the standardized structured logging key for run session identifiers.
	FieldRunID = "run_id"
	// FieldTrack is the standardized structured logging key for input track paths.
	FieldTrack = "track"
)

type contextKey int

const (
	bookContextKey contextKey = iota
	stageContextKey
)

// WithBook stores the book label in the context for structured logging.
func WithBook(ctx context.Context, book string) context.Context {
	if book == "" {
		return ctx
	}
	return context.WithValue(ctx, bookContextKey, book)
}

// WithStage stores the pipeline stage name in the context for structured logging.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageContextKey, stage)
}

// BookFromContext returns the book label stored in the context, if any.
func BookFromContext(ctx context.Context) (string, bool) {
	value, ok := ctx.Value(bookContextKey).(string)
	return value, ok && value != ""
}

// StageFromContext returns the stage name stored in the context, if any.
func StageFromContext(ctx context.Context) (string, bool) {
	value, ok := ctx.Value(stageContextKey).(string)
	return value, ok && value != ""
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if book, ok := BookFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldBook, book))
	}
	if stage, ok := StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
