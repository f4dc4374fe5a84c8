// Package logging builds the slog loggers used across bookbind.
//
// It offers console and JSON handlers, standardized attribute keys for book
// and stage context, and helpers for deriving per-component loggers so the
// pipeline emits consistent structured output.
package logging
