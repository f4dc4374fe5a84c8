// Package chapters builds the chapter timeline and its ffmetadata descriptor.
//
// Offsets accumulate in the canonical track order handed in by the caller;
// the package never re-derives an order of its own, so the chapter table and
// the concat manifest cannot drift apart.
package chapters

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"bookbind/internal/logging"
)

// Entry is one chapter: a half-open time range in milliseconds plus a title.
type Entry struct {
	StartMS int64
	EndMS   int64
	Title   string
}

// ProbeFunc reports a media file's duration in seconds.
type ProbeFunc func(ctx context.Context, path string) (float64, error)

// TitleFunc reports a media file's embedded title tag, or "" when absent.
type TitleFunc func(ctx context.Context, path string) string

// Builder computes cumulative chapter offsets from probed track durations.
type Builder struct {
	probe  ProbeFunc
	title  TitleFunc
	logger *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithTitleFunc sets the embedded-title reader used for chapter names.
func WithTitleFunc(fn TitleFunc) Option {
	return func(b *Builder) {
		if fn != nil {
			b.title = fn
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBuilder constructs a Builder around the given duration probe.
func NewBuilder(probe ProbeFunc, opts ...Option) *Builder {
	b := &Builder{
		probe:  probe,
		title:  func(context.Context, string) string { return "" },
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build probes each path in its given order and emits one Entry per path.
// A failed probe degrades to a zero-duration chapter with a warning; chapter
// boundaries stay exact and reproducible for identical probe outputs.
func (b *Builder) Build(ctx context.Context, paths []string) []Entry {
	entries := make([]Entry, 0, len(paths))
	var offset int64
	for i, path := range paths {
		seconds, err := b.probe(ctx, path)
		if err != nil {
			b.logger.Warn("could not determine track duration, using zero",
				logging.String(logging.FieldTrack, path),
				logging.Error(err))
			seconds = 0
		}
		durationMS := RoundMS(seconds)

		title := b.title(ctx, path)
		if title == "" {
			title = fmt.Sprintf("Chapter %d", i+1)
		}

		entries = append(entries, Entry{
			StartMS: offset,
			EndMS:   offset + durationMS,
			Title:   title,
		})
		offset += durationMS
	}
	return entries
}

// RoundMS converts floating-point seconds to integer milliseconds, rounding
// half away from zero. The mode is fixed so chapter boundaries are
// bit-for-bit reproducible across runs.
func RoundMS(seconds float64) int64 {
	if seconds <= 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0
	}
	return int64(math.Round(seconds * 1000))
}
