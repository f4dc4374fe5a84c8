// Package transcode fans input tracks out to a bounded ffmpeg worker pool.
//
// Each track owns a distinct intermediate output path, so workers share no
// mutable state. A single track's failure is recorded on its Result and the
// rest of the batch keeps going; completion order never leaks downstream
// because results are reported in canonical track order.
package transcode

import (
	"context"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"bookbind/internal/logging"
	"bookbind/internal/media/ffmpeg"
	"bookbind/internal/track"
)

// intermediateExt is the container extension of the per-track encodes.
const intermediateExt = ".m4a"

// Result pairs an input track with its intermediate output, or the reason it
// was excluded from the book.
type Result struct {
	Track      track.Track
	OutputPath string
	Err        error
}

// Transcoder converts input tracks to the intermediate codec in parallel.
type Transcoder struct {
	client  ffmpeg.Client
	codec   string
	workers int
	logger  *slog.Logger
}

// Option configures a Transcoder.
type Option func(*Transcoder)

// WithCodec sets the intermediate audio codec.
func WithCodec(codec string) Option {
	return func(t *Transcoder) {
		if strings.TrimSpace(codec) != "" {
			t.codec = codec
		}
	}
}

// WithWorkers bounds the worker pool. Values below one select one worker per
// CPU core.
func WithWorkers(workers int) Option {
	return func(t *Transcoder) {
		t.workers = workers
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Transcoder) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// New constructs a Transcoder around the given ffmpeg client.
func New(client ffmpeg.Client, opts ...Option) *Transcoder {
	t := &Transcoder{
		client: client,
		codec:  "aac",
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Run converts every track into destDir and blocks until all workers finish.
// The returned slice is in canonical track order regardless of completion
// order; entries with a non-nil Err produced no usable output.
func (t *Transcoder) Run(ctx context.Context, tracks []track.Track, destDir string) []Result {
	results := make([]Result, len(tracks))

	width := t.workers
	if width < 1 {
		width = runtime.NumCPU()
	}

	var group errgroup.Group
	group.SetLimit(width)
	for i, tr := range tracks {
		group.Go(func() error {
			outputPath := intermediatePath(destDir, tr.Path)
			err := t.client.Transcode(ctx, tr.Path, outputPath, t.codec)
			if err != nil {
				t.logger.Warn("track transcode failed, excluding from book",
					logging.String(logging.FieldTrack, tr.Path),
					logging.Error(err))
				results[i] = Result{Track: tr, Err: err}
				return nil
			}
			t.logger.Debug("track transcoded",
				logging.String(logging.FieldTrack, tr.Path),
				logging.String("output", outputPath))
			results[i] = Result{Track: tr, OutputPath: outputPath}
			return nil
		})
	}
	// Join barrier: chapter timing needs the complete result set.
	_ = group.Wait()

	return results
}

// Successful filters results down to the tracks that produced an output,
// preserving canonical order.
func Successful(results []Result) []Result {
	kept := make([]Result, 0, len(results))
	for _, res := range results {
		if res.Err == nil {
			kept = append(kept, res)
		}
	}
	return kept
}

// OutputPaths projects the intermediate paths of successful results in order.
func OutputPaths(results []Result) []string {
	paths := make([]string, 0, len(results))
	for _, res := range results {
		if res.Err == nil {
			paths = append(paths, res.OutputPath)
		}
	}
	return paths
}

func intermediatePath(destDir, inputPath string) string {
	base := filepath.Base(inputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(destDir, stem+intermediateExt)
}
