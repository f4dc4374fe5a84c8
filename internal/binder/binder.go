// Package binder orchestrates the full conversion of a folder of chapter
// tracks into a single chaptered audiobook: transcode, chapter timeline,
// metadata resolution, and the final merge.
package binder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"bookbind/internal/chapters"
	"bookbind/internal/concat"
	"bookbind/internal/config"
	"bookbind/internal/fileutil"
	"bookbind/internal/ledger"
	"bookbind/internal/logging"
	"bookbind/internal/media/ffmpeg"
	"bookbind/internal/media/ffprobe"
	"bookbind/internal/metadata"
	"bookbind/internal/metadata/googlebooks"
	"bookbind/internal/metadata/openlibrary"
	"bookbind/internal/services"
	"bookbind/internal/staging"
	"bookbind/internal/tags"
	"bookbind/internal/track"
	"bookbind/internal/transcode"
)

// staleWorkDirAge is how long a staging work directory may linger before a
// later run reclaims it. Crashed runs cannot remove their own directories.
const staleWorkDirAge = 24 * time.Hour

// Request describes one book to bind.
type Request struct {
	SourceDir  string
	OutputPath string
	Title      string
	Author     string
	ISBN       string
}

// Summary reports the outcome of a completed bind.
type Summary struct {
	RunID        string
	OutputPath   string
	BookTitle    string
	TrackCount   int
	ChapterCount int
}

// Binder converts chapter track folders into bound audiobooks.
type Binder struct {
	cfg      *config.Config
	client   ffmpeg.Client
	probe    chapters.ProbeFunc
	resolver *metadata.Resolver
	store    *ledger.Store
	logger   *slog.Logger
}

// Option configures a Binder.
type Option func(*Binder)

// WithFFmpegClient overrides the ffmpeg client, primarily for tests.
func WithFFmpegClient(client ffmpeg.Client) Option {
	return func(b *Binder) {
		if client != nil {
			b.client = client
		}
	}
}

// WithProbe overrides the duration probe, primarily for tests.
func WithProbe(probe chapters.ProbeFunc) Option {
	return func(b *Binder) {
		if probe != nil {
			b.probe = probe
		}
	}
}

// WithResolver overrides the metadata resolver.
func WithResolver(resolver *metadata.Resolver) Option {
	return func(b *Binder) {
		if resolver != nil {
			b.resolver = resolver
		}
	}
}

// WithStore wires a run ledger. Without one, history is not recorded.
func WithStore(store *ledger.Store) Option {
	return func(b *Binder) {
		b.store = store
	}
}

// WithLogger attaches a logger to the binder.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Binder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// New creates a binder for the given config.
func New(cfg *config.Config, opts ...Option) (*Binder, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "binder", "new", "Configuration is required", nil)
	}

	binder := &Binder{
		cfg:    cfg,
		client: ffmpeg.NewCLI(ffmpeg.WithBinary(cfg.FFmpegBinary())),
		logger: logging.NewNop(),
	}
	binder.probe = func(ctx context.Context, path string) (float64, error) {
		result, err := ffprobe.Inspect(ctx, cfg.FFprobeBinary(), path)
		if err != nil {
			return 0, err
		}
		return result.DurationSeconds(), nil
	}
	for _, opt := range opts {
		opt(binder)
	}
	if binder.resolver == nil {
		resolver, err := resolverFromConfig(cfg, binder.logger)
		if err != nil {
			return nil, err
		}
		binder.resolver = resolver
	}
	return binder, nil
}

// resolverFromConfig builds the metadata resolver matching the configured
// lookup source.
func resolverFromConfig(cfg *config.Config, logger *slog.Logger) (*metadata.Resolver, error) {
	timeout := cfg.Metadata.RequestTimeoutDuration()
	opts := []metadata.ResolverOption{metadata.WithLogger(logger)}

	switch cfg.Metadata.Source {
	case config.MetadataSourceOpenLibrary:
		client, err := openlibrary.New(
			cfg.Metadata.OpenLibraryBaseURL,
			cfg.Metadata.CoversBaseURL,
			openlibrary.WithTimeout(timeout),
		)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "binder", "metadata client", "Invalid Open Library configuration", err)
		}
		opts = append(opts, metadata.WithLookup(metadata.NewOpenLibraryLookup(client)))
	case config.MetadataSourceGoogleBooks:
		client, err := googlebooks.New(
			cfg.Metadata.GoogleBooksBaseURL,
			googlebooks.WithAPIKey(cfg.Metadata.GoogleBooksAPIKey),
			googlebooks.WithTimeout(timeout),
		)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "binder", "metadata client", "Invalid Google Books configuration", err)
		}
		opts = append(opts, metadata.WithLookup(metadata.NewGoogleBooksLookup(client)))
	case config.MetadataSourceNone:
	default:
		return nil, services.Wrap(services.ErrConfiguration, "binder", "metadata client",
			fmt.Sprintf("Unknown metadata source %q", cfg.Metadata.Source), nil)
	}
	return metadata.NewResolver(opts...), nil
}

// DefaultOutputPath returns the output file placed beside the source folder
// and named after it.
func DefaultOutputPath(sourceDir string) string {
	cleaned := filepath.Clean(sourceDir)
	return cleaned + ".m4b"
}

// Bind converts one folder of chapter tracks into a bound audiobook. The
// staging work directory is removed on every exit path; only the final
// output and any cover art saved beside the source tracks survive.
func (b *Binder) Bind(ctx context.Context, req Request) (*Summary, error) {
	sourceDir := filepath.Clean(strings.TrimSpace(req.SourceDir))
	if sourceDir == "" || sourceDir == "." {
		return nil, services.Wrap(services.ErrValidation, "binder", "validate", "Source directory is required", nil)
	}
	info, err := os.Stat(sourceDir)
	if err != nil || !info.IsDir() {
		return nil, services.Wrap(services.ErrValidation, "binder", "validate",
			fmt.Sprintf("Source directory %s does not exist", sourceDir), err)
	}

	tracks, err := track.Discover(sourceDir, b.cfg.Transcode.Extension)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "binder", "discover tracks",
			fmt.Sprintf("Could not read %s", sourceDir), err)
	}
	if len(tracks) == 0 {
		return nil, services.Wrap(services.ErrValidation, "binder", "discover tracks",
			fmt.Sprintf("No %s tracks found in %s", b.cfg.Transcode.Extension, sourceDir), nil)
	}

	outputPath := strings.TrimSpace(req.OutputPath)
	if outputPath == "" {
		outputPath = DefaultOutputPath(sourceDir)
	}

	if err := b.cfg.EnsureDirectories(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "binder", "prepare staging", "Could not create working directories", err)
	}

	lock := flock.New(filepath.Join(b.cfg.Paths.StagingDir, "bookbind.lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "binder", "acquire lock", "Could not acquire staging lock", err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrTransient, "binder", "acquire lock", "Another bind is already running", nil)
	}
	defer func() { _ = lock.Unlock() }()

	staging.CleanStale(b.cfg.Paths.StagingDir, staleWorkDirAge, b.logger)

	runID := uuid.NewString()
	logger := b.logger.With(logging.String(logging.FieldRunID, runID), logging.String("book", sourceDir))

	workDir := filepath.Join(b.cfg.Paths.StagingDir, runID)
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "binder", "prepare staging", "Could not create work directory", err)
	}
	defer func() {
		if removeErr := os.RemoveAll(workDir); removeErr != nil {
			logger.Warn("could not remove work directory", logging.Error(removeErr))
		}
	}()

	run := b.startRun(ctx, runID, sourceDir, len(tracks), logger)

	summary, err := b.bind(ctx, req, sourceDir, outputPath, workDir, tracks, runID, logger)
	b.finishRun(ctx, run, summary, err, logger)
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func (b *Binder) bind(ctx context.Context, req Request, sourceDir, outputPath, workDir string, tracks []track.Track, runID string, logger *slog.Logger) (*Summary, error) {
	logger.Info("binding book",
		logging.Int("tracks", len(tracks)),
		logging.String("output", outputPath))

	transcoder := transcode.New(b.client,
		transcode.WithCodec(b.cfg.Transcode.Codec),
		transcode.WithWorkers(b.cfg.Transcode.Workers),
		transcode.WithLogger(logger))
	results := transcoder.Run(ctx, tracks, workDir)
	if err := ctx.Err(); err != nil {
		return nil, services.Wrap(services.ErrTransient, "binder", "transcode", "Bind canceled", err)
	}
	successful := transcode.Successful(results)
	if len(successful) == 0 {
		return nil, services.Wrap(services.ErrExternalTool, "binder", "transcode",
			"Every track failed to transcode", nil)
	}
	if dropped := len(results) - len(successful); dropped > 0 {
		logger.Warn("continuing without failed tracks", logging.Int("dropped", dropped))
	}

	outputs := transcode.OutputPaths(successful)
	sourceFor := make(map[string]string, len(successful))
	for _, result := range successful {
		sourceFor[result.OutputPath] = result.Track.Path
	}

	builder := chapters.NewBuilder(b.probe,
		chapters.WithLogger(logger),
		chapters.WithTitleFunc(func(ctx context.Context, path string) string {
			source, ok := sourceFor[path]
			if !ok {
				return ""
			}
			embedded, err := tags.Read(ctx, source)
			if err != nil {
				return ""
			}
			return embedded.Title
		}))
	entries := builder.Build(ctx, outputs)

	book := b.resolver.Resolve(ctx, metadata.Query{
		Title:      req.Title,
		Author:     req.Author,
		ISBN:       req.ISBN,
		Folder:     sourceDir,
		FirstTrack: tracks[0].Path,
	}, sourceDir)

	descriptorPath := filepath.Join(workDir, "ffmetadata.txt")
	global := &chapters.GlobalTags{
		Title:     book.Title,
		Authors:   book.Authors,
		Publisher: book.Publisher,
	}
	if err := chapters.WriteDescriptor(descriptorPath, global, entries); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "binder", "write chapters", "Could not write chapter descriptor", err)
	}

	manifestPath := filepath.Join(workDir, "tracks.txt")
	if err := concat.WriteManifest(manifestPath, outputs); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "binder", "write manifest", "Could not write concat manifest", err)
	}

	mergedPath := filepath.Join(workDir, "book.m4b")
	mergeReq := ffmpeg.MergeRequest{
		ConcatManifest: manifestPath,
		ChapterFile:    descriptorPath,
		CoverPath:      book.CoverPath,
		OutputPath:     mergedPath,
	}
	if err := b.client.Merge(ctx, mergeReq); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "binder", "merge", "ffmpeg merge failed", err)
	}

	if err := fileutil.MoveFile(mergedPath, outputPath); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "binder", "place output",
			fmt.Sprintf("Could not move bound book to %s", outputPath), err)
	}

	logger.Info("book bound",
		logging.String("title", book.Title),
		logging.Int("chapters", len(entries)),
		logging.String("output", outputPath))

	return &Summary{
		RunID:        runID,
		OutputPath:   outputPath,
		BookTitle:    book.Title,
		TrackCount:   len(successful),
		ChapterCount: len(entries),
	}, nil
}

func (b *Binder) startRun(ctx context.Context, runID, sourceDir string, trackCount int, logger *slog.Logger) *ledger.Run {
	if b.store == nil {
		return nil
	}
	run, err := b.store.NewRun(ctx, runID, sourceDir)
	if err != nil {
		logger.Warn("could not record run", logging.Error(err))
		return nil
	}
	run.Status = ledger.StatusBinding
	run.TrackCount = trackCount
	if err := b.store.Update(ctx, run); err != nil {
		logger.Warn("could not update run", logging.Error(err))
	}
	return run
}

func (b *Binder) finishRun(ctx context.Context, run *ledger.Run, summary *Summary, bindErr error, logger *slog.Logger) {
	if b.store == nil || run == nil {
		return
	}
	if bindErr != nil {
		run.Status = ledger.StatusFailed
		run.ErrorMessage = bindErr.Error()
	} else {
		run.Status = ledger.StatusCompleted
		run.OutputPath = summary.OutputPath
		run.BookTitle = summary.BookTitle
		run.TrackCount = summary.TrackCount
		run.ChapterCount = summary.ChapterCount
	}
	if err := b.store.Update(ctx, run); err != nil {
		logger.Warn("could not update run", logging.Error(err))
	}
}
