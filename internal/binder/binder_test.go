package binder_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"bookbind/internal/binder"
	"bookbind/internal/ledger"
	"bookbind/internal/media/ffmpeg"
	"bookbind/internal/metadata"
	"bookbind/internal/services"
	"bookbind/internal/testsupport"
)

type fakeClient struct {
	mu         sync.Mutex
	transcodes []string
	merges     []ffmpeg.MergeRequest
	failInputs map[string]bool
	mergeErr   error
}

func (f *fakeClient) Transcode(_ context.Context, inputPath, outputPath, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failInputs[filepath.Base(inputPath)] {
		return errors.New("encode blew up")
	}
	f.transcodes = append(f.transcodes, inputPath)
	return os.WriteFile(outputPath, []byte("m4a"), 0o644)
}

func (f *fakeClient) Merge(_ context.Context, req ffmpeg.MergeRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.merges = append(f.merges, req)
	if f.mergeErr != nil {
		return f.mergeErr
	}
	return os.WriteFile(req.OutputPath, []byte("m4b"), 0o644)
}

func fixedProbe(seconds float64) func(context.Context, string) (float64, error) {
	return func(context.Context, string) (float64, error) { return seconds, nil }
}

func newTestBinder(t *testing.T, client *fakeClient, opts ...binder.Option) *binder.Binder {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	all := append([]binder.Option{
		binder.WithFFmpegClient(client),
		binder.WithProbe(fixedProbe(10)),
	}, opts...)
	b, err := binder.New(cfg, all...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return b
}

func TestBindProducesOutputAndCleansStaging(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	client := &fakeClient{}
	b, err := binder.New(cfg,
		binder.WithFFmpegClient(client),
		binder.WithProbe(fixedProbe(10)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	sourceDir := filepath.Join(t.TempDir(), "the_stand")
	testsupport.WriteTracks(t, sourceDir, ".mp3", 3)

	summary, err := b.Bind(context.Background(), binder.Request{SourceDir: sourceDir})
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}

	wantOutput := sourceDir + ".m4b"
	if summary.OutputPath != wantOutput {
		t.Errorf("output = %q, want %q", summary.OutputPath, wantOutput)
	}
	if _, err := os.Stat(wantOutput); err != nil {
		t.Errorf("output missing: %v", err)
	}
	if summary.TrackCount != 3 || summary.ChapterCount != 3 {
		t.Errorf("counts = %d/%d", summary.TrackCount, summary.ChapterCount)
	}
	if summary.BookTitle != "The Stand" {
		t.Errorf("title = %q", summary.BookTitle)
	}

	entries, err := os.ReadDir(cfg.Paths.StagingDir)
	if err != nil {
		t.Fatalf("read staging: %v", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			t.Errorf("staging leftover: %s", entry.Name())
		}
	}
}

func TestBindRejectsMissingSource(t *testing.T) {
	b := newTestBinder(t, &fakeClient{})
	_, err := b.Bind(context.Background(), binder.Request{SourceDir: filepath.Join(t.TempDir(), "nope")})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestBindRejectsEmptyFolder(t *testing.T) {
	b := newTestBinder(t, &fakeClient{})
	_, err := b.Bind(context.Background(), binder.Request{SourceDir: t.TempDir()})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestBindContinuesAfterTrackFailure(t *testing.T) {
	client := &fakeClient{failInputs: map[string]bool{"02.mp3": true}}
	b := newTestBinder(t, client)

	sourceDir := filepath.Join(t.TempDir(), "dune")
	testsupport.WriteTracks(t, sourceDir, ".mp3", 3)

	summary, err := b.Bind(context.Background(), binder.Request{SourceDir: sourceDir})
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if summary.TrackCount != 2 || summary.ChapterCount != 2 {
		t.Errorf("counts = %d/%d, want 2/2", summary.TrackCount, summary.ChapterCount)
	}
}

func TestBindFailsWhenEveryTrackFails(t *testing.T) {
	client := &fakeClient{failInputs: map[string]bool{"01.mp3": true, "02.mp3": true}}
	b := newTestBinder(t, client)

	sourceDir := filepath.Join(t.TempDir(), "dune")
	testsupport.WriteTracks(t, sourceDir, ".mp3", 2)

	_, err := b.Bind(context.Background(), binder.Request{SourceDir: sourceDir})
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("err = %v, want external tool error", err)
	}
}

func TestBindCleansStagingOnMergeFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	client := &fakeClient{mergeErr: errors.New("merge blew up")}
	b, err := binder.New(cfg,
		binder.WithFFmpegClient(client),
		binder.WithProbe(fixedProbe(10)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	sourceDir := filepath.Join(t.TempDir(), "dune")
	testsupport.WriteTracks(t, sourceDir, ".mp3", 2)

	_, err = b.Bind(context.Background(), binder.Request{SourceDir: sourceDir})
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("err = %v, want external tool error", err)
	}

	entries, err := os.ReadDir(cfg.Paths.StagingDir)
	if err != nil {
		t.Fatalf("read staging: %v", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			t.Errorf("staging leftover: %s", entry.Name())
		}
	}
	if _, err := os.Stat(sourceDir + ".m4b"); !os.IsNotExist(err) {
		t.Error("no output should exist after merge failure")
	}
}

func TestBindRespectsExplicitOutputPath(t *testing.T) {
	b := newTestBinder(t, &fakeClient{})

	sourceDir := filepath.Join(t.TempDir(), "dune")
	testsupport.WriteTracks(t, sourceDir, ".mp3", 1)
	outputPath := filepath.Join(t.TempDir(), "out", "Dune.m4b")

	summary, err := b.Bind(context.Background(), binder.Request{
		SourceDir:  sourceDir,
		OutputPath: outputPath,
	})
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if summary.OutputPath != outputPath {
		t.Errorf("output = %q", summary.OutputPath)
	}
	if _, err := os.Stat(outputPath); err != nil {
		t.Errorf("output missing: %v", err)
	}
}

type captureLookup struct {
	mu      sync.Mutex
	destDir string
}

func (c *captureLookup) Find(_ context.Context, _ metadata.Query, destDir string) (*metadata.Book, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.destDir = destDir
	return nil, nil
}

func TestBindFetchesCoverBesideSourceTracks(t *testing.T) {
	lookup := &captureLookup{}
	resolver := metadata.NewResolver(metadata.WithLookup(lookup))
	b := newTestBinder(t, &fakeClient{}, binder.WithResolver(resolver))

	sourceDir := filepath.Join(t.TempDir(), "dune")
	testsupport.WriteTracks(t, sourceDir, ".mp3", 1)
	outputPath := filepath.Join(t.TempDir(), "out", "Dune.m4b")

	if _, err := b.Bind(context.Background(), binder.Request{
		SourceDir:  sourceDir,
		OutputPath: outputPath,
	}); err != nil {
		t.Fatalf("Bind: %v", err)
	}

	if lookup.destDir != sourceDir {
		t.Errorf("cover destination = %q, want source dir %q", lookup.destDir, sourceDir)
	}
}

func TestBindRecordsLedgerRuns(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := ledger.Open(cfg)
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	b, err := binder.New(cfg,
		binder.WithFFmpegClient(&fakeClient{}),
		binder.WithProbe(fixedProbe(10)),
		binder.WithStore(store))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	sourceDir := filepath.Join(t.TempDir(), "dune")
	testsupport.WriteTracks(t, sourceDir, ".mp3", 2)

	summary, err := b.Bind(context.Background(), binder.Request{SourceDir: sourceDir})
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}

	run, err := store.FindByRunID(context.Background(), summary.RunID)
	if err != nil {
		t.Fatalf("FindByRunID: %v", err)
	}
	if run == nil {
		t.Fatal("run not recorded")
	}
	if run.Status != ledger.StatusCompleted {
		t.Errorf("status = %q", run.Status)
	}
	if run.OutputPath != summary.OutputPath || run.ChapterCount != 2 {
		t.Errorf("run = %+v", run)
	}
}

func TestBindRecordsFailedRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := ledger.Open(cfg)
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	b, err := binder.New(cfg,
		binder.WithFFmpegClient(&fakeClient{mergeErr: errors.New("merge blew up")}),
		binder.WithProbe(fixedProbe(10)),
		binder.WithStore(store))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	sourceDir := filepath.Join(t.TempDir(), "dune")
	testsupport.WriteTracks(t, sourceDir, ".mp3", 1)

	if _, err := b.Bind(context.Background(), binder.Request{SourceDir: sourceDir}); err == nil {
		t.Fatal("expected bind failure")
	}

	runs, err := store.Recent(context.Background(), 1)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("len = %d", len(runs))
	}
	if runs[0].Status != ledger.StatusFailed {
		t.Errorf("status = %q", runs[0].Status)
	}
	if runs[0].ErrorMessage == "" {
		t.Error("expected error message on failed run")
	}
}

func TestDefaultOutputPath(t *testing.T) {
	if got := binder.DefaultOutputPath("/books/dune/"); got != "/books/dune.m4b" {
		t.Errorf("got %q", got)
	}
}
