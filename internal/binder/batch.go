package binder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"bookbind/internal/logging"
	"bookbind/internal/services"
	"bookbind/internal/track"
)

// BatchRequest describes a multiple-book run over the subfolders of a root
// directory.
type BatchRequest struct {
	RootDir   string
	OutputDir string
}

// BookResult reports the outcome of one book within a batch.
type BookResult struct {
	SourceDir string
	Summary   *Summary
	Err       error
}

// BatchSummary aggregates a multiple-book run.
type BatchSummary struct {
	Books   []BookResult
	Skipped []string
}

// Failed returns the number of books that failed to bind.
func (s *BatchSummary) Failed() int {
	failed := 0
	for _, book := range s.Books {
		if book.Err != nil {
			failed++
		}
	}
	return failed
}

// BindAll binds every subfolder of the root directory as its own book.
// Subfolders without tracks are skipped with a warning; a failing book does
// not stop the rest of the batch.
func (b *Binder) BindAll(ctx context.Context, req BatchRequest) (*BatchSummary, error) {
	rootDir := filepath.Clean(strings.TrimSpace(req.RootDir))
	if rootDir == "" || rootDir == "." {
		return nil, services.Wrap(services.ErrValidation, "binder", "validate", "Root directory is required", nil)
	}
	entries, err := os.ReadDir(rootDir)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "binder", "enumerate books",
			fmt.Sprintf("Could not read %s", rootDir), err)
	}

	var subdirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			subdirs = append(subdirs, filepath.Join(rootDir, entry.Name()))
		}
	}
	sort.Strings(subdirs)
	if len(subdirs) == 0 {
		return nil, services.Wrap(services.ErrValidation, "binder", "enumerate books",
			fmt.Sprintf("No book folders found in %s", rootDir), nil)
	}

	summary := &BatchSummary{}
	for _, sourceDir := range subdirs {
		if err := ctx.Err(); err != nil {
			return summary, services.Wrap(services.ErrTransient, "binder", "batch", "Batch canceled", err)
		}

		tracks, err := track.Discover(sourceDir, b.cfg.Transcode.Extension)
		if err == nil && len(tracks) == 0 {
			b.logger.Warn("skipping folder without tracks",
				logging.String("book", sourceDir),
				logging.String("extension", b.cfg.Transcode.Extension))
			summary.Skipped = append(summary.Skipped, sourceDir)
			continue
		}

		bookReq := Request{SourceDir: sourceDir}
		if req.OutputDir != "" {
			bookReq.OutputPath = filepath.Join(req.OutputDir, filepath.Base(sourceDir)+".m4b")
		}

		bookSummary, bindErr := b.Bind(ctx, bookReq)
		if bindErr != nil {
			b.logger.Error("book failed",
				logging.String("book", sourceDir), logging.Error(bindErr))
		}
		summary.Books = append(summary.Books, BookResult{
			SourceDir: sourceDir,
			Summary:   bookSummary,
			Err:       bindErr,
		})
	}
	return summary, nil
}
