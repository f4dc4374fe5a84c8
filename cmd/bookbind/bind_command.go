package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"bookbind/internal/binder"
	"bookbind/internal/ledger"
	"bookbind/internal/logging"
)

func newBindCommand(ctx *commandContext) *cobra.Command {
	var (
		outputPath     string
		outputDir      string
		mode           string
		metadataSource string
		title          string
		author         string
		isbn           string
		workers        int
	)

	cmd := &cobra.Command{
		Use:   "bind <folder>",
		Short: "Bind a folder of chapter tracks into an audiobook",
		Long: `Bind converts a folder of audio tracks into a single chaptered M4B.

In single mode the folder itself holds the tracks. In multiple mode each
subfolder of the given folder is bound as its own book.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if source := strings.TrimSpace(metadataSource); source != "" {
				cfg.Metadata.Source = source
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			if workers > 0 {
				cfg.Transcode.Workers = workers
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return err
			}

			store, err := ledger.Open(cfg)
			if err != nil {
				return fmt.Errorf("open ledger: %w", err)
			}
			defer store.Close()

			b, err := binder.New(cfg,
				binder.WithLogger(logger),
				binder.WithStore(store))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch strings.ToLower(strings.TrimSpace(mode)) {
			case "", "single":
				summary, err := b.Bind(cmd.Context(), binder.Request{
					SourceDir:  args[0],
					OutputPath: outputPath,
					Title:      title,
					Author:     author,
					ISBN:       isbn,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Bound %q (%d chapters) to %s\n",
					summary.BookTitle, summary.ChapterCount, summary.OutputPath)
				return nil
			case "multiple":
				summary, err := b.BindAll(cmd.Context(), binder.BatchRequest{
					RootDir:   args[0],
					OutputDir: outputDir,
				})
				if err != nil {
					return err
				}
				fmt.Fprintln(out, renderBatchSummary(summary))
				return nil
			default:
				return fmt.Errorf("unknown mode %q (expected single or multiple)", mode)
			}
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (single mode; defaults to <folder>.m4b)")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory for bound books (multiple mode)")
	cmd.Flags().StringVarP(&mode, "mode", "m", "single", "Bind mode: single or multiple")
	cmd.Flags().StringVar(&metadataSource, "metadata-source", "", "Metadata lookup source: openlibrary, googlebooks, or none")
	cmd.Flags().StringVar(&title, "title", "", "Book title override")
	cmd.Flags().StringVar(&author, "author", "", "Book author override")
	cmd.Flags().StringVar(&isbn, "isbn", "", "ISBN for metadata lookup")
	cmd.Flags().IntVar(&workers, "workers", 0, "Transcode worker count (defaults to CPU count)")
	return cmd
}

func renderBatchSummary(summary *binder.BatchSummary) string {
	rows := make([][]string, 0, len(summary.Books)+len(summary.Skipped))
	for _, book := range summary.Books {
		switch {
		case book.Err != nil:
			rows = append(rows, []string{book.SourceDir, "failed", book.Err.Error()})
		default:
			rows = append(rows, []string{
				book.SourceDir,
				"bound",
				fmt.Sprintf("%d chapters -> %s", book.Summary.ChapterCount, book.Summary.OutputPath),
			})
		}
	}
	for _, skipped := range summary.Skipped {
		rows = append(rows, []string{skipped, "skipped", "no tracks"})
	}
	return renderTable(
		[]string{"Book", "Status", "Detail"},
		rows,
	)
}
