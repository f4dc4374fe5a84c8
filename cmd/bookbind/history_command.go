package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"bookbind/internal/ledger"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var clear bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past binding runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ledger.Open(cfg)
			if err != nil {
				return fmt.Errorf("open ledger: %w", err)
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if clear {
				removed, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Removed %d run(s) from history\n", removed)
				return nil
			}

			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No binding runs recorded")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				detail := run.OutputPath
				if run.Status == ledger.StatusFailed {
					detail = run.ErrorMessage
				}
				rows = append(rows, []string{
					run.CreatedAt.Local().Format(time.DateTime),
					run.BookTitle,
					string(run.Status),
					strconv.Itoa(run.ChapterCount),
					detail,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"When", "Title", "Status", "Chapters", "Detail"},
				rows,
				4,
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show (0 for all)")
	cmd.Flags().BoolVar(&clear, "clear", false, "Remove all recorded runs")
	return cmd
}
