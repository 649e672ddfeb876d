package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/cenodude/plex-watchlist/internal/models"
	"github.com/cenodude/plex-watchlist/internal/utils"
	"github.com/spf13/cobra"
)

func newSweepCommand(configFlag *string) *cobra.Command {
	var showTable bool

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Remove every watched item from the watchlist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApplication(*configFlag)
			if err != nil {
				return err
			}

			lock := utils.NewRunLock(app.cfg.LockFile)
			if err := lock.TryLock(); err != nil {
				return err
			}
			defer lock.Unlock()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runSweep(ctx, app, cmd.OutOrStdout(), showTable)
		},
	}

	flags := cmd.Flags()
	flags.String("types", "", "Comma separated watchlist types to handle: movie,show")
	flags.String("show-remove", "", "When a show counts as watched: started or completed")
	flags.Int("limit", 0, "Only process the first N watchlist entries")
	flags.Int("workers", 0, "Number of entries processed in parallel")
	flags.BoolVar(&showTable, "table", false, "Print a table of every processed entry")

	return cmd
}

func runSweep(ctx context.Context, app *application, out io.Writer, showTable bool) error {
	if err := app.connect(ctx); err != nil {
		return err
	}

	summary, err := app.reconcile.Sweep(ctx)
	if err != nil {
		return err
	}

	if showTable && len(summary.Results) > 0 {
		fmt.Fprintln(out, renderSummaryTable(summary))
	}
	fmt.Fprintln(out, summaryLine(summary))
	return nil
}

func summaryLine(s *models.Summary) string {
	return fmt.Sprintf("Summary: removed=%d skipped=%d unmatched=%d failed=%d (total=%d)",
		s.Removed, s.Skipped, s.Unmatched, s.Failed, s.Total)
}
