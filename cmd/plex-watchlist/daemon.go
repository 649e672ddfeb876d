package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cenodude/plex-watchlist/internal/api"
	"github.com/cenodude/plex-watchlist/internal/scheduler"
	"github.com/cenodude/plex-watchlist/internal/utils"
	"github.com/spf13/cobra"
)

func newDaemonCommand(configFlag *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run scheduled sweeps and serve the event webhook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApplication(*configFlag)
			if err != nil {
				return err
			}
			return runDaemon(cmd.Context(), app)
		},
	}

	flags := cmd.Flags()
	flags.String("port", "", "HTTP port (default 8080)")
	flags.String("schedule", "", "Cron schedule for sweeps (default \"0 */6 * * *\")")
	flags.String("only-username", "", "Only act on webhook events from this user")

	return cmd
}

func runDaemon(ctx context.Context, app *application) error {
	logger := app.logger
	logger.Info("Starting plex-watchlist daemon")

	if err := app.connect(ctx); err != nil {
		return err
	}

	lock := utils.NewRunLock(app.cfg.LockFile)
	sched := scheduler.NewScheduler(app.reconcile, lock, app.cfg.SweepSchedule, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	server := api.NewServer(app.cfg.ServerPort, app.cfg.SweepSchedule, app.reconcile, sched, app.plex, logger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	serverErrChan := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("plex-watchlist is running")

	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		logger.WithField("signal", sig).Info("Received shutdown signal")
		cancel()
		if err := server.Shutdown(context.Background()); err != nil {
			logger.WithError(err).Error("Error during server shutdown")
		}
	}

	logger.Info("plex-watchlist stopped")
	return nil
}
