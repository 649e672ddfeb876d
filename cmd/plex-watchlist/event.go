package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cenodude/plex-watchlist/internal/controllers"
	"github.com/cenodude/plex-watchlist/internal/models"
	"github.com/spf13/cobra"
)

func newEventCommand(configFlag *string) *cobra.Command {
	var ev controllers.Event

	cmd := &cobra.Command{
		Use:   "event",
		Short: "Remove the item of a single playback event, e.g. from Tautulli",
		Args:  cobra.NoArgs,
		Long: `Remove the movie or show referenced by a playback event from the watchlist.
Episodes remove their show. Underscores in flag names are accepted, so a
Tautulli script can pass --rating_key {rating_key} --media_type {media_type}.
Boolean flags take their value with "=", e.g. --dry_run=0.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApplication(*configFlag)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			result, err := app.reconcile.HandleEvent(ctx, ev)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), eventLine(result))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&ev.RatingKey, "rating-key", "", "Rating key of the played item")
	flags.StringVar(&ev.MediaType, "media-type", "", "Media type: movie, episode or show")
	flags.StringVar(&ev.Title, "title", "", "Title, used for logging only")
	flags.StringVar(&ev.Username, "username", "", "User who played the item")
	flags.String("only-username", "", "Only act on events from this user")
	_ = cmd.MarkFlagRequired("rating-key")
	_ = cmd.MarkFlagRequired("media-type")

	return cmd
}

func eventLine(r *controllers.EventResult) string {
	switch r.Status {
	case models.EntryRemoved:
		return "Removed from watchlist: " + r.Target
	case models.EntryDryRun:
		return "Dry run, would remove from watchlist: " + r.Target
	case models.EntryFailed:
		return "Failed to remove from watchlist: " + r.Target
	default:
		if r.Target != "" {
			return fmt.Sprintf("Skipped %s: %s", r.Target, r.Reason)
		}
		return "Skipped: " + r.Reason
	}
}
