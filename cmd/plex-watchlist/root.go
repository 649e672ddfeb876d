package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// flagKeys maps command line flags to configuration keys
var flagKeys = map[string]string{
	"baseurl":       "PLEX_URL",
	"token":         "PLEX_TOKEN",
	"account-token": "PLEX_ACCOUNT_TOKEN",
	"dry-run":       "DRY_RUN",
	"debug":         "DEBUG",
	"types":         "WATCHLIST_TYPES",
	"show-remove":   "SHOW_REMOVE",
	"limit":         "LIMIT",
	"workers":       "WORKERS",
	"only-username": "ONLY_USERNAME",
	"port":          "SERVER_PORT",
	"schedule":      "SWEEP_SCHEDULE",
}

// normalizeFlagName makes --rating_key and --rating-key equivalent
func normalizeFlagName(f *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

func newRootCommand() *cobra.Command {
	var configFlag string

	rootCmd := &cobra.Command{
		Use:           "plex-watchlist",
		Short:         "Remove watched movies and shows from your Plex watchlist",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	rootCmd.SetGlobalNormalizationFunc(normalizeFlagName)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFlag, "config", "", "Configuration file path")
	flags.String("baseurl", "", "Plex Media Server URL, e.g. http://127.0.0.1:32400")
	flags.String("token", "", "Plex Media Server token")
	flags.String("account-token", "", "Plex account token for the watchlist (defaults to --token)")
	flags.Bool("dry-run", false, "Show what would be removed without removing it")
	flags.Bool("debug", false, "Enable debug logging")

	rootCmd.AddCommand(newSweepCommand(&configFlag))
	rootCmd.AddCommand(newEventCommand(&configFlag))
	rootCmd.AddCommand(newDaemonCommand(&configFlag))

	return rootCmd
}

// bindFlags binds every known flag of cmd to its configuration key.
// Flags left unset fall back to the environment, .env and config file.
func bindFlags(cmd *cobra.Command) error {
	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok || bindErr != nil {
			return
		}
		bindErr = viper.BindPFlag(key, f)
	})
	return bindErr
}
