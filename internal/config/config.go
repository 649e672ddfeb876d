package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cenodude/plex-watchlist/internal/models"
	"github.com/google/uuid"
	"github.com/spf13/viper"
)

const (
	DefaultDiscoverURL = "https://discover.provider.plex.tv"
	DefaultMetadataURL = "https://metadata.provider.plex.tv"
	DefaultPlexTVURL   = "https://plex.tv"
)

// Config holds all application configuration
type Config struct {
	// Plex Media Server
	PlexURL   string
	PlexToken string

	// Plex account (watchlist owner)
	AccountToken string
	ClientID     string // X-Plex-Client-Identifier

	// Provider hosts
	DiscoverURL string
	MetadataURL string
	PlexTVURL   string

	// Sweep
	Types        []models.MediaKind
	ShowRemove   models.RemovalPolicy
	DryRun       bool
	Limit        int
	Workers      int
	OnlyUsername string // event mode: only act for this user

	// Daemon
	SweepSchedule string
	ServerPort    string

	// Paths
	ConfigDir string
	KeepFile  string // $CONFIG_DIR/keep.txt
	LockFile  string // $CONFIG_DIR/sweep.lock

	// Logging
	Debug    bool
	LogLevel string
	LogFile  string
}

// Load loads configuration from a config file, environment variables and .env file
// using the global viper instance. Flags must be bound before calling Load.
func Load(configFile string) (*Config, error) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	} else {
		viper.SetConfigName(".env")
		viper.SetConfigType("env")
		viper.AddConfigPath(".")
		// Load .env file if it exists (ignore if not found)
		_ = viper.ReadInConfig()
	}
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("WATCHLIST_TYPES", "movie,show")
	viper.SetDefault("SHOW_REMOVE", string(models.PolicyOnStart))
	viper.SetDefault("WORKERS", 1)
	viper.SetDefault("SWEEP_SCHEDULE", "0 */6 * * *")
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DISCOVER_URL", DefaultDiscoverURL)
	viper.SetDefault("METADATA_URL", DefaultMetadataURL)
	viper.SetDefault("PLEXTV_URL", DefaultPlexTVURL)

	configDir, err := resolveConfigDir(viper.GetString("CONFIG_DIR"))
	if err != nil {
		return nil, err
	}

	// Create config directory if it doesn't exist
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	config := &Config{
		PlexURL:   strings.TrimRight(strings.TrimSpace(viper.GetString("PLEX_URL")), "/"),
		PlexToken: strings.TrimSpace(viper.GetString("PLEX_TOKEN")),

		AccountToken: strings.TrimSpace(viper.GetString("PLEX_ACCOUNT_TOKEN")),
		ClientID:     strings.TrimSpace(viper.GetString("PLEX_CLIENT_ID")),

		DiscoverURL: strings.TrimRight(viper.GetString("DISCOVER_URL"), "/"),
		MetadataURL: strings.TrimRight(viper.GetString("METADATA_URL"), "/"),
		PlexTVURL:   strings.TrimRight(viper.GetString("PLEXTV_URL"), "/"),

		DryRun:       viper.GetBool("DRY_RUN"),
		Limit:        viper.GetInt("LIMIT"),
		Workers:      viper.GetInt("WORKERS"),
		OnlyUsername: strings.TrimSpace(viper.GetString("ONLY_USERNAME")),

		SweepSchedule: viper.GetString("SWEEP_SCHEDULE"),
		ServerPort:    viper.GetString("SERVER_PORT"),

		ConfigDir: configDir,
		KeepFile:  viper.GetString("KEEP_FILE"),
		LockFile:  filepath.Join(configDir, "sweep.lock"),

		Debug:    viper.GetBool("DEBUG"),
		LogLevel: viper.GetString("LOG_LEVEL"),
		LogFile:  viper.GetString("LOG_FILE"),
	}

	if config.KeepFile == "" {
		config.KeepFile = filepath.Join(configDir, "keep.txt")
	}
	if config.AccountToken == "" {
		config.AccountToken = config.PlexToken
	}
	if config.ClientID == "" {
		config.ClientID = "plex-watchlist-" + uuid.NewString()
	}
	if config.Debug {
		config.LogLevel = "debug"
	}
	if config.Workers < 1 {
		config.Workers = 1
	}
	if config.Limit < 0 {
		config.Limit = 0
	}

	types, err := parseTypes(viper.GetString("WATCHLIST_TYPES"))
	if err != nil {
		return nil, err
	}
	config.Types = types

	policy, ok := models.ParseRemovalPolicy(viper.GetString("SHOW_REMOVE"))
	if !ok {
		return nil, fmt.Errorf("SHOW_REMOVE must be %q or %q, got %q",
			models.PolicyOnStart, models.PolicyOnComplete, viper.GetString("SHOW_REMOVE"))
	}
	config.ShowRemove = policy

	// Validate required fields
	if config.PlexURL == "" {
		return nil, fmt.Errorf("PLEX_URL is required")
	}
	if config.PlexToken == "" {
		return nil, fmt.Errorf("PLEX_TOKEN is required")
	}

	return config, nil
}

func resolveConfigDir(configDir string) (string, error) {
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(homeDir, ".config", "plex-watchlist"), nil
	}

	// Convert relative path to absolute path
	absPath, err := filepath.Abs(configDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path for CONFIG_DIR: %w", err)
	}
	return absPath, nil
}

// parseTypes parses a comma separated list of "movie" and "show"
func parseTypes(raw string) ([]models.MediaKind, error) {
	var types []models.MediaKind
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kind := models.ParseMediaKind(part)
		if kind != models.MediaKindMovie && kind != models.MediaKindShow {
			return nil, fmt.Errorf("WATCHLIST_TYPES: unsupported type %q (use movie, show)", part)
		}
		types = append(types, kind)
	}
	if len(types) == 0 {
		return nil, fmt.Errorf("WATCHLIST_TYPES must contain at least one of movie, show")
	}
	return types, nil
}
