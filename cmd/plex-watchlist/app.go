package main

import (
	"context"
	"fmt"

	"github.com/cenodude/plex-watchlist/internal/config"
	"github.com/cenodude/plex-watchlist/internal/controllers"
	"github.com/cenodude/plex-watchlist/internal/services/discover"
	"github.com/cenodude/plex-watchlist/internal/services/plex"
	"github.com/cenodude/plex-watchlist/internal/utils"
	"github.com/sirupsen/logrus"
)

// application holds everything a command needs
type application struct {
	cfg       *config.Config
	logger    *logrus.Logger
	plex      *plex.Client
	discover  *discover.Client
	reconcile *controllers.ReconcileController
}

// newApplication loads configuration and wires clients and controllers
func newApplication(configFile string) (*application, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := utils.NewLogger(cfg.LogLevel, cfg.LogFile)
	logger.WithField("config_dir", cfg.ConfigDir).Debug("Configuration loaded")

	keep, err := utils.LoadKeepList(cfg.KeepFile)
	if err != nil {
		logger.WithError(err).Warn("Failed to load keep list, continuing without it")
		keep, _ = utils.LoadKeepList("")
	} else if keep.Len() > 0 {
		logger.WithField("entries", keep.Len()).Info("Keep list loaded")
	}

	plexClient, err := plex.NewClient(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Plex client: %w", err)
	}

	discoverClient, err := discover.NewClient(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize watchlist client: %w", err)
	}

	reconcile := controllers.NewReconcileController(discoverClient, plexClient, keep, controllers.SettingsFromConfig(cfg), logger)

	return &application{
		cfg:       cfg,
		logger:    logger,
		plex:      plexClient,
		discover:  discoverClient,
		reconcile: reconcile,
	}, nil
}

// connect checks the local server and logs which account owns the watchlist
func (a *application) connect(ctx context.Context) error {
	if err := a.plex.Ping(ctx); err != nil {
		return err
	}
	a.logger.WithField("url", a.cfg.PlexURL).Info("Connected to Plex")

	if a.logger.IsLevelEnabled(logrus.DebugLevel) {
		username, err := a.discover.Username(ctx)
		if err != nil {
			a.logger.WithError(err).Debug("Could not resolve plex.tv username")
		} else {
			a.logger.WithField("username", username).Debug("Acting as plex.tv user")
		}
	}
	return nil
}
