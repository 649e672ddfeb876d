package controllers

import (
	"context"
	"errors"

	"github.com/cenodude/plex-watchlist/internal/metrics"
	"github.com/cenodude/plex-watchlist/internal/models"
	"github.com/cenodude/plex-watchlist/internal/services/discover"
	"github.com/cenodude/plex-watchlist/internal/utils"
	"github.com/sirupsen/logrus"
)

// RemovalDriver removes items from the watchlist, trying every discover call
// shape in order before falling back to the item API
type RemovalDriver struct {
	provider Provider
	logger   *logrus.Logger
}

// NewRemovalDriver creates a new removal driver
func NewRemovalDriver(provider Provider, logger *logrus.Logger) *RemovalDriver {
	return &RemovalDriver{
		provider: provider,
		logger:   logger,
	}
}

// Remove removes the item from the watchlist
func (d *RemovalDriver) Remove(ctx context.Context, item models.LocalItem) models.RemovalOutcome {
	outcome := d.remove(ctx, item)
	metrics.RemovalOutcomesTotal.WithLabelValues(string(outcome)).Inc()
	return outcome
}

func (d *RemovalDriver) remove(ctx context.Context, item models.LocalItem) models.RemovalOutcome {
	log := d.logger.WithField("title", item.Title)

	variants := utils.GUIDVariants(item.GUID, item.AlternateGUIDs...)
	rawID := utils.RawIDFor(item.GUID, variants)
	attempts := discover.RemovalAttempts(rawID, variants)

	log.WithFields(logrus.Fields{
		"raw_id":   rawID,
		"variants": variants,
		"attempts": len(attempts),
	}).Debug("Removing from watchlist")

	if d.runAttempts(ctx, log, attempts) {
		return models.OutcomeRemoved
	}
	if ctx.Err() != nil {
		return models.OutcomeFailed
	}

	// Fallback: item API
	err := d.provider.RemoveItem(ctx, item)
	switch {
	case err == nil:
		log.Debug("Removed through item API")
		return models.OutcomeRemoved
	case errors.Is(err, models.ErrNotFound):
		log.WithError(err).Debug("Item API reports not on watchlist")
		return models.OutcomeAlreadyAbsent
	default:
		log.WithError(err).Debug("Item API removal failed")
		return models.OutcomeFailed
	}
}

// runAttempts executes the attempts in order and reports whether one succeeded.
// A 401/403 ends the sequence; the caller still falls back to the item API.
func (d *RemovalDriver) runAttempts(ctx context.Context, log *logrus.Entry, attempts []discover.AttemptSpec) bool {
	for _, spec := range attempts {
		if ctx.Err() != nil {
			return false
		}

		err := d.provider.Attempt(ctx, spec)
		if err == nil {
			metrics.RemovalAttemptsTotal.WithLabelValues(spec.Shape(), "success").Inc()
			log.WithField("shape", spec.Shape()).Debug("Removed through discover")
			return true
		}

		if errors.Is(err, models.ErrUnauthorized) {
			metrics.RemovalAttemptsTotal.WithLabelValues(spec.Shape(), "unauthorized").Inc()
			log.WithError(err).Warn("Discover rejected the account token, skipping remaining call shapes")
			return false
		}

		metrics.RemovalAttemptsTotal.WithLabelValues(spec.Shape(), "error").Inc()
		log.WithError(err).WithFields(logrus.Fields{
			"shape": spec.Shape(),
			"value": spec.Value,
		}).Debug("Discover removal attempt failed")
	}
	return false
}
