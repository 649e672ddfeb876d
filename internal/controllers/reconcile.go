package controllers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cenodude/plex-watchlist/internal/config"
	"github.com/cenodude/plex-watchlist/internal/metrics"
	"github.com/cenodude/plex-watchlist/internal/models"
	"github.com/cenodude/plex-watchlist/internal/utils"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"
)

// ErrInvalidEvent is returned for events that cannot be parsed
var ErrInvalidEvent = errors.New("invalid event")

// Settings configures a ReconcileController
type Settings struct {
	Types        []models.MediaKind
	ShowRemove   models.RemovalPolicy
	DryRun       bool
	Limit        int
	Workers      int
	OnlyUsername string
}

// SettingsFromConfig extracts the reconcile settings from the configuration
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		Types:        cfg.Types,
		ShowRemove:   cfg.ShowRemove,
		DryRun:       cfg.DryRun,
		Limit:        cfg.Limit,
		Workers:      cfg.Workers,
		OnlyUsername: cfg.OnlyUsername,
	}
}

func (s Settings) wants(kind models.MediaKind) bool {
	for _, t := range s.Types {
		if t == kind {
			return true
		}
	}
	return false
}

// ReconcileController removes watched content from the Plex watchlist
type ReconcileController struct {
	provider Provider
	library  Library
	resolver *Resolver
	remover  *RemovalDriver
	keep     *utils.KeepList
	settings Settings
	logger   *logrus.Logger
}

// NewReconcileController creates a new reconcile controller
func NewReconcileController(provider Provider, library Library, keep *utils.KeepList, settings Settings, logger *logrus.Logger) *ReconcileController {
	if settings.Workers < 1 {
		settings.Workers = 1
	}
	return &ReconcileController{
		provider: provider,
		library:  library,
		resolver: NewResolver(library, logger),
		remover:  NewRemovalDriver(provider, logger),
		keep:     keep,
		settings: settings,
		logger:   logger,
	}
}

// Settings returns the controller settings
func (c *ReconcileController) Settings() Settings {
	return c.settings
}

// tally accumulates entry results from concurrent workers
type tally struct {
	mu      sync.Mutex
	summary models.Summary
	results []*models.EntryResult
}

func (t *tally) record(index int, result models.EntryResult) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.results[index] = &result
	switch result.Status {
	case models.EntryRemoved, models.EntryDryRun:
		t.summary.Removed++
	case models.EntrySkipped:
		t.summary.Skipped++
	case models.EntryUnmatched:
		t.summary.Unmatched++
	case models.EntryFailed:
		t.summary.Failed++
	}
}

// Sweep walks the whole watchlist and removes every entry watched enough.
// Only a failure to fetch the watchlist is returned as an error.
func (c *ReconcileController) Sweep(ctx context.Context) (*models.Summary, error) {
	start := time.Now()
	defer func() { metrics.SweepDuration.Observe(time.Since(start).Seconds()) }()

	c.logger.WithFields(logrus.Fields{
		"types":       c.settings.Types,
		"show_remove": c.settings.ShowRemove,
		"dry_run":     c.settings.DryRun,
		"limit":       c.settings.Limit,
	}).Info("Starting watchlist sweep")

	entries, err := c.provider.Watchlist(ctx, c.settings.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch watchlist: %w", err)
	}

	c.logger.WithField("count", len(entries)).Info("Fetched watchlist")

	t := &tally{results: make([]*models.EntryResult, len(entries))}
	p := pool.New().WithMaxGoroutines(c.settings.Workers)

	for i, entry := range entries {
		if entry.Kind != models.MediaKindMovie && entry.Kind != models.MediaKindShow {
			continue
		}
		if !c.settings.wants(entry.Kind) {
			continue
		}

		i, entry := i, entry
		p.Go(func() {
			result := c.processEntry(ctx, entry)
			metrics.EntriesTotal.WithLabelValues(string(result.Status)).Inc()
			t.record(i, result)
		})
	}
	p.Wait()

	summary := t.summary
	summary.Total = len(entries)
	for _, r := range t.results {
		if r != nil {
			summary.Results = append(summary.Results, *r)
		}
	}

	c.logger.WithFields(logrus.Fields{
		"removed":   summary.Removed,
		"skipped":   summary.Skipped,
		"unmatched": summary.Unmatched,
		"failed":    summary.Failed,
		"total":     summary.Total,
	}).Info("Watchlist sweep completed")

	return &summary, nil
}

// processEntry resolves, classifies and removes a single watchlist entry
func (c *ReconcileController) processEntry(ctx context.Context, entry models.WatchlistEntry) models.EntryResult {
	result := models.EntryResult{Kind: entry.Kind, Title: entry.Title, Year: entry.Year}
	log := c.logger.WithFields(logrus.Fields{
		"type":  entry.Kind,
		"title": entry.Title,
		"year":  entry.Year,
	})

	_, rawID := utils.ExtractGUID(entry.GUID)
	log.WithFields(logrus.Fields{"guid": entry.GUID, "raw_id": rawID}).Debug("Scanning watchlist entry")

	if c.keep.Keeps(entry.Title, entry.GUID) {
		log.Info("On keep list, skipping")
		result.Status = models.EntrySkipped
		result.Reason = "kept"
		return result
	}

	item := c.resolver.Resolve(ctx, entry)
	if item == nil {
		log.Debug("No local match, skipping")
		result.Status = models.EntryUnmatched
		result.Reason = "no local match"
		return result
	}

	if !IsEligibleForRemoval(item, entry.Kind, c.settings.ShowRemove) {
		log.Debug("Not watched enough, skipping")
		result.Status = models.EntrySkipped
		result.Reason = "not watched enough"
		return result
	}

	if c.settings.DryRun {
		log.Infof("DRY RUN: would remove from Watchlist -> %s: %s", entry.Kind, entry.Title)
		result.Status = models.EntryDryRun
		return result
	}

	switch c.remover.Remove(ctx, *item) {
	case models.OutcomeRemoved:
		log.Infof("Removed from Watchlist: %s: %s", entry.Kind, entry.Title)
		result.Status = models.EntryRemoved
	case models.OutcomeAlreadyAbsent:
		log.Infof("Already not on Watchlist: %s: %s", entry.Kind, entry.Title)
		result.Status = models.EntrySkipped
		result.Reason = "already not on watchlist"
	default:
		log.Errorf("FAILED to remove: %s: %s", entry.Kind, entry.Title)
		result.Status = models.EntryFailed
		result.Reason = "removal failed"
	}
	return result
}

// Event is a single playback notification, e.g. from Tautulli
type Event struct {
	RatingKey string
	MediaType string // movie, episode or show
	Title     string
	Username  string
}

// EventResult reports what HandleEvent did
type EventResult struct {
	Status  models.EntryStatus
	Outcome models.RemovalOutcome // set when a removal ran
	Target  string                // e.g. "Show: Severance"
	Reason  string
}

// HandleEvent removes the watchlist entry the event refers to. Episodes
// always target their show. No watched threshold applies: the event is the trigger.
// Errors are returned only for malformed events and failed item lookups.
func (c *ReconcileController) HandleEvent(ctx context.Context, ev Event) (*EventResult, error) {
	log := c.logger.WithFields(logrus.Fields{
		"rating_key": ev.RatingKey,
		"media_type": ev.MediaType,
		"username":   ev.Username,
	})

	if c.settings.OnlyUsername != "" && ev.Username != "" && ev.Username != c.settings.OnlyUsername {
		log.Infof("Skip: username '%s' != only_username '%s'", ev.Username, c.settings.OnlyUsername)
		return &EventResult{Status: models.EntrySkipped, Reason: "username mismatch"}, nil
	}

	ratingKey, err := strconv.Atoi(strings.TrimSpace(ev.RatingKey))
	if err != nil {
		return nil, fmt.Errorf("%w: rating key must be an integer, got %q", ErrInvalidEvent, ev.RatingKey)
	}
	key := strconv.Itoa(ratingKey)

	var item *models.LocalItem
	var target string

	switch models.ParseMediaKind(ev.MediaType) {
	case models.MediaKindMovie:
		item, err = c.library.FetchItem(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch item %s: %w", key, err)
		}
		target = "Movie: " + item.Title

	case models.MediaKindEpisode, models.MediaKindShow:
		item, err = c.library.FetchItem(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch item %s: %w", key, err)
		}
		if item.Kind == models.MediaKindEpisode {
			show, err := c.library.ParentShow(ctx, item)
			if err != nil {
				log.WithError(err).Info("Skip: could not resolve parent show from episode")
				return &EventResult{Status: models.EntrySkipped, Reason: "parent show not found"}, nil
			}
			item = show
		}
		title := item.Title
		if title == "" {
			title = ev.Title
		}
		if title == "" {
			title = "Unknown"
		}
		target = "Show: " + title

	default:
		log.Infof("Skip: unsupported media_type '%s'", ev.MediaType)
		return &EventResult{Status: models.EntrySkipped, Reason: "unsupported media type"}, nil
	}

	log.WithFields(logrus.Fields{
		"target": target,
		"guid":   item.GUID,
	}).Debug("Acting on item")

	if c.settings.DryRun {
		log.Infof("DRY RUN: would remove from Watchlist -> %s", target)
		return &EventResult{Status: models.EntryDryRun, Target: target}, nil
	}

	outcome := c.remover.Remove(ctx, *item)
	result := &EventResult{Outcome: outcome, Target: target}
	switch outcome {
	case models.OutcomeRemoved:
		log.Infof("Removed from Watchlist: %s", target)
		result.Status = models.EntryRemoved
	case models.OutcomeAlreadyAbsent:
		log.Infof("Already not on Watchlist: %s", target)
		result.Status = models.EntrySkipped
		result.Reason = "already not on watchlist"
	default:
		log.Errorf("FAILED to remove from Watchlist: %s", target)
		result.Status = models.EntryFailed
		result.Reason = "removal failed"
	}
	return result, nil
}
