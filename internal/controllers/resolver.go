package controllers

import (
	"context"

	"github.com/cenodude/plex-watchlist/internal/models"
	"github.com/cenodude/plex-watchlist/internal/utils"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/unicode/norm"
)

// Resolver finds the local library item for a watchlist entry
type Resolver struct {
	library Library
	logger  *logrus.Logger
}

// NewResolver creates a new resolver
func NewResolver(library Library, logger *logrus.Logger) *Resolver {
	return &Resolver{
		library: library,
		logger:  logger,
	}
}

// Resolve returns the best matching local item, or nil when the entry is unmatched.
// Lookup errors are treated as "no result" for the step that failed.
func (r *Resolver) Resolve(ctx context.Context, entry models.WatchlistEntry) *models.LocalItem {
	log := r.logger.WithFields(logrus.Fields{
		"title": entry.Title,
		"year":  entry.Year,
		"guid":  entry.GUID,
	})

	// Step 1: exact GUID match
	if entry.GUID != "" {
		results, err := r.library.SearchByGUID(ctx, entry.GUID)
		if err != nil {
			log.WithError(err).Debug("Search by GUID failed")
		} else if len(results) > 0 {
			return &results[0]
		}
	}

	// Step 2: only movies and shows can be searched
	if entry.Kind.LibraryType() == 0 {
		log.WithField("kind", entry.Kind).Debug("Unsupported kind, not searching")
		return nil
	}

	// Step 3: title search restricted to the library type
	candidates, err := r.library.Search(ctx, norm.NFC.String(entry.Title), entry.Kind)
	if err != nil {
		log.WithError(err).Debug("Title search failed")
		return nil
	}
	if len(candidates) == 0 {
		return nil
	}

	// Step 4: year filter, kept only if it leaves something
	if entry.Year > 0 {
		var sameYear []models.LocalItem
		for _, c := range candidates {
			if c.Year == entry.Year {
				sameYear = append(sameYear, c)
			}
		}
		if len(sameYear) > 0 {
			candidates = sameYear
		} else {
			log.WithField("candidates", len(candidates)).Debug("No candidate matches the year, keeping all")
		}
	}

	// Step 5: GUID disambiguation
	if entry.GUID != "" {
		for i := range candidates {
			for _, g := range utils.GUIDVariants(candidates[i].GUID, candidates[i].AlternateGUIDs...) {
				if g == entry.GUID {
					return &candidates[i]
				}
			}
		}
	}

	// Step 6: first candidate in server order
	return &candidates[0]
}
