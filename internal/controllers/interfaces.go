package controllers

import (
	"context"

	"github.com/cenodude/plex-watchlist/internal/models"
	"github.com/cenodude/plex-watchlist/internal/services/discover"
)

// Library is the part of the local Plex Media Server the engine reads
type Library interface {
	SearchByGUID(ctx context.Context, guid string) ([]models.LocalItem, error)
	Search(ctx context.Context, title string, kind models.MediaKind) ([]models.LocalItem, error)
	FetchItem(ctx context.Context, ratingKey string) (*models.LocalItem, error)
	ParentShow(ctx context.Context, episode *models.LocalItem) (*models.LocalItem, error)
}

// Provider is the remote watchlist
type Provider interface {
	Watchlist(ctx context.Context, limit int) ([]models.WatchlistEntry, error)
	Attempt(ctx context.Context, spec discover.AttemptSpec) error
	RemoveItem(ctx context.Context, item models.LocalItem) error
}
