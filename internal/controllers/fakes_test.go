package controllers

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/cenodude/plex-watchlist/internal/models"
	"github.com/cenodude/plex-watchlist/internal/services/discover"
	"github.com/sirupsen/logrus"
)

var errTransport = errors.New("dial tcp: i/o timeout")

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// fakeLibrary serves canned library lookups
type fakeLibrary struct {
	byGUID    map[string][]models.LocalItem
	byTitle   map[string][]models.LocalItem
	items     map[string]*models.LocalItem
	guidErr   error
	searchErr error

	mu       sync.Mutex
	searches []string
}

func (f *fakeLibrary) SearchByGUID(ctx context.Context, guid string) ([]models.LocalItem, error) {
	if f.guidErr != nil {
		return nil, f.guidErr
	}
	return f.byGUID[guid], nil
}

func (f *fakeLibrary) Search(ctx context.Context, title string, kind models.MediaKind) ([]models.LocalItem, error) {
	f.mu.Lock()
	f.searches = append(f.searches, string(kind)+":"+title)
	f.mu.Unlock()
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.byTitle[title], nil
}

func (f *fakeLibrary) FetchItem(ctx context.Context, ratingKey string) (*models.LocalItem, error) {
	item, ok := f.items[ratingKey]
	if !ok {
		return nil, models.ErrNotFound
	}
	return item, nil
}

func (f *fakeLibrary) ParentShow(ctx context.Context, episode *models.LocalItem) (*models.LocalItem, error) {
	return f.FetchItem(ctx, episode.ParentRatingKey)
}

// fakeProvider records removal calls and answers them from a script
type fakeProvider struct {
	entries     []models.WatchlistEntry
	watchErr    error
	attemptErrs []error // per call index; calls beyond the script fail with errTransport
	removeErr   error

	mu          sync.Mutex
	attempts    []discover.AttemptSpec
	removeCalls []models.LocalItem
}

func (f *fakeProvider) Watchlist(ctx context.Context, limit int) ([]models.WatchlistEntry, error) {
	if f.watchErr != nil {
		return nil, f.watchErr
	}
	if limit > 0 && limit < len(f.entries) {
		return f.entries[:limit], nil
	}
	return f.entries, nil
}

func (f *fakeProvider) Attempt(ctx context.Context, spec discover.AttemptSpec) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := len(f.attempts)
	f.attempts = append(f.attempts, spec)
	if n < len(f.attemptErrs) {
		return f.attemptErrs[n]
	}
	return errTransport
}

func (f *fakeProvider) RemoveItem(ctx context.Context, item models.LocalItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removeCalls = append(f.removeCalls, item)
	return f.removeErr
}

func (f *fakeProvider) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.attempts) + len(f.removeCalls)
}
