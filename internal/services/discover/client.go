package discover

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenodude/plex-watchlist/internal/config"
	"github.com/cenodude/plex-watchlist/internal/models"
	"github.com/cenodude/plex-watchlist/internal/utils"
	"github.com/sirupsen/logrus"
)

const (
	product        = "plex-watchlist"
	productVersion = "1.0"

	watchlistTimeout = 15 * time.Second
	attemptTimeout   = 12 * time.Second
)

// Client handles the Plex account watchlist on the discover and metadata providers
type Client struct {
	discoverURL  string
	metadataURL  string
	plexTVURL    string
	accountToken string
	clientID     string
	httpClient   *http.Client
	logger       *logrus.Logger
}

// NewClient creates a new watchlist provider client
func NewClient(cfg *config.Config, logger *logrus.Logger) (*Client, error) {
	if cfg.AccountToken == "" {
		return nil, fmt.Errorf("plex account token is required")
	}

	return &Client{
		discoverURL:  strings.TrimRight(cfg.DiscoverURL, "/"),
		metadataURL:  strings.TrimRight(cfg.MetadataURL, "/"),
		plexTVURL:    strings.TrimRight(cfg.PlexTVURL, "/"),
		accountToken: cfg.AccountToken,
		clientID:     cfg.ClientID,
		httpClient:   &http.Client{Timeout: watchlistTimeout},
		logger:       logger,
	}, nil
}

// watchlistResponse represents the discover watchlist API response
type watchlistResponse struct {
	MediaContainer struct {
		Size     int `json:"size"`
		Metadata []struct {
			RatingKey     string `json:"ratingKey"`
			Type          string `json:"type"`
			Title         string `json:"title"`
			OriginalTitle string `json:"originalTitle"`
			Year          int    `json:"year"`
			GUID          string `json:"guid"`
		} `json:"Metadata"`
	} `json:"MediaContainer"`
}

// setPlexHeaders adds the headers every provider call needs
func (c *Client) setPlexHeaders(req *http.Request) {
	req.Header.Set("X-Plex-Token", c.accountToken)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Plex-Product", product)
	req.Header.Set("X-Plex-Version", productVersion)
	req.Header.Set("X-Plex-Client-Identifier", c.clientID)
}

// Watchlist retrieves the account's watchlist. A limit of 0 fetches everything
// the provider returns in one page.
func (c *Client) Watchlist(ctx context.Context, limit int) ([]models.WatchlistEntry, error) {
	params := url.Values{}
	params.Set("includeCollections", "1")
	params.Set("includeExternalMedia", "1")
	if limit > 0 {
		params.Set("X-Plex-Container-Start", "0")
		params.Set("X-Plex-Container-Size", strconv.Itoa(limit))
	}

	fullURL := c.discoverURL + "/library/sections/watchlist/all?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setPlexHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch watchlist: %w: %v", models.ErrConnection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("failed to fetch watchlist: %w", &models.StatusError{Code: resp.StatusCode, Body: string(body)})
	}

	var wl watchlistResponse
	if err := json.NewDecoder(resp.Body).Decode(&wl); err != nil {
		return nil, fmt.Errorf("failed to decode watchlist: %w", err)
	}

	entries := make([]models.WatchlistEntry, 0, len(wl.MediaContainer.Metadata))
	for _, m := range wl.MediaContainer.Metadata {
		title := m.Title
		if title == "" {
			title = m.OriginalTitle
		}
		if title == "" {
			title = "Unknown"
		}
		entries = append(entries, models.WatchlistEntry{
			RatingKey: m.RatingKey,
			Title:     title,
			Year:      m.Year,
			Kind:      models.ParseMediaKind(m.Type),
			GUID:      strings.TrimSpace(m.GUID),
		})
	}

	c.logger.WithField("count", len(entries)).Debug("Watchlist items fetched")
	return entries, nil
}

// Username returns the plex.tv username owning the account token
func (c *Client) Username(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.plexTVURL+"/api/v2/user", nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	c.setPlexHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("plex.tv request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &models.StatusError{Code: resp.StatusCode}
	}

	var user struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return "", fmt.Errorf("failed to decode user: %w", err)
	}
	return user.Username, nil
}

// Attempt executes one removal call shape against the discover provider.
// Returns nil only for 200 and 204; other statuses yield a *models.StatusError.
func (c *Client) Attempt(ctx context.Context, spec AttemptSpec) error {
	ctx, cancel := context.WithTimeout(ctx, attemptTimeout)
	defer cancel()

	fullURL := c.discoverURL + removePath
	form := url.Values{}
	form.Set(spec.Key, spec.Value)

	var body io.Reader
	if spec.Location == LocationQuery {
		fullURL += "?" + form.Encode()
	} else {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, spec.Method, fullURL, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setPlexHeaders(req)
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("provider call failed: %w", err)
	}
	defer resp.Body.Close()

	c.logger.WithFields(logrus.Fields{
		"method": spec.Method,
		"shape":  spec.Shape(),
		"value":  spec.Value,
		"status": resp.StatusCode,
	}).Debug("Discover removal attempt")

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &models.StatusError{Code: resp.StatusCode, Body: string(respBody)}
}

// RemoveItem removes the item from the watchlist through the metadata
// provider's item API. Returns an error matching models.ErrNotFound when the
// item is not on the watchlist.
func (c *Client) RemoveItem(ctx context.Context, item models.LocalItem) error {
	variants := utils.GUIDVariants(item.GUID, item.AlternateGUIDs...)
	rawID := utils.RawIDFor(item.GUID, variants)
	if rawID == "" {
		return fmt.Errorf("item %q has no plex GUID", item.Title)
	}

	ctx, cancel := context.WithTimeout(ctx, attemptTimeout)
	defer cancel()

	onWatchlist, err := c.onWatchlist(ctx, rawID)
	if err != nil {
		return err
	}
	if !onWatchlist {
		return fmt.Errorf("%q is not on the watchlist: %w", item.Title, models.ErrNotFound)
	}

	fullURL := c.metadataURL + removePath + "?" + url.Values{"ratingKey": {rawID}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, fullURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setPlexHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("item API call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &models.StatusError{Code: resp.StatusCode, Body: string(body)}
	}
	return nil
}

// onWatchlist reads the account's user state for the item
func (c *Client) onWatchlist(ctx context.Context, rawID string) (bool, error) {
	fullURL := fmt.Sprintf("%s/library/metadata/%s/userState", c.metadataURL, url.PathEscape(rawID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	c.setPlexHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("user state request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, &models.StatusError{Code: resp.StatusCode}
	}

	var state struct {
		MediaContainer struct {
			UserState json.RawMessage `json:"UserState"`
		} `json:"MediaContainer"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return false, fmt.Errorf("failed to decode user state: %w", err)
	}

	// UserState is an object or a one-element array depending on the API version
	return bytes.Contains(state.MediaContainer.UserState, []byte(`"watchlistedAt"`)), nil
}
