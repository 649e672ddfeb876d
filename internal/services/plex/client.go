package plex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenodude/plex-watchlist/internal/config"
	"github.com/cenodude/plex-watchlist/internal/models"
	"github.com/sirupsen/logrus"
)

const requestTimeout = 15 * time.Second

// Client handles communication with the local Plex Media Server
type Client struct {
	baseURL    string
	token      string
	clientID   string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient creates a new Plex Media Server client
func NewClient(cfg *config.Config, logger *logrus.Logger) (*Client, error) {
	if cfg.PlexURL == "" {
		return nil, fmt.Errorf("plex URL is required")
	}
	if _, err := url.Parse(cfg.PlexURL); err != nil {
		return nil, fmt.Errorf("invalid plex URL: %w", err)
	}

	return &Client{
		baseURL:    cfg.PlexURL,
		token:      cfg.PlexToken,
		clientID:   cfg.ClientID,
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger,
	}, nil
}

// mediaContainer is the JSON envelope of every library response
type mediaContainer struct {
	MediaContainer struct {
		Size     int        `json:"size"`
		Metadata []metadata `json:"Metadata"`
	} `json:"MediaContainer"`
}

type metadata struct {
	RatingKey            string `json:"ratingKey"`
	Type                 string `json:"type"`
	Title                string `json:"title"`
	Year                 int    `json:"year"`
	GUID                 string `json:"guid"`
	ViewCount            int    `json:"viewCount"`
	ViewedLeafCount      int    `json:"viewedLeafCount"`
	LeafCount            int    `json:"leafCount"`
	GrandparentRatingKey string `json:"grandparentRatingKey"`
	Guids                []struct {
		ID string `json:"id"`
	} `json:"Guid"`
}

// toLocalItem resolves optional attributes once, with zero defaults
func (m metadata) toLocalItem() models.LocalItem {
	item := models.LocalItem{
		RatingKey:       m.RatingKey,
		Title:           m.Title,
		Year:            m.Year,
		Kind:            models.ParseMediaKind(m.Type),
		GUID:            m.GUID,
		Watched:         m.ViewCount > 0,
		ViewCount:       m.ViewCount,
		ViewedLeafCount: m.ViewedLeafCount,
		LeafCount:       m.LeafCount,
		ParentRatingKey: m.GrandparentRatingKey,
	}
	for _, g := range m.Guids {
		if g.ID != "" {
			item.AlternateGUIDs = append(item.AlternateGUIDs, g.ID)
		}
	}
	return item
}

// Ping checks that the server is reachable and accepts the token
func (c *Client) Ping(ctx context.Context) error {
	if err := c.doRequest(ctx, "/identity", nil, nil); err != nil {
		return fmt.Errorf("failed to connect to Plex at %s: %w", c.baseURL, err)
	}
	return nil
}

// SearchByGUID returns library items whose GUID matches exactly
func (c *Client) SearchByGUID(ctx context.Context, guid string) ([]models.LocalItem, error) {
	params := url.Values{}
	params.Set("guid", guid)
	return c.list(ctx, "/library/all", params)
}

// Search returns library items of the given kind matching the title.
// Result order is defined by the server.
func (c *Client) Search(ctx context.Context, title string, kind models.MediaKind) ([]models.LocalItem, error) {
	libType := kind.LibraryType()
	if libType == 0 {
		return nil, fmt.Errorf("unsupported library type %q", kind)
	}

	params := url.Values{}
	params.Set("type", strconv.Itoa(libType))
	params.Set("title", title)
	return c.list(ctx, "/library/all", params)
}

// FetchItem retrieves a single item by its rating key
func (c *Client) FetchItem(ctx context.Context, ratingKey string) (*models.LocalItem, error) {
	items, err := c.list(ctx, "/library/metadata/"+url.PathEscape(ratingKey), url.Values{})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("item %s: %w", ratingKey, models.ErrNotFound)
	}
	return &items[0], nil
}

// ParentShow retrieves the show an episode belongs to
func (c *Client) ParentShow(ctx context.Context, episode *models.LocalItem) (*models.LocalItem, error) {
	if episode.ParentRatingKey == "" {
		return nil, fmt.Errorf("episode %s has no parent show: %w", episode.RatingKey, models.ErrNotFound)
	}

	show, err := c.FetchItem(ctx, episode.ParentRatingKey)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch parent show: %w", err)
	}
	return show, nil
}

func (c *Client) list(ctx context.Context, path string, params url.Values) ([]models.LocalItem, error) {
	params.Set("includeGuids", "1")

	var container mediaContainer
	if err := c.doRequest(ctx, path, params, &container); err != nil {
		return nil, err
	}

	items := make([]models.LocalItem, 0, len(container.MediaContainer.Metadata))
	for _, m := range container.MediaContainer.Metadata {
		items = append(items, m.toLocalItem())
	}
	return items, nil
}

// doRequest performs an authenticated GET request against the server
func (c *Client) doRequest(ctx context.Context, path string, params url.Values, result interface{}) error {
	fullURL := c.baseURL + path
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	c.logger.WithFields(logrus.Fields{
		"path":   path,
		"params": params.Encode(),
	}).Debug("Making Plex server request")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Plex-Token", c.token)
	req.Header.Set("X-Plex-Client-Identifier", c.clientID)
	req.Header.Set("X-Plex-Product", "plex-watchlist")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: %v", models.ErrConnection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &models.StatusError{Code: resp.StatusCode, Body: string(bodyBytes)}
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
