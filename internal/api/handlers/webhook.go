package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/cenodude/plex-watchlist/internal/controllers"
	"github.com/sirupsen/logrus"
)

// EventHandler handles a single playback event
type EventHandler interface {
	HandleEvent(ctx context.Context, ev controllers.Event) (*controllers.EventResult, error)
}

// RatingKey accepts a rating key sent as a JSON string or number
type RatingKey string

// UnmarshalJSON decodes "123" as well as 123
func (k *RatingKey) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*k = RatingKey(s)
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("rating_key must be a string or integer: %w", err)
	}
	*k = RatingKey(strconv.FormatInt(n, 10))
	return nil
}

// EventPayload is the body of an event webhook, e.g. a Tautulli notification
type EventPayload struct {
	RatingKey RatingKey `json:"rating_key"`
	MediaType string    `json:"media_type"`
	Title     string    `json:"title"`
	Username  string    `json:"username"`
}

// EventResponse is returned after the event was handled
type EventResponse struct {
	Status  string `json:"status"`
	Outcome string `json:"outcome,omitempty"`
	Target  string `json:"target,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// WebhookHandler handles playback event webhooks
type WebhookHandler struct {
	events EventHandler
	logger *logrus.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(events EventHandler, logger *logrus.Logger) *WebhookHandler {
	return &WebhookHandler{
		events: events,
		logger: logger,
	}
}

// ServeHTTP handles the webhook endpoint
func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var payload EventPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.logger.WithError(err).Error("Failed to decode event payload")
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"rating_key": payload.RatingKey,
		"media_type": payload.MediaType,
		"title":      payload.Title,
		"username":   payload.Username,
	}).Info("Received playback event")

	result, err := h.events.HandleEvent(r.Context(), controllers.Event{
		RatingKey: string(payload.RatingKey),
		MediaType: payload.MediaType,
		Title:     payload.Title,
		Username:  payload.Username,
	})
	if errors.Is(err, controllers.ErrInvalidEvent) {
		h.logger.WithError(err).Warn("Rejected playback event")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to handle playback event")
		http.Error(w, "Failed to process event", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(EventResponse{
		Status:  string(result.Status),
		Outcome: string(result.Outcome),
		Target:  result.Target,
		Reason:  result.Reason,
	})
}
