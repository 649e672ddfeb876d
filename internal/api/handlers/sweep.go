package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cenodude/plex-watchlist/internal/models"
	"github.com/cenodude/plex-watchlist/internal/utils"
	"github.com/sirupsen/logrus"
)

// SweepRunner runs a sweep on demand
type SweepRunner interface {
	RunSweep(ctx context.Context) (*models.Summary, error)
}

// SweepHandler triggers a sweep outside the schedule
type SweepHandler struct {
	runner SweepRunner
	logger *logrus.Logger
}

// NewSweepHandler creates a new sweep handler
func NewSweepHandler(runner SweepRunner, logger *logrus.Logger) *SweepHandler {
	return &SweepHandler{runner: runner, logger: logger}
}

// ServeHTTP runs a sweep and returns its summary
func (h *SweepHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	summary, err := h.runner.RunSweep(r.Context())
	if errors.Is(err, utils.ErrLocked) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Manual sweep failed")
		http.Error(w, "Sweep failed", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}
