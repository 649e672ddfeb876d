package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/cenodude/plex-watchlist/internal/controllers"
	"github.com/cenodude/plex-watchlist/internal/scheduler"
	"github.com/sirupsen/logrus"
)

// SweepRecorder exposes the most recent sweep
type SweepRecorder interface {
	LastRun() *scheduler.LastRun
}

// StatusHandler handles status requests
type StatusHandler struct {
	settings controllers.Settings
	schedule string
	recorder SweepRecorder
	logger   *logrus.Logger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(settings controllers.Settings, schedule string, recorder SweepRecorder, logger *logrus.Logger) *StatusHandler {
	return &StatusHandler{
		settings: settings,
		schedule: schedule,
		recorder: recorder,
		logger:   logger,
	}
}

// StatusResponse represents the status response
type StatusResponse struct {
	Types        []string           `json:"types"`
	ShowRemove   string             `json:"show_remove"`
	DryRun       bool               `json:"dry_run"`
	Limit        int                `json:"limit"`
	Workers      int                `json:"workers"`
	OnlyUsername string             `json:"only_username,omitempty"`
	Schedule     string             `json:"schedule"`
	LastSweep    *scheduler.LastRun `json:"last_sweep"`
}

// ServeHTTP handles the status endpoint
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := StatusResponse{
		ShowRemove:   string(h.settings.ShowRemove),
		DryRun:       h.settings.DryRun,
		Limit:        h.settings.Limit,
		Workers:      h.settings.Workers,
		OnlyUsername: h.settings.OnlyUsername,
		Schedule:     h.schedule,
		LastSweep:    h.recorder.LastRun(),
	}
	for _, kind := range h.settings.Types {
		response.Types = append(response.Types, string(kind))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
