package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cenodude/plex-watchlist/internal/controllers"
	"github.com/cenodude/plex-watchlist/internal/models"
	"github.com/cenodude/plex-watchlist/internal/scheduler"
	"github.com/cenodude/plex-watchlist/internal/utils"
	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(ctx context.Context) error { return f.err }

type fakeEvents struct {
	got    controllers.Event
	result *controllers.EventResult
	err    error
}

func (f *fakeEvents) HandleEvent(ctx context.Context, ev controllers.Event) (*controllers.EventResult, error) {
	f.got = ev
	return f.result, f.err
}

type fakeRecorder struct{ last *scheduler.LastRun }

func (f fakeRecorder) LastRun() *scheduler.LastRun { return f.last }

type fakeRunner struct {
	summary *models.Summary
	err     error
}

func (f fakeRunner) RunSweep(ctx context.Context) (*models.Summary, error) { return f.summary, f.err }

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name   string
		pinger Pinger
		code   int
		status string
	}{
		{"no pinger", nil, http.StatusOK, "healthy"},
		{"plex reachable", fakePinger{}, http.StatusOK, "healthy"},
		{"plex down", fakePinger{err: errors.New("refused")}, http.StatusServiceUnavailable, "unhealthy"},
	}

	for _, tt := range tests {
		h := NewHealthHandler(tt.pinger, quietLogger())
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		if rec.Code != tt.code {
			t.Errorf("%s: expected %d, got %d", tt.name, tt.code, rec.Code)
		}
		var body map[string]string
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("%s: failed to decode body: %v", tt.name, err)
		}
		if body["status"] != tt.status {
			t.Errorf("%s: expected status %s, got %s", tt.name, tt.status, body["status"])
		}
	}

	rec := httptest.NewRecorder()
	NewHealthHandler(nil, quietLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/health", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405 for POST, got %d", rec.Code)
	}
}

func TestStatusHandler(t *testing.T) {
	settings := controllers.Settings{
		Types:      []models.MediaKind{models.MediaKindMovie, models.MediaKindShow},
		ShowRemove: models.PolicyOnComplete,
		DryRun:     true,
		Workers:    2,
	}
	last := &scheduler.LastRun{
		StartedAt:  time.Now().Add(-time.Minute),
		FinishedAt: time.Now(),
		Summary:    &models.Summary{Removed: 3, Total: 7},
	}
	h := NewStatusHandler(settings, "0 */6 * * *", fakeRecorder{last: last}, quietLogger())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var resp StatusResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if strings.Join(resp.Types, ",") != "movie,show" || resp.ShowRemove != "completed" || !resp.DryRun {
		t.Errorf("Unexpected settings: %+v", resp)
	}
	if resp.LastSweep == nil || resp.LastSweep.Summary.Removed != 3 {
		t.Errorf("Unexpected last sweep: %+v", resp.LastSweep)
	}
}

func TestStatusHandlerBeforeFirstSweep(t *testing.T) {
	h := NewStatusHandler(controllers.Settings{}, "@hourly", fakeRecorder{}, quietLogger())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	if !strings.Contains(rec.Body.String(), `"last_sweep":null`) {
		t.Errorf("Expected null last sweep, got %s", rec.Body.String())
	}
}

func TestWebhookHandler(t *testing.T) {
	events := &fakeEvents{result: &controllers.EventResult{
		Status:  models.EntryRemoved,
		Outcome: models.OutcomeRemoved,
		Target:  "Show: Severance",
	}}
	h := NewWebhookHandler(events, quietLogger())

	body := `{"rating_key": 500, "media_type": "episode", "title": "Pilot", "username": "alice"}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/webhook/event", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if events.got.RatingKey != "500" || events.got.MediaType != "episode" || events.got.Username != "alice" {
		t.Errorf("Unexpected event: %+v", events.got)
	}

	var resp EventResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Status != "removed" || resp.Target != "Show: Severance" {
		t.Errorf("Unexpected response: %+v", resp)
	}
}

func TestWebhookHandlerErrors(t *testing.T) {
	tests := []struct {
		name   string
		method string
		body   string
		err    error
		code   int
	}{
		{"wrong method", http.MethodGet, "", nil, http.StatusMethodNotAllowed},
		{"bad json", http.MethodPost, "{", nil, http.StatusBadRequest},
		{"bad rating key type", http.MethodPost, `{"rating_key": true}`, nil, http.StatusBadRequest},
		{"invalid event", http.MethodPost, `{"rating_key": "abc"}`, fmt.Errorf("%w: bad key", controllers.ErrInvalidEvent), http.StatusBadRequest},
		{"fetch failure", http.MethodPost, `{"rating_key": "1"}`, errors.New("plex down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		h := NewWebhookHandler(&fakeEvents{err: tt.err}, quietLogger())
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(tt.method, "/api/webhook/event", strings.NewReader(tt.body)))
		if rec.Code != tt.code {
			t.Errorf("%s: expected %d, got %d", tt.name, tt.code, rec.Code)
		}
	}
}

func TestSweepHandler(t *testing.T) {
	h := NewSweepHandler(fakeRunner{summary: &models.Summary{Removed: 1, Total: 1}}, quietLogger())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sweep", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"removed":1`) {
		t.Errorf("Unexpected response %d: %s", rec.Code, rec.Body.String())
	}

	h = NewSweepHandler(fakeRunner{err: utils.ErrLocked}, quietLogger())
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sweep", nil))
	if rec.Code != http.StatusConflict {
		t.Errorf("Expected 409 while locked, got %d", rec.Code)
	}

	h = NewSweepHandler(fakeRunner{err: errors.New("watchlist unavailable")}, quietLogger())
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sweep", nil))
	if rec.Code != http.StatusBadGateway {
		t.Errorf("Expected 502 on sweep failure, got %d", rec.Code)
	}
}
