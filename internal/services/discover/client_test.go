package discover

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cenodude/plex-watchlist/internal/config"
	"github.com/cenodude/plex-watchlist/internal/models"
	"github.com/sirupsen/logrus"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	client, err := NewClient(&config.Config{
		AccountToken: "account",
		ClientID:     "test-client",
		DiscoverURL:  server.URL,
		MetadataURL:  server.URL + "/metadata",
		PlexTVURL:    server.URL + "/plextv",
	}, logger)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return client
}

func TestWatchlist(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/library/sections/watchlist/all" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("includeCollections") != "1" || q.Get("includeExternalMedia") != "1" {
			t.Errorf("Missing include params: %s", r.URL.RawQuery)
		}
		if q.Get("X-Plex-Container-Start") != "0" || q.Get("X-Plex-Container-Size") != "5" {
			t.Errorf("Missing paging params: %s", r.URL.RawQuery)
		}
		if r.Header.Get("X-Plex-Token") != "account" {
			t.Errorf("Missing account token")
		}
		w.Write([]byte(`{"MediaContainer":{"size":3,"Metadata":[
			{"type":"movie","title":"X","year":2021,"guid":"plex://movie/111","ratingKey":"111"},
			{"type":"show","originalTitle":"Dark"},
			{"type":"collection"}
		]}}`))
	})

	entries, err := client.Watchlist(context.Background(), 5)
	if err != nil {
		t.Fatalf("Watchlist failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}

	if e := entries[0]; e.Title != "X" || e.Year != 2021 || e.Kind != models.MediaKindMovie || e.GUID != "plex://movie/111" {
		t.Errorf("Unexpected first entry %+v", e)
	}
	if e := entries[1]; e.Title != "Dark" || e.Year != 0 || e.GUID != "" || e.Kind != models.MediaKindShow {
		t.Errorf("Expected original title fallback and empty optionals, got %+v", e)
	}
	if e := entries[2]; e.Title != "Unknown" || e.Kind != models.MediaKindUnknown {
		t.Errorf("Unexpected third entry %+v", e)
	}
}

func TestWatchlistNoLimit(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("X-Plex-Container-Size") {
			t.Errorf("Paging params should be omitted without a limit")
		}
		w.Write([]byte(`{"MediaContainer":{"size":0}}`))
	})

	if _, err := client.Watchlist(context.Background(), 0); err != nil {
		t.Fatalf("Watchlist failed: %v", err)
	}
}

func TestWatchlistUnauthorized(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.Watchlist(context.Background(), 0)
	if !errors.Is(err, models.ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized, got %v", err)
	}
}

func TestAttemptShapes(t *testing.T) {
	type call struct {
		query       string
		body        string
		contentType string
	}
	var calls []call

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != removePath {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		calls = append(calls, call{query: r.URL.RawQuery, body: string(body), contentType: r.Header.Get("Content-Type")})
		if len(calls) == 1 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	attempts := RemovalAttempts("abc", nil)
	ctx := context.Background()

	err := client.Attempt(ctx, attempts[0])
	var statusErr *models.StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 status error, got %v", err)
	}
	if err := client.Attempt(ctx, attempts[1]); err != nil {
		t.Fatalf("Expected success on 204, got %v", err)
	}

	if calls[0].query != "ratingKey=abc" || calls[0].body != "" {
		t.Errorf("Query attempt sent %+v", calls[0])
	}
	if calls[1].query != "" || calls[1].body != "ratingKey=abc" || calls[1].contentType != "application/x-www-form-urlencoded" {
		t.Errorf("Body attempt sent %+v", calls[1])
	}
}

func TestRemovalAttemptsOrder(t *testing.T) {
	attempts := RemovalAttempts("raw", []string{"plex://movie/raw", "imdb://tt1"})

	want := []string{
		"ratingKey/query=raw",
		"ratingKey/body=raw",
		"guid/query=plex://movie/raw",
		"guid/body=plex://movie/raw",
		"guid/query=imdb://tt1",
		"guid/body=imdb://tt1",
	}
	if len(attempts) != len(want) {
		t.Fatalf("Expected %d attempts, got %d", len(want), len(attempts))
	}
	for i, a := range attempts {
		if got := a.Shape() + "=" + a.Value; got != want[i] {
			t.Errorf("attempt %d: expected %s, got %s", i, want[i], got)
		}
		if a.Method != http.MethodPut {
			t.Errorf("attempt %d: expected PUT, got %s", i, a.Method)
		}
	}

	if RemovalAttempts("", []string{"plex://movie/raw"}) != nil {
		t.Error("No attempts expected without a raw id")
	}
}

func TestRemoveItem(t *testing.T) {
	removed := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/metadata/library/metadata/on/userState":
			w.Write([]byte(`{"MediaContainer":{"UserState":{"watchlistedAt":1700000000}}}`))
		case "/metadata/library/metadata/off/userState":
			w.Write([]byte(`{"MediaContainer":{"UserState":{"viewCount":1}}}`))
		case "/metadata" + removePath:
			if r.URL.Query().Get("ratingKey") != "on" {
				t.Errorf("Unexpected rating key %s", r.URL.RawQuery)
			}
			removed = true
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	if err := client.RemoveItem(ctx, models.LocalItem{Title: "On", GUID: "plex://movie/on"}); err != nil {
		t.Fatalf("RemoveItem failed: %v", err)
	}
	if !removed {
		t.Error("Expected removal call")
	}

	err := client.RemoveItem(ctx, models.LocalItem{Title: "Off", GUID: "plex://movie/off"})
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for item not on watchlist, got %v", err)
	}

	err = client.RemoveItem(ctx, models.LocalItem{Title: "Gone", GUID: "plex://movie/gone"})
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for 404, got %v", err)
	}

	err = client.RemoveItem(ctx, models.LocalItem{Title: "Local", GUID: "imdb://tt1"})
	if err == nil || errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected plain failure for item without plex GUID, got %v", err)
	}
}

func TestUsername(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/plextv/api/v2/user" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"id":1,"username":"alice"}`))
	})

	name, err := client.Username(context.Background())
	if err != nil {
		t.Fatalf("Username failed: %v", err)
	}
	if name != "alice" {
		t.Errorf("Expected alice, got %q", name)
	}
}
