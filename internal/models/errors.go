package models

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrConnection means a Plex service could not be reached at all
	ErrConnection = errors.New("connection failed")
	// ErrUnauthorized means the token was rejected (401/403)
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound means the requested item does not exist or is not on the watchlist
	ErrNotFound = errors.New("not found")
)

// StatusError is returned when a Plex API answers with an unexpected status code
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// Is maps auth and not-found statuses to the matching sentinel
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Code == http.StatusUnauthorized || e.Code == http.StatusForbidden
	case ErrNotFound:
		return e.Code == http.StatusNotFound
	}
	return false
}
