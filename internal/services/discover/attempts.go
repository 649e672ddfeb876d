package discover

import "net/http"

const removePath = "/actions/removeFromWatchlist"

// ParamLocation is where the removal parameter is sent
type ParamLocation string

const (
	LocationQuery ParamLocation = "query"
	LocationBody  ParamLocation = "body"
)

// AttemptSpec is one call shape for removing an item from the watchlist
type AttemptSpec struct {
	Method   string
	Location ParamLocation
	Key      string // "ratingKey" or "guid"
	Value    string
}

// Shape identifies the call shape without its value, e.g. "ratingKey/query"
func (a AttemptSpec) Shape() string {
	return a.Key + "/" + string(a.Location)
}

// RemovalAttempts builds the ordered call shapes for one item: the raw id as
// ratingKey (query, then body), then every GUID variant as guid (query, then body).
// Returns nil when rawID is empty.
func RemovalAttempts(rawID string, variants []string) []AttemptSpec {
	if rawID == "" {
		return nil
	}

	attempts := []AttemptSpec{
		{Method: http.MethodPut, Location: LocationQuery, Key: "ratingKey", Value: rawID},
		{Method: http.MethodPut, Location: LocationBody, Key: "ratingKey", Value: rawID},
	}
	for _, g := range variants {
		attempts = append(attempts,
			AttemptSpec{Method: http.MethodPut, Location: LocationQuery, Key: "guid", Value: g},
			AttemptSpec{Method: http.MethodPut, Location: LocationBody, Key: "guid", Value: g},
		)
	}
	return attempts
}
