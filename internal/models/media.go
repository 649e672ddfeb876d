package models

// WatchlistEntry represents one item on the remote Plex watchlist
type WatchlistEntry struct {
	RatingKey string // discover rating key
	Title     string
	Year      int // 0 when unknown
	Kind      MediaKind
	GUID      string // "" when unknown, e.g. "plex://movie/5d776..."
}

// LocalItem represents an item in the local Plex Media Server library
type LocalItem struct {
	RatingKey      string
	Title          string
	Year           int
	Kind           MediaKind
	GUID           string
	AlternateGUIDs []string // e.g. "imdb://tt0133093", "tmdb://603"

	// Movie progress
	Watched   bool
	ViewCount int

	// Show progress
	ViewedLeafCount int
	LeafCount       int

	// Episodes only: rating key of the show
	ParentRatingKey string
}

// EntryResult is the per-entry line reported by a sweep
type EntryResult struct {
	Kind   MediaKind   `json:"kind"`
	Title  string      `json:"title"`
	Year   int         `json:"year,omitempty"`
	Status EntryStatus `json:"status"`
	Reason string      `json:"reason,omitempty"`
}

// Summary aggregates the result of a sweep
type Summary struct {
	Removed   int           `json:"removed"`
	Skipped   int           `json:"skipped"`
	Unmatched int           `json:"unmatched"`
	Failed    int           `json:"failed"`
	Total     int           `json:"total"`
	Results   []EntryResult `json:"results"`
}
