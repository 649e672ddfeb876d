package models

import "strings"

// MediaKind represents the kind of a watchlist entry or library item
type MediaKind string

const (
	MediaKindMovie   MediaKind = "movie"
	MediaKindShow    MediaKind = "show"
	MediaKindEpisode MediaKind = "episode" // only seen in events, always resolved to its show
	MediaKindUnknown MediaKind = ""
)

// ParseMediaKind maps a Plex type string to a MediaKind
func ParseMediaKind(s string) MediaKind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "movie":
		return MediaKindMovie
	case "show":
		return MediaKindShow
	case "episode":
		return MediaKindEpisode
	default:
		return MediaKindUnknown
	}
}

// LibraryType returns the Plex library search type for the kind.
// Returns 0 for kinds that cannot be searched.
func (k MediaKind) LibraryType() int {
	switch k {
	case MediaKindMovie:
		return 1
	case MediaKindShow:
		return 2
	default:
		return 0
	}
}

// RemovalPolicy decides when a show counts as watched
type RemovalPolicy string

const (
	PolicyOnStart    RemovalPolicy = "started"
	PolicyOnComplete RemovalPolicy = "completed"
)

// ParseRemovalPolicy parses "started" or "completed"
func ParseRemovalPolicy(s string) (RemovalPolicy, bool) {
	switch RemovalPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case PolicyOnStart:
		return PolicyOnStart, true
	case PolicyOnComplete:
		return PolicyOnComplete, true
	default:
		return "", false
	}
}

// RemovalOutcome is the result of one removal
type RemovalOutcome string

const (
	OutcomeRemoved       RemovalOutcome = "removed"
	OutcomeAlreadyAbsent RemovalOutcome = "already_absent"
	OutcomeFailed        RemovalOutcome = "failed"
)

// EntryStatus is what happened to one watchlist entry during a sweep
type EntryStatus string

const (
	EntryRemoved   EntryStatus = "removed"
	EntryDryRun    EntryStatus = "dry_run"
	EntrySkipped   EntryStatus = "skipped"
	EntryUnmatched EntryStatus = "unmatched"
	EntryFailed    EntryStatus = "failed"
)
