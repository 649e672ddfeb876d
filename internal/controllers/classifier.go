package controllers

import "github.com/cenodude/plex-watchlist/internal/models"

// IsEligibleForRemoval decides whether a local item has been watched enough
// to leave the watchlist. Missing progress counts as not watched.
func IsEligibleForRemoval(item *models.LocalItem, kind models.MediaKind, policy models.RemovalPolicy) bool {
	if item == nil {
		return false
	}

	switch kind {
	case models.MediaKindMovie:
		return item.Watched || item.ViewCount > 0
	case models.MediaKindShow:
		if policy == models.PolicyOnComplete {
			return item.LeafCount > 0 && item.ViewedLeafCount >= item.LeafCount
		}
		return item.ViewedLeafCount > 0
	default:
		return false
	}
}
