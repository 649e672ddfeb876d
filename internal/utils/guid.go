package utils

import "strings"

// NativeGUIDPrefix marks GUIDs issued by Plex itself
const NativeGUIDPrefix = "plex://"

// IsNativeGUID reports whether guid is a Plex-issued GUID
func IsNativeGUID(guid string) bool {
	return strings.HasPrefix(guid, NativeGUIDPrefix)
}

// ExtractGUID returns the GUID and, for plex://<kind>/<id> GUIDs, the raw id.
// Returns ("", "") for an empty string. Malformed native GUIDs yield an empty raw id.
func ExtractGUID(guid string) (string, string) {
	guid = strings.TrimSpace(guid)
	if guid == "" {
		return "", ""
	}
	if !IsNativeGUID(guid) {
		return guid, ""
	}

	rest := strings.TrimPrefix(guid, NativeGUIDPrefix)
	slash := strings.Index(rest, "/")
	if slash <= 0 {
		return guid, ""
	}
	rawID := rest[strings.LastIndex(rest, "/")+1:]
	return guid, rawID
}

// GUIDVariants collects the primary GUID and its alternates without duplicates,
// Plex GUIDs first, each group in first-seen order
func GUIDVariants(primary string, alternates ...string) []string {
	seen := make(map[string]bool, len(alternates)+1)
	var native, others []string

	add := func(g string) {
		if g == "" || seen[g] {
			return
		}
		seen[g] = true
		if IsNativeGUID(g) {
			native = append(native, g)
		} else {
			others = append(others, g)
		}
	}

	add(primary)
	for _, g := range alternates {
		add(g)
	}

	return append(native, others...)
}

// RawIDFor derives the discover rating key for an item: the raw id of the
// primary GUID, else the raw id of the first Plex GUID among the variants
func RawIDFor(primary string, variants []string) string {
	if _, rawID := ExtractGUID(primary); rawID != "" {
		return rawID
	}
	for _, g := range variants {
		if _, rawID := ExtractGUID(g); rawID != "" {
			return rawID
		}
	}
	return ""
}
