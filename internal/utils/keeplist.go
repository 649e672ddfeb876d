package utils

import (
	"bufio"
	"os"
	"strings"
)

// KeepList holds titles and GUIDs that must stay on the watchlist
type KeepList struct {
	titles map[string]bool
	guids  map[string]bool
}

// LoadKeepList loads keep-list entries from a file, one title or GUID per line.
// A missing file yields an empty list.
func LoadKeepList(path string) (*KeepList, error) {
	list := &KeepList{titles: map[string]bool{}, guids: map[string]bool{}}

	if path == "" {
		return list, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return list, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		list.Add(line)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

// Add adds a title or a GUID (anything containing "://") to the list
func (k *KeepList) Add(entry string) {
	if strings.Contains(entry, "://") {
		k.guids[entry] = true
		return
	}
	k.titles[strings.ToLower(entry)] = true
}

// Keeps reports whether the entry must stay on the watchlist.
// Titles compare case-insensitively but otherwise exactly.
func (k *KeepList) Keeps(title, guid string) bool {
	if k == nil {
		return false
	}
	if guid != "" && k.guids[guid] {
		return true
	}
	return k.titles[strings.ToLower(strings.TrimSpace(title))]
}

// Len returns the number of entries
func (k *KeepList) Len() int {
	if k == nil {
		return 0
	}
	return len(k.titles) + len(k.guids)
}
