package utils

import (
	"strings"
)

// FirstSeenFilter keeps the first occurrence of every word, compared case-insensitively.
// Not safe for concurrent use; each pass owns its own filter.
type FirstSeenFilter struct {
	seenWords map[string]bool
}

// NewFirstSeenFilter creates an empty filter sized for roughly n words.
func NewFirstSeenFilter(n int) *FirstSeenFilter {
	return &FirstSeenFilter{seenWords: make(map[string]bool, n)}
}

// ShouldInclude checks if a word should be included (not a duplicate).
// Returns true on the first sighting of the lowercase form, false afterwards.
func (f *FirstSeenFilter) ShouldInclude(word string) bool {
	lowerWord := strings.ToLower(word)
	if f.seenWords[lowerWord] {
		return false
	}
	f.seenWords[lowerWord] = true
	return true
}

// Len returns how many distinct lowercase forms were accepted.
func (f *FirstSeenFilter) Len() int {
	return len(f.seenWords)
}
