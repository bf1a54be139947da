/*
Package index derives the lookup structures of the artifact from the ranked
vocabulary.

	words           exact lookup and rank of every word
	words_by_suffix the same rows keyed by the reversed word
	prefixes        best completions per prefix, capped
	fuzzy           delete dictionary or BK-tree, one per build
	distribution    first-letter and any-letter histograms

Every builder reads the ranked slice without modifying it, so the builders can
run side by side.
*/
package index

import (
	"github.com/bastiangx/wordindex/internal/utils"
	"github.com/bastiangx/wordindex/pkg/rank"
)

// WordEntry is a row of the words table.
type WordEntry struct {
	Lower    string
	Reversed string
	Rank     int
	Display  string
	Hidden   bool
}

// SuffixEntry is a row of the words_by_suffix table.
type SuffixEntry struct {
	Reversed string
	Rank     int
	Display  string
	Lower    string
	Hidden   bool
}

// BuildWords projects each ranked word to its exact-lookup row.
func BuildWords(words []rank.Word) []WordEntry {
	out := make([]WordEntry, len(words))
	for i, w := range words {
		out[i] = WordEntry{
			Lower:    w.Lower,
			Reversed: utils.Reverse(w.Lower),
			Rank:     w.Rank,
			Display:  w.Display,
			Hidden:   w.Hidden,
		}
	}
	return out
}

// BuildSuffixes projects each ranked word to its suffix-lookup row.
func BuildSuffixes(words []rank.Word) []SuffixEntry {
	out := make([]SuffixEntry, len(words))
	for i, w := range words {
		out[i] = SuffixEntry{
			Reversed: utils.Reverse(w.Lower),
			Rank:     w.Rank,
			Display:  w.Display,
			Lower:    w.Lower,
			Hidden:   w.Hidden,
		}
	}
	return out
}
