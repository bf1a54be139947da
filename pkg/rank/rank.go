// Package rank filters the raw word source against the legitimacy and hidden
// lists and assigns dense ranks to the surviving vocabulary.
package rank

import (
	"errors"
	"sort"

	"github.com/bastiangx/wordindex/internal/utils"
	"github.com/bastiangx/wordindex/pkg/lexicon"
	"github.com/charmbracelet/log"
	mapset "github.com/deckarep/golang-set/v2"
)

// ErrEmptyCorpus is returned when no source word survives filtering.
var ErrEmptyCorpus = errors.New("empty corpus: no source word is legitimate or hidden")

// Word is one ranked vocabulary entry.
type Word struct {
	Lower   string
	Display string
	Rank    int // 1 is best
	Hidden  bool
}

// Stats summarizes a ranking pass.
type Stats struct {
	SourceEntries int
	Duplicates    int
	Rejected      int
	Retained      int
	Hidden        int
}

// Rank keeps every source word that is legitimate or hidden, one per lowercase
// form (the first one seen), and numbers them 1..N. Frequency sources are
// ordered by descending count, ordinal sources by line position; ties keep
// input order.
func Rank(src *lexicon.Source, legit, hidden mapset.Set[string]) ([]Word, Stats, error) {
	stats := Stats{SourceEntries: len(src.Entries)}
	seen := utils.NewFirstSeenFilter(len(src.Entries))

	candidates := make([]lexicon.Entry, 0, len(src.Entries))
	for _, entry := range src.Entries {
		if !seen.ShouldInclude(entry.Lower) {
			stats.Duplicates++
			continue
		}
		if !legit.Contains(entry.Lower) && !hidden.Contains(entry.Lower) {
			stats.Rejected++
			continue
		}
		candidates = append(candidates, entry)
	}

	if len(candidates) == 0 {
		return nil, stats, ErrEmptyCorpus
	}

	switch src.Format {
	case lexicon.FormatFrequency:
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].Frequency > candidates[j].Frequency
		})
	default:
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].Ordinal < candidates[j].Ordinal
		})
	}

	words := make([]Word, len(candidates))
	for i, c := range candidates {
		isHidden := hidden.Contains(c.Lower)
		words[i] = Word{
			Lower:   c.Lower,
			Display: c.Word,
			Rank:    i + 1,
			Hidden:  isHidden,
		}
		if isHidden {
			stats.Hidden++
		}
	}
	stats.Retained = len(words)

	log.Debugf("Ranked %d words (%d hidden, %d rejected, %d duplicates)",
		stats.Retained, stats.Hidden, stats.Rejected, stats.Duplicates)
	return words, stats, nil
}
