package index

import (
	"github.com/bastiangx/wordindex/internal/utils"
	"github.com/bastiangx/wordindex/pkg/rank"
)

// DefaultPrefixCap is the number of visible completions kept per prefix.
const DefaultPrefixCap = 20

// PrefixEntry is a row of the prefixes table.
type PrefixEntry struct {
	Prefix  string
	Display string
	Rank    int
	Hidden  bool
}

// PrefixBuilder emits prefix rows with a per-prefix cap on visible words.
type PrefixBuilder struct {
	Cap int
}

// NewPrefixBuilder returns a builder with the given cap, or DefaultPrefixCap if capacity < 1.
func NewPrefixBuilder(capacity int) *PrefixBuilder {
	if capacity < 1 {
		capacity = DefaultPrefixCap
	}
	return &PrefixBuilder{Cap: capacity}
}

// Build expects words in ascending rank order, which makes the kept visible
// rows for each prefix the best-ranked ones. Hidden words are always emitted
// and never count toward the cap.
func (b *PrefixBuilder) Build(words []rank.Word) []PrefixEntry {
	visible := make(map[string]int)
	out := make([]PrefixEntry, 0, len(words)*4)

	for _, w := range words {
		for _, prefix := range utils.Prefixes(w.Lower) {
			if !w.Hidden {
				if visible[prefix] >= b.Cap {
					continue
				}
				visible[prefix]++
			}
			out = append(out, PrefixEntry{
				Prefix:  prefix,
				Display: w.Display,
				Rank:    w.Rank,
				Hidden:  w.Hidden,
			})
		}
	}
	return out
}
