package index

import (
	"context"
	"runtime"
	"sync"

	"github.com/bastiangx/wordindex/pkg/rank"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxEdits is the default delete budget of the delete dictionary.
const DefaultMaxEdits = 2

const (
	hashMask         = 0x7FFFFFFFFFFFFFFF
	deleteChunkWords = 1024
)

// HashString is the 63-bit polynomial hash used for delete keys.
// It walks code points with multiplier 31 and masks after every step, so it
// gives the same value on every platform and in every consumer.
func HashString(s string) int64 {
	var h uint64
	for _, r := range s {
		h = (h*31 + uint64(r)) & hashMask
	}
	return int64(h)
}

// Deletes returns word plus every distinct string reachable from it by
// deleting up to maxEdits code points. Strings are never shortened below one
// code point. The result is in breadth-first order and has no duplicates.
func Deletes(word string, maxEdits int) []string {
	if word == "" {
		return nil
	}
	seen := map[string]struct{}{word: {}}
	out := []string{word}
	frontier := []string{word}

	for depth := 0; depth < maxEdits && len(frontier) > 0; depth++ {
		var next []string
		for _, w := range frontier {
			runes := []rune(w)
			if len(runes) <= 1 {
				continue
			}
			for i := range runes {
				del := string(runes[:i]) + string(runes[i+1:])
				if _, dup := seen[del]; dup {
					continue
				}
				seen[del] = struct{}{}
				out = append(out, del)
				next = append(next, del)
			}
		}
		frontier = next
	}
	return out
}

// DeleteEntry is a row of the symspell_deletes table.
type DeleteEntry struct {
	Hash    int64
	Key     string
	Lower   string
	Rank    int
	Display string
}

// DeleteDictionary is the symmetric-delete fuzzy index.
// Hidden words are left out so they are never offered as corrections.
type DeleteDictionary struct {
	MaxEdits int
	Workers  int

	entries []DeleteEntry

	lookupOnce sync.Once
	byHash     map[int64][]int
}

// NewDeleteDictionary returns an empty dictionary. maxEdits < 0 falls back to
// DefaultMaxEdits and workers < 1 to GOMAXPROCS.
func NewDeleteDictionary(maxEdits, workers int) *DeleteDictionary {
	if maxEdits < 0 {
		maxEdits = DefaultMaxEdits
	}
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &DeleteDictionary{MaxEdits: maxEdits, Workers: workers}
}

func (d *DeleteDictionary) Strategy() Strategy { return StrategySymSpell }

// Build generates the delete rows of every visible word. Words are split into
// chunks that are expanded concurrently; rows come out in rank order.
func (d *DeleteDictionary) Build(ctx context.Context, words []rank.Word) error {
	chunks := (len(words) + deleteChunkWords - 1) / deleteChunkWords
	results := make([][]DeleteEntry, chunks)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.Workers)
	for c := 0; c < chunks; c++ {
		lo := c * deleteChunkWords
		hi := min(lo+deleteChunkWords, len(words))
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[c] = d.expand(words[lo:hi])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	total := 0
	for _, r := range results {
		total += len(r)
	}
	d.entries = make([]DeleteEntry, 0, total)
	for _, r := range results {
		d.entries = append(d.entries, r...)
	}

	log.Debugf("Delete dictionary: %d rows for %d words (max edits %d)", len(d.entries), len(words), d.MaxEdits)
	return nil
}

func (d *DeleteDictionary) expand(words []rank.Word) []DeleteEntry {
	var out []DeleteEntry
	for _, w := range words {
		if w.Hidden {
			continue
		}
		// (hash, word) is the table key; distinct deletes that collide keep the first.
		hashes := make(map[int64]struct{})
		for _, key := range Deletes(w.Lower, d.MaxEdits) {
			h := HashString(key)
			if _, dup := hashes[h]; dup {
				continue
			}
			hashes[h] = struct{}{}
			out = append(out, DeleteEntry{
				Hash:    h,
				Key:     key,
				Lower:   w.Lower,
				Rank:    w.Rank,
				Display: w.Display,
			})
		}
	}
	return out
}

// Entries returns the built rows in rank order.
func (d *DeleteDictionary) Entries() []DeleteEntry {
	return d.entries
}

// Lookup probes the dictionary the way a consumer does: it hashes the delete
// set of query and collects every row stored under those hashes. The result
// is a superset of the words within MaxEdits of query; callers that need
// precision must re-check with EditDistance.
func (d *DeleteDictionary) Lookup(query string) []DeleteEntry {
	d.lookupOnce.Do(func() {
		d.byHash = make(map[int64][]int, len(d.entries))
		for i, e := range d.entries {
			d.byHash[e.Hash] = append(d.byHash[e.Hash], i)
		}
	})

	seen := make(map[string]struct{})
	var out []DeleteEntry
	for _, key := range Deletes(query, d.MaxEdits) {
		for _, i := range d.byHash[HashString(key)] {
			e := d.entries[i]
			if _, dup := seen[e.Lower]; dup {
				continue
			}
			seen[e.Lower] = struct{}{}
			out = append(out, e)
		}
	}
	return out
}
