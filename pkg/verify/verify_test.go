package verify

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/bastiangx/wordindex/pkg/index"
	"github.com/bastiangx/wordindex/pkg/rank"
	"github.com/bastiangx/wordindex/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// artifact describes the tables to write. The tamper hooks corrupt a table
// before it is written.
type artifact struct {
	strategy index.Strategy
	cap      int
	kv       map[string]string

	tamperWords    func([]index.WordEntry) []index.WordEntry
	tamperSuffixes func([]index.SuffixEntry) []index.SuffixEntry
	tamperPrefixes func([]index.PrefixEntry) []index.PrefixEntry
	tamperDeletes  func([]index.DeleteEntry) []index.DeleteEntry
	tamperEdges    func([]index.BKEdge) []index.BKEdge
}

func vocabulary() []rank.Word {
	var words []rank.Word
	for i, w := range []string{"the", "then", "they", "there", "these", "cat", "cart", "care", "car", "damn"} {
		words = append(words, rank.Word{Lower: w, Display: w, Rank: i + 1, Hidden: w == "damn"})
	}
	return words
}

func (a artifact) write(t *testing.T) *store.Reader {
	t.Helper()
	if a.cap == 0 {
		a.cap = 3
	}
	words := vocabulary()
	path := filepath.Join(t.TempDir(), "words.db")
	w, err := store.Create(path, 7)
	require.NoError(t, err)
	require.NoError(t, w.CreateSchema(a.strategy))

	exact := index.BuildWords(words)
	if a.tamperWords != nil {
		exact = a.tamperWords(exact)
	}
	require.NoError(t, w.WriteWords(exact))

	suffixes := index.BuildSuffixes(words)
	if a.tamperSuffixes != nil {
		suffixes = a.tamperSuffixes(suffixes)
	}
	require.NoError(t, w.WriteSuffixes(suffixes))

	prefixes := index.NewPrefixBuilder(a.cap).Build(words)
	if a.tamperPrefixes != nil {
		prefixes = a.tamperPrefixes(prefixes)
	}
	require.NoError(t, w.WritePrefixes(prefixes))

	switch a.strategy {
	case index.StrategySymSpell:
		d := index.NewDeleteDictionary(1, 1)
		require.NoError(t, d.Build(context.Background(), words))
		rows := d.Entries()
		if a.tamperDeletes != nil {
			rows = a.tamperDeletes(rows)
		}
		require.NoError(t, w.WriteDeletes(rows))
	case index.StrategyBKTree:
		tree := index.NewBKTree()
		require.NoError(t, tree.Build(context.Background(), words))
		edges := tree.Edges()
		if a.tamperEdges != nil {
			edges = a.tamperEdges(append([]index.BKEdge(nil), edges...))
		}
		require.NoError(t, w.WriteBKRows(tree.Nodes(), edges))
	}

	dist := index.CountBytes([]byte("the cat sat on the mat"))
	kv := map[string]string{
		index.InitialDistributionKey: dist.InitialCSV(),
		index.GeneralDistributionKey: dist.GeneralCSV(),
		store.MetaFuzzyStrategy:      string(a.strategy),
		store.MetaMaxEditDistance:    "1",
		store.MetaPrefixCap:          strconv.Itoa(a.cap),
		store.MetaWordCount:          strconv.Itoa(len(words)),
	}
	for k, v := range a.kv {
		kv[k] = v
	}
	var pairs []store.KV
	for k, v := range kv {
		pairs = append(pairs, store.KV{Key: k, Value: v})
	}
	require.NoError(t, w.WriteKV(pairs))
	require.NoError(t, w.Commit())

	r, err := store.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func run(t *testing.T, r *store.Reader) (*Report, map[string]*Check) {
	t.Helper()
	report, err := New(r).Run(context.Background())
	require.NoError(t, err)
	byName := make(map[string]*Check)
	for _, c := range report.Checks {
		byName[c.Name] = c
	}
	return report, byName
}

func TestCleanArtifactsPass(t *testing.T) {
	for _, strategy := range []index.Strategy{index.StrategySymSpell, index.StrategyBKTree} {
		t.Run(string(strategy), func(t *testing.T) {
			report, checks := run(t, artifact{strategy: strategy}.write(t))
			for _, c := range report.Checks {
				assert.True(t, c.Passed(), "%s: %v", c.Name, c.Samples)
			}
			assert.False(t, report.Failed())
			if strategy == index.StrategySymSpell {
				assert.True(t, checks["bk-tree edges"].Skipped)
			} else {
				assert.True(t, checks["delete dictionary"].Skipped)
			}
		})
	}
}

func TestRankGapFails(t *testing.T) {
	r := artifact{
		strategy: index.StrategySymSpell,
		tamperWords: func(rows []index.WordEntry) []index.WordEntry {
			rows[4].Rank = 40
			return rows
		},
	}.write(t)
	report, checks := run(t, r)
	assert.True(t, report.Failed())
	assert.False(t, checks["rank density"].Passed())
}

func TestSuffixMismatchFails(t *testing.T) {
	r := artifact{
		strategy: index.StrategySymSpell,
		tamperSuffixes: func(rows []index.SuffixEntry) []index.SuffixEntry {
			rows[0].Reversed = "the"
			return rows
		},
	}.write(t)
	_, checks := run(t, r)
	assert.False(t, checks["suffix symmetry"].Passed())
}

func TestPrefixOverflowFails(t *testing.T) {
	r := artifact{
		strategy: index.StrategySymSpell,
		tamperPrefixes: func(rows []index.PrefixEntry) []index.PrefixEntry {
			// "these" is ranked 5th, past the cap of 3 for "t"
			return append(rows, index.PrefixEntry{Prefix: "t", Display: "these", Rank: 5})
		},
	}.write(t)
	_, checks := run(t, r)
	assert.False(t, checks["prefix cap"].Passed())
}

func TestPrefixMissingHiddenFails(t *testing.T) {
	r := artifact{
		strategy: index.StrategySymSpell,
		tamperPrefixes: func(rows []index.PrefixEntry) []index.PrefixEntry {
			var out []index.PrefixEntry
			for _, p := range rows {
				if p.Hidden && p.Prefix == "da" {
					continue
				}
				out = append(out, p)
			}
			return out
		},
	}.write(t)
	_, checks := run(t, r)
	assert.False(t, checks["prefix cap"].Passed())
}

func TestMissingDeleteFails(t *testing.T) {
	r := artifact{
		strategy: index.StrategySymSpell,
		tamperDeletes: func(rows []index.DeleteEntry) []index.DeleteEntry {
			var out []index.DeleteEntry
			for _, d := range rows {
				if d.Lower == "cart" && d.Key == "crt" {
					continue
				}
				out = append(out, d)
			}
			return out
		},
	}.write(t)
	_, checks := run(t, r)
	c := checks["delete dictionary"]
	assert.False(t, c.Passed())
	assert.Equal(t, 1, c.Violations)
}

func TestHiddenDeleteFails(t *testing.T) {
	r := artifact{
		strategy: index.StrategySymSpell,
		tamperDeletes: func(rows []index.DeleteEntry) []index.DeleteEntry {
			return append(rows, index.DeleteEntry{Hash: index.HashString("damn"), Key: "damn", Lower: "damn", Rank: 10, Display: "damn"})
		},
	}.write(t)
	_, checks := run(t, r)
	assert.False(t, checks["delete dictionary"].Passed())
}

func TestWrongEdgeDistanceFails(t *testing.T) {
	r := artifact{
		strategy: index.StrategyBKTree,
		tamperEdges: func(edges []index.BKEdge) []index.BKEdge {
			edges[0].Distance += 7
			return edges
		},
	}.write(t)
	_, checks := run(t, r)
	assert.False(t, checks["bk-tree edges"].Passed())
}

func TestOrphanNodeFails(t *testing.T) {
	r := artifact{
		strategy: index.StrategyBKTree,
		tamperEdges: func(edges []index.BKEdge) []index.BKEdge {
			return edges[:len(edges)-1]
		},
	}.write(t)
	_, checks := run(t, r)
	assert.False(t, checks["bk-tree edges"].Passed())
}

func TestBadDistributionFails(t *testing.T) {
	r := artifact{
		strategy: index.StrategySymSpell,
		kv:       map[string]string{index.GeneralDistributionKey: "1,2,3"},
	}.write(t)
	_, checks := run(t, r)
	assert.False(t, checks["letter distribution"].Passed())
}

func TestMetadataMismatchFails(t *testing.T) {
	r := artifact{
		strategy: index.StrategySymSpell,
		kv: map[string]string{
			store.MetaWordCount:     "99",
			store.MetaFuzzyStrategy: string(index.StrategyBKTree),
		},
	}.write(t)
	_, checks := run(t, r)
	c := checks["metadata"]
	assert.Equal(t, 2, c.Violations)
}

func TestSamplesAreBounded(t *testing.T) {
	c := &Check{Name: "x"}
	for i := 0; i < maxSamples+10; i++ {
		c.failf("violation %d", i)
	}
	assert.Equal(t, maxSamples+10, c.Violations)
	assert.Len(t, c.Samples, maxSamples)
}
