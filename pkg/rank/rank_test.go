package rank

import (
	"strings"
	"testing"

	"github.com/bastiangx/wordindex/pkg/lexicon"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func source(t *testing.T, format lexicon.SourceFormat, lines ...string) *lexicon.Source {
	t.Helper()
	src, err := lexicon.ReadSource(strings.NewReader(strings.Join(lines, "\n")), format)
	require.NoError(t, err)
	return src
}

func TestRankOrdinal(t *testing.T) {
	src := source(t, lexicon.FormatOrdinal, "The", "of", "zzzxq", "damn", "the", "And")
	legit := mapset.NewSet("the", "of", "and")
	hidden := mapset.NewSet("damn")

	words, stats, err := Rank(src, legit, hidden)
	require.NoError(t, err)

	assert.Equal(t, []Word{
		{Lower: "the", Display: "The", Rank: 1},
		{Lower: "of", Display: "of", Rank: 2},
		{Lower: "damn", Display: "damn", Rank: 3, Hidden: true},
		{Lower: "and", Display: "And", Rank: 4},
	}, words)
	assert.Equal(t, Stats{SourceEntries: 6, Duplicates: 1, Rejected: 1, Retained: 4, Hidden: 1}, stats)
}

func TestRankFrequency(t *testing.T) {
	src := source(t, lexicon.FormatFrequency,
		"cat\t10",
		"dog\t30",
		"Bird\t10",
		"DOG\t99",
		"eel\t20",
	)
	legit := mapset.NewSet("cat", "dog", "bird", "eel")

	words, _, err := Rank(src, legit, mapset.NewSet[string]())
	require.NoError(t, err)

	got := make([]string, len(words))
	for i, w := range words {
		got[i] = w.Display
		assert.Equal(t, i+1, w.Rank)
	}
	// first-seen "dog" keeps its count of 30; cat and Bird tie and keep input order
	assert.Equal(t, []string{"dog", "eel", "cat", "Bird"}, got)
}

func TestRankDenseAndUnique(t *testing.T) {
	src := source(t, lexicon.FormatOrdinal, "a", "B", "b", "c", "A", "d", "x")
	words, _, err := Rank(src, mapset.NewSet("a", "b", "c", "d"), mapset.NewSet[string]())
	require.NoError(t, err)

	seen := map[string]bool{}
	for i, w := range words {
		assert.Equal(t, i+1, w.Rank)
		assert.False(t, seen[w.Lower], "duplicate %q", w.Lower)
		seen[w.Lower] = true
	}
	assert.Len(t, words, 4)
}

func TestRankEmptyCorpus(t *testing.T) {
	src := source(t, lexicon.FormatOrdinal, "zzzxq", "qqq")
	_, stats, err := Rank(src, mapset.NewSet("hello"), mapset.NewSet[string]())
	assert.ErrorIs(t, err, ErrEmptyCorpus)
	assert.Equal(t, 2, stats.Rejected)
}
