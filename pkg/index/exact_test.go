package index

import (
	"testing"

	"github.com/bastiangx/wordindex/pkg/rank"
	"github.com/stretchr/testify/assert"
)

func ranked(words ...string) []rank.Word {
	out := make([]rank.Word, len(words))
	for i, w := range words {
		out[i] = rank.Word{Lower: w, Display: w, Rank: i + 1}
	}
	return out
}

func TestBuildWordsAndSuffixes(t *testing.T) {
	words := []rank.Word{
		{Lower: "hello", Display: "Hello", Rank: 1},
		{Lower: "café", Display: "Café", Rank: 2},
		{Lower: "damn", Display: "damn", Rank: 3, Hidden: true},
	}

	exact := BuildWords(words)
	suffixes := BuildSuffixes(words)
	assert.Len(t, exact, 3)
	assert.Len(t, suffixes, 3)

	assert.Equal(t, WordEntry{Lower: "hello", Reversed: "olleh", Rank: 1, Display: "Hello"}, exact[0])
	assert.Equal(t, SuffixEntry{Reversed: "éfac", Rank: 2, Display: "Café", Lower: "café"}, suffixes[1])
	assert.True(t, exact[2].Hidden)
	assert.True(t, suffixes[2].Hidden)

	for i := range words {
		assert.Equal(t, exact[i].Reversed, suffixes[i].Reversed)
		assert.Equal(t, exact[i].Rank, suffixes[i].Rank)
	}
}
