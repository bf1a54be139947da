package index

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/bastiangx/wordindex/pkg/rank"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEditDistance(t *testing.T) {
	testCases := []struct {
		a, b     string
		expected int
	}{
		{"kitten", "sitting", 3},
		{"saturday", "sunday", 3},
		{"book", "back", 2},
		{"book", "books", 1},
		{"hello", "hallo", 1},
		{"", "abc", 3},
		{"abc", "", 3},
		{"", "", 0},
		{"ab", "ba", 2},
		{"café", "cafe", 1},
	}
	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%s_%s", tc.a, tc.b), func(t *testing.T) {
			assert.Equal(t, tc.expected, EditDistance(tc.a, tc.b))
		})
	}
}

func TestBKTreeEdges(t *testing.T) {
	vocab := []string{"book", "books", "cake", "boo", "cape", "cart", "boon", "cook", "hello", "help"}
	words := ranked(vocab...)
	words = append(words, rank.Word{Lower: "damn", Display: "damn", Rank: len(vocab) + 1, Hidden: true})

	tree := NewBKTree()
	require.NoError(t, tree.Build(context.Background(), words))
	assert.Equal(t, len(words), tree.Len())

	nodes := tree.Nodes()
	assert.Equal(t, 1, nodes[0].ID)
	assert.Equal(t, "book", nodes[0].Lower)
	assert.True(t, nodes[len(nodes)-1].Hidden)

	labels := map[[2]int]bool{}
	parents := map[int]bool{}
	for _, e := range tree.Edges() {
		parent, child := nodes[e.Parent-1], nodes[e.Child-1]
		assert.Equal(t, EditDistance(parent.Lower, child.Lower), e.Distance)
		assert.False(t, labels[[2]int{e.Parent, e.Distance}], "repeated label under %d", e.Parent)
		labels[[2]int{e.Parent, e.Distance}] = true
		assert.False(t, parents[e.Child])
		parents[e.Child] = true
	}
	assert.Len(t, tree.Edges(), len(nodes)-1)
}

func TestBKTreeSkipsRepeatedWords(t *testing.T) {
	tree := NewBKTree()
	require.NoError(t, tree.Build(context.Background(), ranked("same", "same", "name")))
	assert.Equal(t, 2, tree.Len())
}

func TestBKTreeSearchMatchesBruteForce(t *testing.T) {
	var vocab []string
	for _, a := range []string{"b", "c", "d", "h", "m"} {
		for _, b := range []string{"a", "o", "e"} {
			for _, c := range []string{"t", "ll", "ok", "rt"} {
				vocab = append(vocab, a+b+c)
			}
		}
	}
	tree := NewBKTree()
	require.NoError(t, tree.Build(context.Background(), ranked(vocab...)))

	for _, query := range []string{"cat", "hellp", "bk", "mort", "zzz"} {
		for radius := 0; radius <= 2; radius++ {
			var want []string
			for _, w := range vocab {
				if EditDistance(query, w) <= radius {
					want = append(want, w)
				}
			}
			var got []string
			for _, m := range tree.Search(query, radius) {
				assert.Equal(t, EditDistance(query, m.Node.Lower), m.Distance)
				got = append(got, m.Node.Lower)
			}
			sort.Strings(want)
			sort.Strings(got)
			assert.Equal(t, want, got, "query %q radius %d", query, radius)
		}
	}
}

func TestBKTreeEmpty(t *testing.T) {
	tree := NewBKTree()
	assert.Nil(t, tree.Search("x", 1))
	assert.Empty(t, tree.Edges())
}

func TestNewFuzzyIndex(t *testing.T) {
	fi, err := NewFuzzyIndex(StrategyBKTree, FuzzyOptions{})
	require.NoError(t, err)
	assert.Equal(t, StrategyBKTree, fi.Strategy())

	fi, err = NewFuzzyIndex(StrategySymSpell, FuzzyOptions{MaxEdits: 1})
	require.NoError(t, err)
	assert.Equal(t, StrategySymSpell, fi.Strategy())
	assert.Equal(t, 1, fi.(*DeleteDictionary).MaxEdits)

	_, err = NewFuzzyIndex("trigram", FuzzyOptions{})
	assert.Error(t, err)
	_, err = ParseStrategy("trigram")
	assert.Error(t, err)
}

func BenchmarkBKTreeInsert(b *testing.B) {
	var vocab []string
	for i := 0; i < 2000; i++ {
		vocab = append(vocab, fmt.Sprintf("word%d", i*7919))
	}
	words := ranked(vocab...)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tree := NewBKTree()
		for _, w := range words {
			tree.Insert(w)
		}
	}
}
