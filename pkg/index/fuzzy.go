package index

import (
	"context"
	"fmt"

	"github.com/bastiangx/wordindex/pkg/rank"
	"github.com/hbollon/go-edlib"
)

// Strategy names a fuzzy index layout. A build produces exactly one.
type Strategy string

const (
	StrategySymSpell Strategy = "symspell"
	StrategyBKTree   Strategy = "bktree"
)

// ParseStrategy validates a strategy name.
func ParseStrategy(name string) (Strategy, error) {
	switch s := Strategy(name); s {
	case StrategySymSpell, StrategyBKTree:
		return s, nil
	}
	return "", fmt.Errorf("unknown fuzzy strategy %q", name)
}

// FuzzyIndex is a typo-tolerant lookup built from the ranked vocabulary.
type FuzzyIndex interface {
	Strategy() Strategy
	Build(ctx context.Context, words []rank.Word) error
}

// FuzzyOptions configures NewFuzzyIndex.
type FuzzyOptions struct {
	MaxEdits int // delete budget, symspell only
	Workers  int // 0 means GOMAXPROCS, symspell only
}

// NewFuzzyIndex returns an empty index of the requested strategy.
func NewFuzzyIndex(strategy Strategy, opts FuzzyOptions) (FuzzyIndex, error) {
	switch strategy {
	case StrategySymSpell:
		return NewDeleteDictionary(opts.MaxEdits, opts.Workers), nil
	case StrategyBKTree:
		return NewBKTree(), nil
	}
	return nil, fmt.Errorf("unknown fuzzy strategy %q", strategy)
}

// EditDistance is the Levenshtein distance over code points:
// insertion, deletion and substitution all cost 1, no transpositions.
func EditDistance(a, b string) int {
	return edlib.LevenshteinDistance(a, b)
}
