// Package verify checks a built artifact against the properties every build
// must hold: dense ranks, suffix symmetry, the prefix cap, fuzzy-index
// soundness and well-formed letter distributions.
//
// Checks read the artifact through store.Reader only, so they run the same
// against a fresh build and against a file shipped months ago.
package verify

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/bastiangx/wordindex/internal/utils"
	"github.com/bastiangx/wordindex/pkg/index"
	"github.com/bastiangx/wordindex/pkg/store"
	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// maxSamples bounds the violations kept per check.
const maxSamples = 20

// Check is the outcome of one property.
type Check struct {
	Name       string
	Skipped    bool
	Violations int
	Samples    []string
}

func (c *Check) failf(format string, args ...any) {
	c.Violations++
	if len(c.Samples) < maxSamples {
		c.Samples = append(c.Samples, fmt.Sprintf(format, args...))
	}
}

// Passed reports whether the check found nothing wrong.
func (c *Check) Passed() bool {
	return c.Violations == 0
}

// Report collects every check of a run.
type Report struct {
	Checks []*Check
}

// Failed reports whether any check found a violation.
func (r *Report) Failed() bool {
	for _, c := range r.Checks {
		if !c.Passed() {
			return true
		}
	}
	return false
}

// Verifier runs the checks over one artifact.
type Verifier struct {
	r     *store.Reader
	words []index.WordEntry
	kv    map[string]string
}

// New returns a Verifier reading from r.
func New(r *store.Reader) *Verifier {
	return &Verifier{r: r}
}

// Run executes every check. The error is only set when the artifact could
// not be read at all; property violations are reported in the Report.
func (v *Verifier) Run(ctx context.Context) (*Report, error) {
	var err error
	if v.words, err = v.r.Words(); err != nil {
		return nil, err
	}
	if v.kv, err = v.r.KV(); err != nil {
		return nil, err
	}

	checks := []struct {
		name string
		fn   func(context.Context, *Check) error
	}{
		{"rank density", v.checkRanks},
		{"suffix symmetry", v.checkSuffixes},
		{"prefix cap", v.checkPrefixes},
		{"delete dictionary", v.checkDeletes},
		{"bk-tree edges", v.checkBKTree},
		{"letter distribution", v.checkDistribution},
		{"metadata", v.checkMetadata},
	}

	report := &Report{}
	for _, c := range checks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		check := &Check{Name: c.name}
		if err := c.fn(ctx, check); err != nil {
			return nil, fmt.Errorf("failed to run %s check: %w", c.name, err)
		}
		log.Debugf("Check %s: %d violations", c.name, check.Violations)
		report.Checks = append(report.Checks, check)
	}
	return report, nil
}

func (v *Verifier) checkRanks(_ context.Context, c *Check) error {
	lowers := make(map[string]int, len(v.words))
	for i, w := range v.words {
		if w.Rank != i+1 {
			c.failf("rank %d found at position %d", w.Rank, i+1)
		}
		if prev, dup := lowers[w.Lower]; dup {
			c.failf("%q appears at ranks %d and %d", w.Lower, prev, w.Rank)
		}
		lowers[w.Lower] = w.Rank
		if w.Lower == "" {
			c.failf("empty word at rank %d", w.Rank)
		}
	}
	return nil
}

func (v *Verifier) checkSuffixes(_ context.Context, c *Check) error {
	suffixes, err := v.r.Suffixes()
	if err != nil {
		return err
	}
	if len(suffixes) != len(v.words) {
		c.failf("words has %d rows, words_by_suffix has %d", len(v.words), len(suffixes))
	}
	byRank := make(map[int]index.SuffixEntry, len(suffixes))
	for _, s := range suffixes {
		byRank[s.Rank] = s
	}
	for _, w := range v.words {
		s, ok := byRank[w.Rank]
		if !ok {
			c.failf("%q (rank %d) has no suffix row", w.Lower, w.Rank)
			continue
		}
		if want := utils.Reverse(w.Lower); s.Reversed != want || w.Reversed != want {
			c.failf("%q (rank %d) reversed as %q / %q", w.Lower, w.Rank, w.Reversed, s.Reversed)
		}
		if s.Display != w.Display || s.Lower != w.Lower || s.Hidden != w.Hidden {
			c.failf("suffix row of rank %d disagrees with words", w.Rank)
		}
	}
	return nil
}

// checkPrefixes compares each stored prefix with the best-ranked visible
// words a trie returns for it, and makes sure every prefix of every word is
// present.
func (v *Verifier) checkPrefixes(_ context.Context, c *Check) error {
	prefixCap := index.DefaultPrefixCap
	if s, ok := v.kv[store.MetaPrefixCap]; ok {
		n, err := strconv.Atoi(s)
		if err != nil {
			c.failf("kv %s is not a number: %q", store.MetaPrefixCap, s)
		} else {
			prefixCap = n
		}
	}

	rows, err := v.r.Prefixes()
	if err != nil {
		return err
	}
	visible := make(map[string][]int)
	hidden := make(map[string]map[int]struct{})
	for _, p := range rows {
		if p.Hidden {
			if hidden[p.Prefix] == nil {
				hidden[p.Prefix] = make(map[int]struct{})
			}
			hidden[p.Prefix][p.Rank] = struct{}{}
			continue
		}
		visible[p.Prefix] = append(visible[p.Prefix], p.Rank)
	}

	trie := patricia.NewTrie()
	for _, w := range v.words {
		if w.Hidden {
			for _, prefix := range utils.Prefixes(w.Lower) {
				if _, ok := hidden[prefix][w.Rank]; !ok {
					c.failf("hidden %q is missing under prefix %q", w.Lower, prefix)
				}
			}
			continue
		}
		trie.Insert(patricia.Prefix(w.Lower), w.Rank)
		for _, prefix := range utils.Prefixes(w.Lower) {
			if _, ok := visible[prefix]; !ok {
				visible[prefix] = nil
			}
		}
	}

	for prefix, got := range visible {
		var want []int
		err := trie.VisitSubtree(patricia.Prefix(prefix), func(_ patricia.Prefix, item patricia.Item) error {
			want = append(want, item.(int))
			return nil
		})
		if err != nil {
			return err
		}
		sort.Ints(want)
		if len(want) > prefixCap {
			want = want[:prefixCap]
		}
		sort.Ints(got)
		if !equalInts(got, want) {
			c.failf("prefix %q holds ranks %v, want %v", prefix, got, want)
		}
	}
	return nil
}

func (v *Verifier) checkDeletes(ctx context.Context, c *Check) error {
	ok, err := v.r.HasTable(store.TableDeletes)
	if err != nil {
		return err
	}
	if !ok {
		c.Skipped = true
		return nil
	}
	maxEdits := index.DefaultMaxEdits
	if s, ok := v.kv[store.MetaMaxEditDistance]; ok {
		if n, err := strconv.Atoi(s); err == nil {
			maxEdits = n
		}
	}

	for i, w := range v.words {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		for _, key := range index.Deletes(w.Lower, maxEdits) {
			rows, err := v.r.DeletesByHash(index.HashString(key))
			if err != nil {
				return err
			}
			found := false
			for _, row := range rows {
				if row.Lower == w.Lower {
					found = true
					break
				}
			}
			switch {
			case w.Hidden && found:
				c.failf("hidden %q is reachable through delete %q", w.Lower, key)
			case !w.Hidden && !found:
				c.failf("%q is not reachable through delete %q", w.Lower, key)
			}
		}
	}
	return nil
}

func (v *Verifier) checkBKTree(_ context.Context, c *Check) error {
	ok, err := v.r.HasTable(store.TableBKNodes)
	if err != nil {
		return err
	}
	if !ok {
		c.Skipped = true
		return nil
	}
	nodes, err := v.r.BKNodes()
	if err != nil {
		return err
	}
	edges, err := v.r.BKEdges()
	if err != nil {
		return err
	}

	byID := make(map[int]index.BKNode, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}
	if len(nodes) > 0 {
		if _, ok := byID[1]; !ok {
			c.failf("root node 1 is missing")
		}
	}
	if len(nodes) != len(v.words) {
		c.failf("bk_nodes has %d rows, words has %d", len(nodes), len(v.words))
	}

	parents := make(map[int]int, len(edges))
	labels := make(map[[2]int]int, len(edges))
	for _, e := range edges {
		parent, pok := byID[e.Parent]
		child, cok := byID[e.Child]
		if !pok || !cok {
			c.failf("edge %d -> %d references a missing node", e.Parent, e.Child)
			continue
		}
		if d := index.EditDistance(parent.Lower, child.Lower); d != e.Distance {
			c.failf("edge %q -> %q has distance %d, want %d", parent.Lower, child.Lower, e.Distance, d)
		}
		if other, dup := labels[[2]int{e.Parent, e.Distance}]; dup {
			c.failf("node %d has children %d and %d at distance %d", e.Parent, other, e.Child, e.Distance)
		}
		labels[[2]int{e.Parent, e.Distance}] = e.Child
		if p, dup := parents[e.Child]; dup {
			c.failf("node %d has parents %d and %d", e.Child, p, e.Parent)
		}
		parents[e.Child] = e.Parent
	}
	for _, n := range nodes {
		if _, ok := parents[n.ID]; !ok && n.ID != 1 {
			c.failf("node %d (%q) is unreachable", n.ID, n.Lower)
		}
	}
	return nil
}

func (v *Verifier) checkDistribution(_ context.Context, c *Check) error {
	var sums [2]int64
	for i, key := range []string{index.InitialDistributionKey, index.GeneralDistributionKey} {
		s, ok := v.kv[key]
		if !ok {
			c.failf("kv %s is missing", key)
			continue
		}
		counts, err := index.ParseCounts(s)
		if err != nil {
			c.failf("kv %s: %v", key, err)
			continue
		}
		for _, n := range counts {
			if n < 0 {
				c.failf("kv %s has a negative count", key)
			}
			sums[i] += n
		}
	}
	if sums[1] < sums[0] {
		c.failf("general total %d is below initial total %d", sums[1], sums[0])
	}
	return nil
}

func (v *Verifier) checkMetadata(_ context.Context, c *Check) error {
	s, ok := v.kv[store.MetaWordCount]
	if !ok {
		c.failf("kv %s is missing", store.MetaWordCount)
		return nil
	}
	if n, err := strconv.Atoi(s); err != nil || n != len(v.words) {
		c.failf("kv %s is %q, words has %d rows", store.MetaWordCount, s, len(v.words))
	}
	strategy, ok := v.kv[store.MetaFuzzyStrategy]
	if !ok {
		c.failf("kv %s is missing", store.MetaFuzzyStrategy)
		return nil
	}
	table := store.TableDeletes
	if strategy == string(index.StrategyBKTree) {
		table = store.TableBKNodes
	}
	present, err := v.r.HasTable(table)
	if err != nil {
		return err
	}
	if !present {
		c.failf("fuzzy strategy %s but table %s is missing", strategy, table)
	}
	return nil
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
