package index

import (
	"context"

	"github.com/bastiangx/wordindex/pkg/rank"
	"github.com/charmbracelet/log"
)

// BKNode is a row of the bk_nodes table. IDs start at 1 (the root) and
// follow insertion order; they carry no ranking meaning.
type BKNode struct {
	ID      int
	Display string
	Lower   string
	Rank    int
	Hidden  bool
}

// BKEdge is a row of the bk_edges table. Distance is the edit distance
// between the parent and child Lower strings.
type BKEdge struct {
	Parent   int
	Child    int
	Distance int
}

// BKMatch is a search hit.
type BKMatch struct {
	Node     BKNode
	Distance int
}

type edgeKey struct {
	parent   int
	distance int
}

// BKTree is a metric tree over edit distance, stored as an arena of nodes
// plus a (parent, distance) -> child edge map instead of pointers.
type BKTree struct {
	nodes []BKNode
	edges map[edgeKey]int
	order []BKEdge
}

// NewBKTree returns an empty tree.
func NewBKTree() *BKTree {
	return &BKTree{edges: make(map[edgeKey]int)}
}

func (t *BKTree) Strategy() Strategy { return StrategyBKTree }

// Build inserts the ranked words in rank order, so the best word is the root.
// Repeated lowercase forms are skipped; they would only add a distance-0 level.
func (t *BKTree) Build(ctx context.Context, words []rank.Word) error {
	seen := make(map[string]struct{}, len(words))
	for i, w := range words {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if _, dup := seen[w.Lower]; dup {
			log.Debugf("BK-tree: skipping repeated word %q", w.Lower)
			continue
		}
		seen[w.Lower] = struct{}{}
		t.Insert(w)
	}
	log.Debugf("BK-tree: %d nodes, %d edges", len(t.nodes), len(t.order))
	return nil
}

// Insert adds w and returns its node ID. The first word becomes the root.
// Otherwise the walk follows the edge whose label equals the distance to the
// current node and hangs w off the first node lacking such an edge.
func (t *BKTree) Insert(w rank.Word) int {
	id := len(t.nodes) + 1
	t.nodes = append(t.nodes, BKNode{
		ID:      id,
		Display: w.Display,
		Lower:   w.Lower,
		Rank:    w.Rank,
		Hidden:  w.Hidden,
	})
	if id == 1 {
		return id
	}

	current := 1
	for {
		d := EditDistance(w.Lower, t.nodes[current-1].Lower)
		key := edgeKey{parent: current, distance: d}
		child, ok := t.edges[key]
		if !ok {
			t.edges[key] = id
			t.order = append(t.order, BKEdge{Parent: current, Child: id, Distance: d})
			return id
		}
		current = child
	}
}

// Search returns every node within radius of query. Children are only
// visited when their edge label d satisfies |d - dist(query, node)| <= radius.
func (t *BKTree) Search(query string, radius int) []BKMatch {
	if len(t.nodes) == 0 {
		return nil
	}
	var out []BKMatch
	stack := []int{1}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node := t.nodes[id-1]
		d := EditDistance(query, node.Lower)
		if d <= radius {
			out = append(out, BKMatch{Node: node, Distance: d})
		}
		for label := max(0, d-radius); label <= d+radius; label++ {
			if child, ok := t.edges[edgeKey{parent: id, distance: label}]; ok {
				stack = append(stack, child)
			}
		}
	}
	return out
}

// Nodes returns the nodes in ID order.
func (t *BKTree) Nodes() []BKNode {
	return t.nodes
}

// Edges returns the edges in creation order.
func (t *BKTree) Edges() []BKEdge {
	return t.order
}

// Len returns the number of nodes.
func (t *BKTree) Len() int {
	return len(t.nodes)
}
