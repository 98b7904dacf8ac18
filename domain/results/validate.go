package results

import (
	"math"

	"zymeboard/internal/errors"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/mat"
)

const (
	minRecursionBudget = 10000
	// MaxRecursionBudget is the hard ceiling on tree traversal depth
	MaxRecursionBudget = 50000
)

// RecursionBudget returns the traversal depth allowed for a dataset of n records
func RecursionBudget(n int) int {
	budget := n
	if budget < minRecursionBudget {
		budget = minRecursionBudget
	}
	if budget > MaxRecursionBudget {
		budget = MaxRecursionBudget
	}
	return budget
}

// TreeFromMatrix reads an (m,3) array of [from, to, weight] rows
func TreeFromMatrix(m *mat.Dense) (*SpanningTree, error) {
	rows, cols := m.Dims()
	if cols < 3 {
		return nil, errors.SchemaMismatch("spanning tree array has %d columns, want 3", cols)
	}
	tree := &SpanningTree{Edges: make([]Edge, rows)}
	for i := 0; i < rows; i++ {
		from, ok := asIndex(m.At(i, 0))
		if !ok {
			return nil, errors.SchemaMismatch("spanning tree edge %d has non-integer endpoint %v", i, m.At(i, 0))
		}
		to, ok := asIndex(m.At(i, 1))
		if !ok {
			return nil, errors.SchemaMismatch("spanning tree edge %d has non-integer endpoint %v", i, m.At(i, 1))
		}
		tree.Edges[i] = Edge{From: from, To: to, Weight: m.At(i, 2)}
	}
	return tree, nil
}

// LinkageFromMatrix reads an (n-1,4) array of [left, right, distance, size] rows
func LinkageFromMatrix(m *mat.Dense) (*Linkage, error) {
	rows, cols := m.Dims()
	if cols < 4 {
		return nil, errors.SchemaMismatch("linkage array has %d columns, want 4", cols)
	}
	link := &Linkage{Steps: make([]Merge, rows)}
	for i := 0; i < rows; i++ {
		left, ok1 := asIndex(m.At(i, 0))
		right, ok2 := asIndex(m.At(i, 1))
		size, ok3 := asIndex(m.At(i, 3))
		if !ok1 || !ok2 || !ok3 {
			return nil, errors.SchemaMismatch("linkage row %d has non-integer cluster ids or size", i)
		}
		link.Steps[i] = Merge{Left: left, Right: right, Distance: m.At(i, 2), Size: size}
	}
	return link, nil
}

func asIndex(v float64) (int, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v != math.Trunc(v) {
		return 0, false
	}
	return int(v), true
}

// Validate checks that every artifact indexes consistently into the dataset
// rows and that the legend attribute exists.
func (r *Results) Validate(legendAttribute string) error {
	n := r.Dataset.Len()
	if n == 0 {
		return errors.SchemaMismatch("dataset has no rows")
	}
	if !r.Dataset.HasColumn(legendAttribute) {
		return errors.SchemaMismatch("legend attribute %q is not a dataset column", legendAttribute)
	}

	if got := r.Embedding.Len(); got != n {
		return errors.SchemaMismatch("embedding has %d rows, dataset has %d", got, n)
	}
	if _, cols := r.Embedding.Coords.Dims(); cols < 2 {
		return errors.SchemaMismatch("embedding has %d columns, want at least 2", cols)
	}

	if err := validateTree(r.Tree, n); err != nil {
		return err
	}
	return validateLinkage(r.Linkage, n)
}

func validateTree(tree *SpanningTree, n int) error {
	if tree == nil {
		return errors.SchemaMismatch("spanning tree is missing")
	}
	if len(tree.Edges) > n-1 {
		return errors.SchemaMismatch("spanning tree has %d edges, at most %d allowed for %d records", len(tree.Edges), n-1, n)
	}
	for i, e := range tree.Edges {
		if e.From >= n || e.To >= n {
			return errors.SchemaMismatch("spanning tree edge %d (%d-%d) references a record outside 0..%d", i, e.From, e.To, n-1)
		}
		if e.From == e.To {
			return errors.SchemaMismatch("spanning tree edge %d is a self loop on %d", i, e.From)
		}
	}
	return nil
}

func validateLinkage(link *Linkage, n int) error {
	if link == nil {
		return errors.SchemaMismatch("linkage matrix is missing")
	}
	if got := link.Leaves(); got != n {
		return errors.SchemaMismatch("linkage covers %d leaves, dataset has %d rows", got, n)
	}
	used := make([]bool, 2*n-1)
	for i, step := range link.Steps {
		formed := n + i
		for _, id := range []int{step.Left, step.Right} {
			if id >= formed {
				return errors.SchemaMismatch("linkage row %d references cluster %d before it is formed", i, id)
			}
			if used[id] {
				return errors.SchemaMismatch("linkage row %d merges cluster %d a second time", i, id)
			}
			used[id] = true
		}
	}
	return nil
}

// TreeComponents returns the number of connected components the spanning
// tree induces over all n records. A full MST yields 1.
func TreeComponents(tree *SpanningTree, n int) int {
	g := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	for i := 0; i < n; i++ {
		g.AddNode(simple.Node(i))
	}
	for _, e := range tree.Edges {
		if e.From == e.To || e.From >= n || e.To >= n {
			continue
		}
		g.SetWeightedEdge(g.NewWeightedEdge(simple.Node(e.From), simple.Node(e.To), e.Weight))
	}
	return len(topo.ConnectedComponents(g))
}
