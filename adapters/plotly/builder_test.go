package plotly

import (
	"testing"

	"zymeboard/domain/figure"
	"zymeboard/domain/results"
	"zymeboard/internal/errors"
	"zymeboard/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func synthetic(t *testing.T) *results.Results {
	t.Helper()
	res, err := testkit.Generate(testkit.DefaultConfig())
	require.NoError(t, err)
	return res
}

func TestScatterOneTracePerCategory(t *testing.T) {
	res := synthetic(t)
	fig, err := NewBuilder("accession").Scatter(res.Dataset, res.Embedding, "cluster")
	require.NoError(t, err)

	categories := res.Dataset.Categories("cluster")
	require.Len(t, fig.Data, len(categories))
	assert.Equal(t, []string{"-1", "0", "1", "2", "3"}, categories)

	total := 0
	for i, tr := range fig.Data {
		assert.Equal(t, categories[i], tr.Name)
		assert.Equal(t, "scattergl", tr.Type)
		assert.Len(t, tr.X, len(tr.CustomData))
		total += len(tr.CustomData)
	}
	assert.Equal(t, res.Dataset.Len(), total)

	noise, ok := fig.Trace("-1")
	require.True(t, ok)
	assert.Equal(t, noiseColor, noise.Marker.Color)
	assert.Contains(t, noise.Text[0], "SYN00016")
}

func TestScatterUnknownLegend(t *testing.T) {
	res := synthetic(t)
	_, err := NewBuilder("accession").Scatter(res.Dataset, res.Embedding, "family")
	assert.True(t, errors.HasCode(err, errors.CodeSchemaMismatch))
}

func TestOverlayOnCloneLeavesBaseUntouched(t *testing.T) {
	res := synthetic(t)
	b := NewBuilder("accession")
	base, err := b.Scatter(res.Dataset, res.Embedding, "cluster")
	require.NoError(t, err)
	before, err := base.JSON()
	require.NoError(t, err)

	clone, err := base.Clone()
	require.NoError(t, err)
	overlay, err := b.OverlayTree(clone, res.Tree, res.Dataset, res.Embedding)
	require.NoError(t, err)

	after, err := base.JSON()
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Len(t, overlay.Data, len(base.Data)+1)

	edges := overlay.Data[0]
	assert.Equal(t, "edges", edges.Name)
	assert.Len(t, edges.X, 3*len(res.Tree.Edges))
	assert.True(t, edges.X[2].IsGap())
}

func TestOverlayRejectsOutOfRangeEdge(t *testing.T) {
	res := synthetic(t)
	tree := &results.SpanningTree{Edges: []results.Edge{{From: 0, To: 100, Weight: 1}}}
	_, err := NewBuilder("accession").OverlayTree(&figure.Figure{}, tree, res.Dataset, res.Embedding)
	assert.True(t, errors.HasCode(err, errors.CodeSchemaMismatch))
}

func TestDendrogramCoordinates(t *testing.T) {
	ds := &results.Dataset{
		Headers: []string{"accession", "cluster"},
		Rows: []results.Row{
			{"accession": "A", "cluster": "0"},
			{"accession": "B", "cluster": "0"},
			{"accession": "C", "cluster": "1"},
		},
	}
	link := &results.Linkage{Steps: []results.Merge{
		{Left: 0, Right: 1, Distance: 1, Size: 2},
		{Left: 2, Right: 3, Distance: 3, Size: 3},
	}}

	order, err := LeafOrder(link)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 0, 1}, order)

	fig, err := NewBuilder("accession").Dendrogram(link, ds, "cluster")
	require.NoError(t, err)
	require.Len(t, fig.Data, 3)

	links := fig.Data[0]
	assert.Equal(t, []figure.Value{15, 15, 25, 25}, links.X[:4])
	assert.Equal(t, []figure.Value{0, 1, 1, 0}, links.Y[:4])
	assert.Equal(t, []figure.Value{5, 5, 20, 20}, links.X[5:9])
	assert.Equal(t, []figure.Value{0, 3, 3, 1}, links.Y[5:9])

	leaves, ok := fig.Trace("1")
	require.True(t, ok)
	assert.Equal(t, []int{2}, leaves.CustomData)
	assert.Equal(t, []figure.Value{5}, leaves.X)
}

// caterpillar merges one new leaf into the running cluster per step, so the
// first two leaves sit at depth n-1
func caterpillar(n int) *results.Linkage {
	link := &results.Linkage{Steps: make([]results.Merge, n-1)}
	link.Steps[0] = results.Merge{Left: 0, Right: 1, Distance: 1, Size: 2}
	for i := 1; i < n-1; i++ {
		link.Steps[i] = results.Merge{Left: n + i - 1, Right: i + 1, Distance: float64(i + 1), Size: i + 2}
	}
	return link
}

func TestLeafOrderDepthLimit(t *testing.T) {
	link := caterpillar(6)

	order, err := leafOrder(link, 5)
	require.NoError(t, err, "depth 5 is within a budget of 5")
	assert.ElementsMatch(t, []int{0, 1, 2, 3, 4, 5}, order)

	_, err = leafOrder(link, 4)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeSchemaMismatch))
}

func TestDendrogramDepthBeyondBudget(t *testing.T) {
	n := results.MaxRecursionBudget + 3
	require.Greater(t, n-1, results.RecursionBudget(n))

	_, err := LeafOrder(caterpillar(n))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeSchemaMismatch))
}

func TestDendrogramOnSyntheticLinkage(t *testing.T) {
	res := synthetic(t)
	fig, err := NewBuilder("accession").Dendrogram(res.Linkage, res.Dataset, "cluster")
	require.NoError(t, err)

	leaves := 0
	for _, tr := range fig.Data[1:] {
		leaves += len(tr.CustomData)
	}
	assert.Equal(t, res.Dataset.Len(), leaves)
}
