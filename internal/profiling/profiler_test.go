package profiling

import (
	"math"
	"testing"

	"zymeboard/domain/results"
	"zymeboard/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileSyntheticResults(t *testing.T) {
	res, err := testkit.Generate(testkit.DefaultConfig())
	require.NoError(t, err)

	report := NewDataProfiler().Profile(res, "cluster")
	assert.Equal(t, 100, report.Rows)
	assert.Equal(t, len(testkit.Headers), report.Columns)
	require.Len(t, report.Profiles, len(testkit.Headers))

	byName := map[string]ColumnProfile{}
	for _, p := range report.Profiles {
		byName[p.Name] = p
	}
	length := byName["length"]
	assert.Equal(t, KindNumeric, length.Kind)
	require.NotNil(t, length.Summary)
	assert.GreaterOrEqual(t, length.Summary.Min, 200.0)
	assert.Less(t, length.Summary.Max, 600.0)

	organism := byName["organism"]
	assert.Equal(t, KindCategorical, organism.Kind)
	assert.LessOrEqual(t, len(organism.TopValues), topValueLimit)
	assert.Equal(t, 100, byName["accession"].Distinct)

	assert.Equal(t, 99, report.Tree.Edges)
	assert.Equal(t, 1, report.Tree.Components)
	require.NotNil(t, report.Tree.Weights)
	assert.Greater(t, report.Tree.Weights.Max, 0.0)
}

func TestClusterSizes(t *testing.T) {
	ds := &results.Dataset{
		Headers: []string{"cluster"},
		Rows: []results.Row{
			{"cluster": "1"}, {"cluster": "1"}, {"cluster": "-1"}, {"cluster": "0"},
		},
	}
	dist := ClusterSizes(ds, "cluster")
	assert.Equal(t, []ValueCount{{"-1", 1}, {"0", 1}, {"1", 2}}, dist.Clusters)
	assert.Equal(t, 1, dist.Noise)
	assert.InDelta(t, 0.25, dist.NoiseFraction, 1e-9)
	want := -(0.25*math.Log(0.25)*2 + 0.5*math.Log(0.5))
	assert.InDelta(t, want, dist.Entropy, 1e-9)
}

func TestProfileColumnTreatsMissingValues(t *testing.T) {
	p := NewDataProfiler().ProfileColumn("score", []string{"1.5", "", "NaN", "2.5"})
	assert.Equal(t, KindNumeric, p.Kind)
	assert.Equal(t, 2, p.Missing)
	assert.InDelta(t, 2.0, p.Summary.Mean, 1e-9)

	p = NewDataProfiler().ProfileColumn("organism", []string{"a", "b", "a", "3"})
	assert.Equal(t, KindCategorical, p.Kind)
	assert.Equal(t, ValueCount{"a", 2}, p.TopValues[0])
}

func TestSummarizeForest(t *testing.T) {
	tree := &results.SpanningTree{Edges: []results.Edge{{From: 0, To: 1, Weight: 2}}}
	s := NewDataProfiler().SummarizeTree(tree, 3)
	assert.Equal(t, 2, s.Components)
	assert.Equal(t, 2.0, s.Weights.Median)
}
