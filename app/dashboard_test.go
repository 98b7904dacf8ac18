package app

import (
	"strings"
	"testing"

	"zymeboard/adapters/plotly"
	"zymeboard/domain/figure"
	"zymeboard/domain/results"
	"zymeboard/internal/errors"
	"zymeboard/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingPlots remembers which figures the dashboard hands to the builder
type recordingPlots struct {
	*plotly.Builder
	scatter *figure.Figure
	overlay *figure.Figure
}

func (r *recordingPlots) Scatter(ds *results.Dataset, emb *results.Embedding, legend string) (*figure.Figure, error) {
	fig, err := r.Builder.Scatter(ds, emb, legend)
	r.scatter = fig
	return fig, err
}

func (r *recordingPlots) OverlayTree(fig *figure.Figure, tree *results.SpanningTree, ds *results.Dataset, emb *results.Embedding) (*figure.Figure, error) {
	r.overlay = fig
	return r.Builder.OverlayTree(fig, tree, ds, emb)
}

func buildSynthetic(t *testing.T, prefix string) (*recordingPlots, *results.Results, []string, []string) {
	t.Helper()
	res, err := testkit.Generate(testkit.DefaultConfig())
	require.NoError(t, err)
	res.DatasetCard = "# PETase homologs"

	plots := &recordingPlots{Builder: plotly.NewBuilder("accession")}
	registry, err := NewDashboardService(plots).Build(BuildRequest{Results: res, LegendAttribute: "cluster", Prefix: prefix})
	require.NoError(t, err)

	var names, paths []string
	for _, p := range registry.All() {
		names = append(names, p.Name)
		paths = append(paths, p.Path)
	}
	return plots, res, names, paths
}

func TestBuildRegistersPagesInOrder(t *testing.T) {
	_, _, names, paths := buildSynthetic(t, "/")
	assert.Equal(t, []string{NameEDA, NameLandscape, NameConnectivity, NamePhylogeny}, names)
	assert.Equal(t, []string{"/", "/dim", "/mst", "/slc"}, paths)

	_, _, _, paths = buildSynthetic(t, "/results/petase")
	assert.Equal(t, []string{"/results/petase/", "/results/petase/dim", "/results/petase/mst", "/results/petase/slc"}, paths)
}

func TestBuildOverlaysAClone(t *testing.T) {
	plots, res, _, _ := buildSynthetic(t, "/")
	require.NotNil(t, plots.overlay)
	assert.NotSame(t, plots.scatter, plots.overlay)

	_, hasEdges := plots.scatter.Trace("edges")
	assert.False(t, hasEdges, "landscape scatter must not carry tree edges")
	edges, ok := plots.overlay.Trace("edges")
	require.True(t, ok)
	assert.Len(t, edges.X, 3*len(res.Tree.Edges))
	assert.Len(t, plots.overlay.Data, len(plots.scatter.Data)+1)
}

func TestBuildRejectsUnknownLegend(t *testing.T) {
	res, err := testkit.Generate(testkit.DefaultConfig())
	require.NoError(t, err)

	_, err = NewDashboardService(plotly.NewBuilder("accession")).Build(BuildRequest{Results: res, LegendAttribute: "family", Prefix: "/"})
	assert.True(t, errors.HasCode(err, errors.CodeSchemaMismatch))
}

func TestClusterBar(t *testing.T) {
	res, err := testkit.Generate(testkit.DefaultConfig())
	require.NoError(t, err)
	registry, err := NewDashboardService(plotly.NewBuilder("accession")).Build(BuildRequest{Results: res, LegendAttribute: "cluster", Prefix: "/"})
	require.NoError(t, err)

	home, ok := registry.Get(RouteEDA)
	require.True(t, ok)
	bar := home.Layout.Figures["clusters"]
	require.NotNil(t, bar)
	assert.Equal(t, []string{"-1", "0", "1", "2", "3"}, bar.Layout.XAxis.TickText)

	total := 0.0
	for _, y := range bar.Data[0].Y {
		total += float64(y)
	}
	assert.Equal(t, 100.0, total)

	view, ok := home.Layout.Data.(*EDAView)
	require.True(t, ok)
	assert.Len(t, view.Preview, previewRows)
}

func TestRenderCard(t *testing.T) {
	card := "---\nlicense: cc-by-4.0\n---\n# PETase\n\nHomologs <script>alert(1)</script> of *I. sakaiensis*.\n"
	html := string(RenderCard(card))
	assert.Contains(t, html, "<h1")
	assert.Contains(t, html, "<em>I. sakaiensis</em>")
	assert.NotContains(t, html, "license")
	assert.False(t, strings.Contains(html, "<script>"))

	assert.Empty(t, RenderCard("  \n"))
}

func TestRenderCardDropsUnsafeLinks(t *testing.T) {
	html := string(RenderCard("[click](javascript:alert(document.cookie)) and [UniProt](https://www.uniprot.org)\n"))
	assert.NotContains(t, html, "javascript:")
	assert.Contains(t, html, "click")
	assert.Contains(t, html, `href="https://www.uniprot.org"`)
	assert.Contains(t, html, `rel="nofollow"`)
}
