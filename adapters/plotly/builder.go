package plotly

import (
	"fmt"
	"log"

	"zymeboard/domain/figure"
	"zymeboard/domain/results"
	"zymeboard/internal/errors"
)

// NoiseLabel is the legend value HDBSCAN assigns to unclustered records
const NoiseLabel = "-1"

const noiseColor = "lightgrey"

// palette is plotly's default qualitative color sequence
var palette = []string{
	"#636efa", "#EF553B", "#00cc96", "#ab63fa", "#FFA15A",
	"#19d3f3", "#FF6692", "#B6E880", "#FF97FF", "#FECB52",
}

// Builder emits plotly figures for the dashboard pages
type Builder struct {
	idColumn   string
	markerSize float64
}

// NewBuilder creates a builder that labels points with idColumn
func NewBuilder(idColumn string) *Builder {
	return &Builder{idColumn: idColumn, markerSize: 6}
}

// CategoryColors assigns a palette color to every category. Noise is always grey.
func CategoryColors(categories []string) map[string]string {
	colors := make(map[string]string, len(categories))
	i := 0
	for _, c := range categories {
		if c == NoiseLabel {
			colors[c] = noiseColor
			continue
		}
		colors[c] = palette[i%len(palette)]
		i++
	}
	return colors
}

func (b *Builder) label(ds *results.Dataset, i int) string {
	if id := ds.Rows[i][b.idColumn]; id != "" {
		return id
	}
	return fmt.Sprintf("#%d", i)
}

// Scatter draws the embedding with one scattergl trace per legend category
func (b *Builder) Scatter(ds *results.Dataset, emb *results.Embedding, legendAttribute string) (*figure.Figure, error) {
	if !ds.HasColumn(legendAttribute) {
		return nil, errors.SchemaMismatch("legend attribute %q is not a column of the protein table", legendAttribute)
	}
	if emb.Len() != ds.Len() {
		return nil, errors.SchemaMismatch("embedding has %d rows but the table has %d", emb.Len(), ds.Len())
	}

	categories := ds.Categories(legendAttribute)
	colors := CategoryColors(categories)
	traces := make(map[string]*figure.Trace, len(categories))
	for _, c := range categories {
		traces[c] = &figure.Trace{
			Type:          "scattergl",
			Mode:          "markers",
			Name:          c,
			LegendGroup:   c,
			HoverTemplate: "%{text}<extra></extra>",
			Marker:        &figure.Marker{Size: b.markerSize, Color: colors[c], Opacity: 0.8},
		}
	}

	for i, row := range ds.Rows {
		t := traces[row[legendAttribute]]
		x, y := emb.Point(i)
		t.X = append(t.X, figure.Value(x))
		t.Y = append(t.Y, figure.Value(y))
		t.CustomData = append(t.CustomData, i)
		t.Text = append(t.Text, fmt.Sprintf("%s<br>%s: %s", b.label(ds, i), legendAttribute, row[legendAttribute]))
	}

	fig := &figure.Figure{
		Kind: "scatter",
		Layout: figure.Layout{
			Height:     800,
			DragMode:   "lasso",
			HoverMode:  "closest",
			ShowLegend: true,
			Template:   "plotly_white",
			XAxis:      figure.Axis{Title: "Dimension 1"},
			YAxis:      figure.Axis{Title: "Dimension 2"},
		},
	}
	for _, c := range categories {
		fig.Data = append(fig.Data, *traces[c])
	}
	log.Printf("[Plotly] Scatter: %d points in %d categories", ds.Len(), len(categories))
	return fig, nil
}

// OverlayTree prepends the spanning tree edges as a single line trace so the
// points stay on top. fig is modified in place.
func (b *Builder) OverlayTree(fig *figure.Figure, tree *results.SpanningTree, ds *results.Dataset, emb *results.Embedding) (*figure.Figure, error) {
	n := emb.Len()
	if n != ds.Len() {
		return nil, errors.SchemaMismatch("embedding has %d rows but the table has %d", n, ds.Len())
	}

	edges := figure.Trace{
		Type:       "scattergl",
		Mode:       "lines",
		Name:       "edges",
		HoverInfo:  "skip",
		Line:       &figure.Line{Color: "rgba(80,80,80,0.5)", Width: 1},
		ShowLegend: figure.Bool(false),
		X:          make([]figure.Value, 0, 3*len(tree.Edges)),
		Y:          make([]figure.Value, 0, 3*len(tree.Edges)),
	}
	for _, e := range tree.Edges {
		if e.From < 0 || e.From >= n || e.To < 0 || e.To >= n {
			return nil, errors.SchemaMismatch("tree edge %d-%d is outside 0..%d", e.From, e.To, n-1)
		}
		x0, y0 := emb.Point(e.From)
		x1, y1 := emb.Point(e.To)
		edges.X = append(edges.X, figure.Value(x0), figure.Value(x1), figure.Gap)
		edges.Y = append(edges.Y, figure.Value(y0), figure.Value(y1), figure.Gap)
	}

	fig.Data = append([]figure.Trace{edges}, fig.Data...)
	fig.Kind = "tree"
	log.Printf("[Plotly] Overlaid %d tree edges", len(tree.Edges))
	return fig, nil
}
