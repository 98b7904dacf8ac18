package plotly

import (
	"fmt"
	"log"

	"zymeboard/domain/figure"
	"zymeboard/domain/results"
	"zymeboard/internal/errors"
)

// leafSpacing and leafOffset place leaf k at 5+10k, as scipy does
const (
	leafSpacing = 10
	leafOffset  = 5
)

type frame struct {
	id    int
	depth int
}

// LeafOrder walks the merge tree left to right and returns the leaves in
// plotting order. The walk uses an explicit stack and fails when the tree is
// deeper than the recursion budget for n leaves.
func LeafOrder(link *results.Linkage) ([]int, error) {
	return leafOrder(link, results.RecursionBudget(link.Leaves()))
}

func leafOrder(link *results.Linkage, budget int) ([]int, error) {
	n := link.Leaves()
	if n == 0 {
		return nil, errors.SchemaMismatch("linkage is empty")
	}
	order := make([]int, 0, n)

	stack := []frame{{id: n + len(link.Steps) - 1}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.depth > budget {
			return nil, errors.SchemaMismatch("linkage depth exceeds %d", budget)
		}
		if f.id < n {
			order = append(order, f.id)
			continue
		}
		step := f.id - n
		if step < 0 || step >= len(link.Steps) {
			return nil, errors.SchemaMismatch("linkage references unknown cluster %d", f.id)
		}
		m := link.Steps[step]
		stack = append(stack, frame{m.Right, f.depth + 1}, frame{m.Left, f.depth + 1})
	}
	if len(order) != n {
		return nil, errors.SchemaMismatch("linkage reaches %d of %d leaves", len(order), n)
	}
	return order, nil
}

// Dendrogram draws the merge history as U-shaped links with leaf markers
// colored by legend category.
func (b *Builder) Dendrogram(link *results.Linkage, ds *results.Dataset, legendAttribute string) (*figure.Figure, error) {
	n := link.Leaves()
	if n != ds.Len() {
		return nil, errors.SchemaMismatch("linkage has %d leaves but the table has %d rows", n, ds.Len())
	}
	if !ds.HasColumn(legendAttribute) {
		return nil, errors.SchemaMismatch("legend attribute %q is not a column of the protein table", legendAttribute)
	}

	order, err := LeafOrder(link)
	if err != nil {
		return nil, err
	}

	xs := make([]float64, n+len(link.Steps))
	ys := make([]float64, n+len(link.Steps))
	for k, leaf := range order {
		xs[leaf] = float64(leafOffset + leafSpacing*k)
	}

	links := figure.Trace{
		Type:       "scattergl",
		Mode:       "lines",
		Name:       "links",
		HoverInfo:  "skip",
		Line:       &figure.Line{Color: "#444", Width: 1},
		ShowLegend: figure.Bool(false),
		X:          make([]figure.Value, 0, 5*len(link.Steps)),
		Y:          make([]figure.Value, 0, 5*len(link.Steps)),
	}
	for i, m := range link.Steps {
		id := n + i
		xs[id] = (xs[m.Left] + xs[m.Right]) / 2
		ys[id] = m.Distance
		links.X = append(links.X,
			figure.Value(xs[m.Left]), figure.Value(xs[m.Left]),
			figure.Value(xs[m.Right]), figure.Value(xs[m.Right]), figure.Gap)
		links.Y = append(links.Y,
			figure.Value(ys[m.Left]), figure.Value(m.Distance),
			figure.Value(m.Distance), figure.Value(ys[m.Right]), figure.Gap)
	}

	categories := ds.Categories(legendAttribute)
	colors := CategoryColors(categories)
	leaves := make(map[string]*figure.Trace, len(categories))
	for _, c := range categories {
		leaves[c] = &figure.Trace{
			Type:          "scattergl",
			Mode:          "markers",
			Name:          c,
			LegendGroup:   c,
			HoverTemplate: "%{text}<extra></extra>",
			Marker:        &figure.Marker{Size: 5, Color: colors[c]},
		}
	}
	for _, leaf := range order {
		c := ds.Rows[leaf][legendAttribute]
		t := leaves[c]
		t.X = append(t.X, figure.Value(xs[leaf]))
		t.Y = append(t.Y, 0)
		t.CustomData = append(t.CustomData, leaf)
		t.Text = append(t.Text, fmt.Sprintf("%s<br>%s: %s", b.label(ds, leaf), legendAttribute, c))
	}

	fig := &figure.Figure{
		Kind: "dendrogram",
		Data: []figure.Trace{links},
		Layout: figure.Layout{
			Height:     700,
			HoverMode:  "closest",
			ShowLegend: true,
			Template:   "plotly_white",
			XAxis:      figure.Axis{Title: "Proteins"},
			YAxis:      figure.Axis{Title: "Distance", ShowGrid: true, ShowTickLabels: true},
		},
	}
	for _, c := range categories {
		fig.Data = append(fig.Data, *leaves[c])
	}
	log.Printf("[Plotly] Dendrogram: %d leaves, %d merges", n, len(link.Steps))
	return fig, nil
}
