package app

import (
	"html/template"
	"log"
	"time"

	"zymeboard/domain/figure"
	"zymeboard/domain/results"
	"zymeboard/internal/errors"
	"zymeboard/internal/pages"
	"zymeboard/internal/profiling"
	"zymeboard/ports"
	"zymeboard/ui/templates/fragments"
)

// Page routes and names, in navigation order
const (
	RouteEDA          = ""
	RouteLandscape    = "dim"
	RouteConnectivity = "mst"
	RoutePhylogeny    = "slc"

	NameEDA          = "Explanatory Data Analysis"
	NameLandscape    = "Protein Landscape"
	NameConnectivity = "Connectivity"
	NamePhylogeny    = "Phylogeny"
)

// previewRows is how many table rows the landing page shows
const previewRows = 10

// EDAView feeds the landing page
type EDAView struct {
	Report  *profiling.Report
	Headers []string
	Preview []results.Row
	Card    template.HTML
}

// ConnectivityView feeds the spanning tree page
type ConnectivityView struct {
	Tree profiling.TreeSummary
}

// PhylogenyView feeds the dendrogram page
type PhylogenyView struct {
	Leaves      int
	Merges      int
	MaxDistance float64
}

// BuildRequest is everything needed to assemble the pages
type BuildRequest struct {
	Results         *results.Results
	LegendAttribute string
	Prefix          string
}

// DashboardService turns loaded results into registered pages
type DashboardService struct {
	plots    ports.PlotBuilder
	profiler *profiling.DataProfiler
}

// NewDashboardService creates a dashboard service drawing with plots
func NewDashboardService(plots ports.PlotBuilder) *DashboardService {
	return &DashboardService{
		plots:    plots,
		profiler: profiling.NewDataProfiler(),
	}
}

// Build draws every figure once and registers the pages in navigation order.
// The landscape scatter is built a single time; the connectivity page gets a
// clone with the tree overlaid.
func (s *DashboardService) Build(req BuildRequest) (*pages.Registry, error) {
	start := time.Now()
	res := req.Results
	if res == nil || res.Dataset == nil {
		return nil, errors.InternalError("no results to build pages from")
	}
	if !res.Dataset.HasColumn(req.LegendAttribute) {
		return nil, errors.SchemaMismatch("legend attribute %q is not a column of the protein table", req.LegendAttribute)
	}

	base, err := s.plots.Scatter(res.Dataset, res.Embedding, req.LegendAttribute)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build landscape scatter")
	}

	overlayBase, err := base.Clone()
	if err != nil {
		return nil, errors.Wrap(err, "failed to copy landscape scatter")
	}
	tree, err := s.plots.OverlayTree(overlayBase, res.Tree, res.Dataset, res.Embedding)
	if err != nil {
		return nil, errors.Wrap(err, "failed to overlay spanning tree")
	}

	dendrogram, err := s.plots.Dendrogram(res.Linkage, res.Dataset, req.LegendAttribute)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build dendrogram")
	}

	report := s.profiler.Profile(res, req.LegendAttribute)
	eda := &EDAView{
		Report:  report,
		Headers: res.Dataset.Headers,
		Preview: preview(res.Dataset, previewRows),
		Card:    RenderCard(res.DatasetCard),
	}

	registry := pages.NewRegistry(req.Prefix)
	register := []struct {
		route, name string
		layout      pages.Layout
	}{
		{RouteEDA, NameEDA, pages.Layout{
			Template: fragments.EDA,
			Figures:  map[string]*figure.Figure{"clusters": ClusterBar(report.Clusters)},
			Data:     eda,
		}},
		{RouteLandscape, NameLandscape, pages.Layout{
			Template: fragments.Landscape,
			Figures:  map[string]*figure.Figure{"landscape": base},
		}},
		{RouteConnectivity, NameConnectivity, pages.Layout{
			Template: fragments.Connectivity,
			Figures:  map[string]*figure.Figure{"connectivity": tree},
			Data:     &ConnectivityView{Tree: report.Tree},
		}},
		{RoutePhylogeny, NamePhylogeny, pages.Layout{
			Template: fragments.Phylogeny,
			Figures:  map[string]*figure.Figure{"dendrogram": dendrogram},
			Data:     phylogenyView(res.Linkage),
		}},
	}
	for _, p := range register {
		if _, err := registry.Register(p.route, p.name, p.layout); err != nil {
			return nil, err
		}
	}

	log.Printf("[Dashboard] Built %d pages for %s (%d proteins) in %s",
		len(registry.All()), res.Name, res.Dataset.Len(), time.Since(start).Round(time.Millisecond))
	return registry, nil
}

// ClusterBar draws the record count per legend category
func ClusterBar(dist profiling.ClusterDistribution) *figure.Figure {
	bar := figure.Trace{
		Type:          "bar",
		Name:          dist.Attribute,
		HoverTemplate: "%{text}: %{y}<extra></extra>",
		Marker:        &figure.Marker{Color: "#0d6efd"},
	}
	ticks := make([]figure.Value, 0, len(dist.Clusters))
	labels := make([]string, 0, len(dist.Clusters))
	for i, c := range dist.Clusters {
		bar.X = append(bar.X, figure.Value(i))
		bar.Y = append(bar.Y, figure.Value(c.Count))
		bar.Text = append(bar.Text, c.Value)
		ticks = append(ticks, figure.Value(i))
		labels = append(labels, c.Value)
	}
	return &figure.Figure{
		Kind: "bar",
		Data: []figure.Trace{bar},
		Layout: figure.Layout{
			Height:   400,
			Template: "plotly_white",
			XAxis:    figure.Axis{Title: dist.Attribute, ShowTickLabels: true, TickVals: ticks, TickText: labels},
			YAxis:    figure.Axis{Title: "proteins", ShowGrid: true, ShowTickLabels: true},
		},
	}
}

func preview(ds *results.Dataset, n int) []results.Row {
	if ds.Len() < n {
		n = ds.Len()
	}
	return ds.Rows[:n]
}

func phylogenyView(link *results.Linkage) *PhylogenyView {
	view := &PhylogenyView{Leaves: link.Leaves(), Merges: len(link.Steps)}
	for _, m := range link.Steps {
		if m.Distance > view.MaxDistance {
			view.MaxDistance = m.Distance
		}
	}
	return view
}
