package ports

import (
	"zymeboard/domain/figure"
	"zymeboard/domain/results"
)

// PlotBuilder is the narrow surface the dashboard needs from a plotting backend
type PlotBuilder interface {
	// Scatter draws the embedding, one trace per legend category
	Scatter(ds *results.Dataset, emb *results.Embedding, legendAttribute string) (*figure.Figure, error)

	// OverlayTree adds the spanning tree edges to fig in place and returns it.
	// Callers that keep using the base figure must pass a clone.
	OverlayTree(fig *figure.Figure, tree *results.SpanningTree, ds *results.Dataset, emb *results.Embedding) (*figure.Figure, error)

	// Dendrogram draws the linkage merge history with leaves colored by category
	Dendrogram(link *results.Linkage, ds *results.Dataset, legendAttribute string) (*figure.Figure, error)
}
