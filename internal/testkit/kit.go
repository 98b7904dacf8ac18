package testkit

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strconv"

	"zymeboard/domain/results"

	"gonum.org/v1/gonum/mat"
)

// GeneratorConfig controls a synthetic result set
type GeneratorConfig struct {
	Records    int
	Clusters   int
	NoiseEvery int // every n-th record is labeled -1; 0 disables noise
	Seed       int64
}

// DefaultConfig returns a 100-record, 4-cluster configuration
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Records:    100,
		Clusters:   4,
		NoiseEvery: 17,
		Seed:       42,
	}
}

var organisms = []string{
	"Ideonella sakaiensis",
	"Thermobifida fusca",
	"Fusarium solani",
	"Bacillus subtilis",
	"Pseudomonas putida",
}

// Headers of the synthetic protein table
var Headers = []string{"accession", "cluster", "organism", "length", "molecular_weight"}

// Generate builds a deterministic result set: clustered 2D points, the
// Euclidean minimum spanning tree over them and the single-linkage merge
// history derived from that tree.
func Generate(cfg GeneratorConfig) (*results.Results, error) {
	if cfg.Records < 2 {
		return nil, fmt.Errorf("need at least 2 records, got %d", cfg.Records)
	}
	if cfg.Clusters < 1 {
		return nil, fmt.Errorf("need at least 1 cluster, got %d", cfg.Clusters)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	n := cfg.Records

	ds := &results.Dataset{Headers: append([]string(nil), Headers...)}
	coords := mat.NewDense(n, 2, nil)
	for i := 0; i < n; i++ {
		cluster := i % cfg.Clusters
		angle := 2 * math.Pi * float64(cluster) / float64(cfg.Clusters)
		coords.Set(i, 0, 10*math.Cos(angle)+rng.NormFloat64())
		coords.Set(i, 1, 10*math.Sin(angle)+rng.NormFloat64())

		label := strconv.Itoa(cluster)
		if cfg.NoiseEvery > 0 && i%cfg.NoiseEvery == cfg.NoiseEvery-1 {
			label = "-1"
		}
		length := 200 + rng.Intn(400)
		ds.Rows = append(ds.Rows, results.Row{
			"accession":        fmt.Sprintf("SYN%05d", i),
			"cluster":          label,
			"organism":         organisms[rng.Intn(len(organisms))],
			"length":           strconv.Itoa(length),
			"molecular_weight": strconv.FormatFloat(float64(length)*0.11, 'f', 2, 64),
		})
	}

	emb := &results.Embedding{Coords: coords}
	tree := primTree(emb)
	return &results.Results{
		Name:      "synthetic",
		IDColumn:  "accession",
		Dataset:   ds,
		Embedding: emb,
		Tree:      tree,
		Linkage:   singleLinkage(tree, n),
	}, nil
}

// primTree computes the Euclidean minimum spanning tree of the embedding
func primTree(emb *results.Embedding) *results.SpanningTree {
	n := emb.Len()
	inTree := make([]bool, n)
	best := make([]float64, n)
	parent := make([]int, n)
	for i := range best {
		best[i] = math.Inf(1)
		parent[i] = -1
	}
	best[0] = 0

	tree := &results.SpanningTree{}
	for step := 0; step < n; step++ {
		u := -1
		for v := 0; v < n; v++ {
			if !inTree[v] && (u < 0 || best[v] < best[u]) {
				u = v
			}
		}
		inTree[u] = true
		if parent[u] >= 0 {
			tree.Edges = append(tree.Edges, results.Edge{From: parent[u], To: u, Weight: best[u]})
		}
		ux, uy := emb.Point(u)
		for v := 0; v < n; v++ {
			if inTree[v] {
				continue
			}
			vx, vy := emb.Point(v)
			if d := math.Hypot(ux-vx, uy-vy); d < best[v] {
				best[v] = d
				parent[v] = u
			}
		}
	}
	return tree
}

// singleLinkage turns a spanning tree into a scipy-format merge history
func singleLinkage(tree *results.SpanningTree, n int) *results.Linkage {
	edges := append([]results.Edge(nil), tree.Edges...)
	sort.SliceStable(edges, func(i, j int) bool { return edges[i].Weight < edges[j].Weight })

	root := make([]int, n)
	label := make([]int, n)
	size := make([]int, n)
	for i := range root {
		root[i] = i
		label[i] = i
		size[i] = 1
	}
	find := func(x int) int {
		for root[x] != x {
			root[x] = root[root[x]]
			x = root[x]
		}
		return x
	}

	link := &results.Linkage{}
	for i, e := range edges {
		a, b := find(e.From), find(e.To)
		left, right := label[a], label[b]
		if left > right {
			left, right = right, left
		}
		merged := size[a] + size[b]
		link.Steps = append(link.Steps, results.Merge{Left: left, Right: right, Distance: e.Weight, Size: merged})
		root[b] = a
		size[a] = merged
		label[a] = n + i
	}
	return link
}
