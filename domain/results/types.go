package results

import (
	"sort"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

// Row is one protein record keyed by column header
type Row map[string]string

// Dataset is the protein table. Row i lines up with row i of the
// embedding and with node/leaf id i of the tree and linkage.
type Dataset struct {
	Headers []string
	Rows    []Row
}

// Len returns the number of records
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Rows)
}

// HasColumn reports whether the table carries the named column
func (d *Dataset) HasColumn(name string) bool {
	for _, h := range d.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// Column returns the raw values of a column in row order
func (d *Dataset) Column(name string) []string {
	values := make([]string, len(d.Rows))
	for i, row := range d.Rows {
		values[i] = row[name]
	}
	return values
}

// Categories returns the distinct values of a column, numerically sorted
// when every value parses as a number and lexically otherwise.
func (d *Dataset) Categories(name string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, row := range d.Rows {
		v := row[name]
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	SortCategories(out)
	return out
}

// SortCategories orders legend values the way a reader expects: -1, 0, 2, 10
func SortCategories(values []string) {
	numeric := true
	nums := make(map[string]float64, len(values))
	for _, v := range values {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			numeric = false
			break
		}
		nums[v] = f
	}
	if numeric {
		sort.SliceStable(values, func(i, j int) bool { return nums[values[i]] < nums[values[j]] })
		return
	}
	sort.Strings(values)
}

// Embedding is the 2D projection, one row per record
type Embedding struct {
	Coords *mat.Dense
}

// Len returns the number of embedded records
func (e *Embedding) Len() int {
	if e == nil || e.Coords == nil {
		return 0
	}
	r, _ := e.Coords.Dims()
	return r
}

// Point returns the plotted x/y of record i
func (e *Embedding) Point(i int) (float64, float64) {
	return e.Coords.At(i, 0), e.Coords.At(i, 1)
}

// Edge is one undirected weighted spanning tree edge between record indices
type Edge struct {
	From   int
	To     int
	Weight float64
}

// SpanningTree is the minimum spanning tree over the records
type SpanningTree struct {
	Edges []Edge
}

// Merge is one agglomeration step. Ids below n are leaves; step i forms id n+i.
type Merge struct {
	Left     int
	Right    int
	Distance float64
	Size     int
}

// Linkage is a scipy-format hierarchical clustering merge history
type Linkage struct {
	Steps []Merge
}

// Leaves returns the number of leaves the merge history covers
func (l *Linkage) Leaves() int {
	if l == nil || len(l.Steps) == 0 {
		return 0
	}
	return len(l.Steps) + 1
}

// Results is everything one dashboard instance serves
type Results struct {
	Name        string
	IDColumn    string
	Dataset     *Dataset
	Embedding   *Embedding
	Tree        *SpanningTree
	Linkage     *Linkage
	DatasetCard string // optional markdown description
}
