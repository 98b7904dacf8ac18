package profiling

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"zymeboard/domain/results"

	"gonum.org/v1/gonum/stat"
)

// topValueLimit caps the most frequent values listed for categorical columns
const topValueLimit = 5

// DataProfiler computes the exploratory profile shown on the landing page
type DataProfiler struct {
	distribution *DistributionAnalyzer
}

// NewDataProfiler creates a new data profiler
func NewDataProfiler() *DataProfiler {
	return &DataProfiler{distribution: NewDistributionAnalyzer()}
}

// Profile builds the full report for a loaded result set
func (dp *DataProfiler) Profile(res *results.Results, legendAttribute string) *Report {
	report := &Report{
		Rows:     res.Dataset.Len(),
		Columns:  len(res.Dataset.Headers),
		Profiles: dp.ProfileDataset(res.Dataset),
		Clusters: ClusterSizes(res.Dataset, legendAttribute),
	}
	report.Tree = dp.SummarizeTree(res.Tree, res.Dataset.Len())
	return report
}

// ProfileDataset profiles every column in header order
func (dp *DataProfiler) ProfileDataset(ds *results.Dataset) []ColumnProfile {
	profiles := make([]ColumnProfile, 0, len(ds.Headers))
	for _, h := range ds.Headers {
		profiles = append(profiles, dp.ProfileColumn(h, ds.Column(h)))
	}
	return profiles
}

// ProfileColumn classifies a column as numeric when every present value
// parses as a number, and summarizes it accordingly
func (dp *DataProfiler) ProfileColumn(name string, values []string) ColumnProfile {
	profile := ColumnProfile{Name: name, Kind: KindCategorical, Count: len(values)}

	counts := make(map[string]int)
	numbers := make([]float64, 0, len(values))
	numeric := true
	for _, v := range values {
		if isMissing(v) {
			profile.Missing++
			continue
		}
		counts[v]++
		if numeric {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil || math.IsNaN(f) {
				numeric = false
				continue
			}
			numbers = append(numbers, f)
		}
	}
	profile.Distinct = len(counts)

	if numeric && len(numbers) > 0 {
		if summary, err := dp.distribution.Summarize(numbers); err == nil {
			profile.Kind = KindNumeric
			profile.Summary = summary
			shape := dp.distribution.AnalyzeShape(numbers, summary)
			profile.Shape = &shape
			return profile
		}
	}

	profile.TopValues = rankCounts(counts)
	if len(profile.TopValues) > topValueLimit {
		profile.TopValues = profile.TopValues[:topValueLimit]
	}
	return profile
}

// ClusterSizes counts records per legend category. Entropy is in nats over
// all categories, noise included.
func ClusterSizes(ds *results.Dataset, legendAttribute string) ClusterDistribution {
	dist := ClusterDistribution{Attribute: legendAttribute}
	if ds.Len() == 0 {
		return dist
	}

	counts := make(map[string]int)
	for _, v := range ds.Column(legendAttribute) {
		counts[v]++
	}
	categories := make([]string, 0, len(counts))
	for c := range counts {
		categories = append(categories, c)
	}
	results.SortCategories(categories)

	p := make([]float64, 0, len(categories))
	for _, c := range categories {
		dist.Clusters = append(dist.Clusters, ValueCount{Value: c, Count: counts[c]})
		p = append(p, float64(counts[c])/float64(ds.Len()))
	}
	dist.Noise = counts["-1"]
	dist.NoiseFraction = float64(dist.Noise) / float64(ds.Len())
	dist.Entropy = stat.Entropy(p)
	return dist
}

// SummarizeTree reports edge count, connected components and edge weights
func (dp *DataProfiler) SummarizeTree(tree *results.SpanningTree, n int) TreeSummary {
	summary := TreeSummary{Components: n}
	if tree == nil {
		return summary
	}
	summary.Edges = len(tree.Edges)
	summary.Components = results.TreeComponents(tree, n)

	weights := make([]float64, len(tree.Edges))
	for i, e := range tree.Edges {
		weights[i] = e.Weight
	}
	if len(weights) > 0 {
		if s, err := dp.distribution.Summarize(weights); err == nil {
			summary.Weights = s
		}
	}
	return summary
}

func isMissing(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "nan", "none", "null", "<na>":
		return true
	}
	return false
}

func rankCounts(counts map[string]int) []ValueCount {
	out := make([]ValueCount, 0, len(counts))
	for v, c := range counts {
		out = append(out, ValueCount{Value: v, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	return out
}
