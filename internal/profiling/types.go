package profiling

// Summary holds the location and spread of a numeric sample
type Summary struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Q25    float64 `json:"q25"`
	Median float64 `json:"median"`
	Q75    float64 `json:"q75"`
	Max    float64 `json:"max"`
}

// Shape describes how a numeric sample departs from normal
type Shape struct {
	Skewness float64 `json:"skewness"`
	Kurtosis float64 `json:"kurtosis"`
	IsNormal bool    `json:"is_normal"`
	NormalP  float64 `json:"normal_p"`
	Outliers int     `json:"outliers"`
}

// ValueCount is one distinct value and how often it occurs
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Column kinds
const (
	KindNumeric     = "numeric"
	KindCategorical = "categorical"
)

// ColumnProfile summarizes one table column
type ColumnProfile struct {
	Name      string       `json:"name"`
	Kind      string       `json:"kind"`
	Count     int          `json:"count"`
	Missing   int          `json:"missing"`
	Distinct  int          `json:"distinct"`
	Summary   *Summary     `json:"summary,omitempty"`
	Shape     *Shape       `json:"shape,omitempty"`
	TopValues []ValueCount `json:"top_values,omitempty"`
}

// ClusterDistribution is the record count per legend category
type ClusterDistribution struct {
	Attribute     string       `json:"attribute"`
	Clusters      []ValueCount `json:"clusters"`
	Noise         int          `json:"noise"`
	NoiseFraction float64      `json:"noise_fraction"`
	Entropy       float64      `json:"entropy"`
}

// TreeSummary describes the spanning tree edge weights
type TreeSummary struct {
	Edges      int      `json:"edges"`
	Components int      `json:"components"`
	Weights    *Summary `json:"weights,omitempty"`
}

// Report is the exploratory profile of a whole result set
type Report struct {
	Rows     int                 `json:"rows"`
	Columns  int                 `json:"columns"`
	Profiles []ColumnProfile     `json:"profiles"`
	Clusters ClusterDistribution `json:"clusters"`
	Tree     TreeSummary         `json:"tree"`
}
