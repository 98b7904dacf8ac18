package profiling

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// DistributionAnalyzer handles distribution shape analysis
type DistributionAnalyzer struct{}

// NewDistributionAnalyzer creates a new distribution analyzer
func NewDistributionAnalyzer() *DistributionAnalyzer {
	return &DistributionAnalyzer{}
}

// Summarize computes location and spread statistics
func (da *DistributionAnalyzer) Summarize(data []float64) (*Summary, error) {
	mean, err := stats.Mean(data)
	if err != nil {
		return nil, err
	}

	stdDev, err := stats.StandardDeviation(data)
	if err != nil {
		return nil, err
	}

	min, err := stats.Min(data)
	if err != nil {
		return nil, err
	}

	max, err := stats.Max(data)
	if err != nil {
		return nil, err
	}

	median, err := stats.Median(data)
	if err != nil {
		return nil, err
	}

	// stats.Percentile rejects small samples, so quartiles come from gonum
	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)
	q25 := stat.Quantile(0.25, stat.Empirical, sorted, nil)
	q75 := stat.Quantile(0.75, stat.Empirical, sorted, nil)

	return &Summary{
		Mean:   mean,
		StdDev: stdDev,
		Min:    min,
		Q25:    q25,
		Median: median,
		Q75:    q75,
		Max:    max,
	}, nil
}

// AnalyzeShape reports skewness, kurtosis, an approximate normality check
// and the IQR outlier count
func (da *DistributionAnalyzer) AnalyzeShape(data []float64, s *Summary) Shape {
	if s.StdDev == 0 {
		return Shape{NormalP: 1}
	}
	isNormal, p := testNormality(data)
	return Shape{
		Skewness: calculateSkewness(data, s.Mean, s.StdDev),
		Kurtosis: calculateKurtosis(data, s.Mean, s.StdDev),
		IsNormal: isNormal,
		NormalP:  p,
		Outliers: detectOutliers(data, s.Q25, s.Q75),
	}
}

// calculateSkewness computes sample skewness using the adjusted Fisher-Pearson coefficient
func calculateSkewness(data []float64, mean, stdDev float64) float64 {
	if len(data) < 3 {
		return 0
	}

	n := float64(len(data))
	sumCubedDeviations := 0.0

	for _, x := range data {
		deviation := (x - mean) / stdDev
		sumCubedDeviations += deviation * deviation * deviation
	}

	// Adjusted Fisher-Pearson coefficient of skewness
	skewness := sumCubedDeviations / n

	// Bias correction for sample skewness
	correction := math.Sqrt(n*(n-1)) / (n - 2)
	skewness *= correction

	return skewness
}

// calculateKurtosis computes sample excess kurtosis
func calculateKurtosis(data []float64, mean, stdDev float64) float64 {
	if len(data) < 4 {
		return 0
	}

	n := float64(len(data))
	sumFourthDeviations := 0.0

	for _, x := range data {
		deviation := (x - mean) / stdDev
		sumFourthDeviations += deviation * deviation * deviation * deviation
	}

	// Sample kurtosis
	kurtosis := sumFourthDeviations / n

	// Convert to excess kurtosis (subtract 3 for normal distribution)
	excessKurtosis := kurtosis - 3

	// Bias correction for sample excess kurtosis
	if n > 3 {
		correction := (n - 1) / ((n - 2) * (n - 3))
		excessKurtosis = excessKurtosis*correction + 6/(n+1)
	}

	return excessKurtosis + 3 // Return total kurtosis (not excess)
}

// testNormality is a skewness/kurtosis based approximation, not a Shapiro-Wilk test
func testNormality(data []float64) (bool, float64) {
	if len(data) < 4 {
		return false, 1.0
	}
	mean, err := stats.Mean(data)
	if err != nil {
		return false, 1.0
	}
	stdDev, err := stats.StandardDeviation(data)
	if err != nil || stdDev == 0 {
		return false, 1.0
	}

	statistic := math.Abs(calculateSkewness(data, mean, stdDev)) + math.Abs(calculateKurtosis(data, mean, stdDev)-3)/2
	p := 1 - distuv.ChiSquared{K: 2}.CDF(statistic*statistic)
	return p > 0.05, p
}

// detectOutliers identifies outliers using IQR method
func detectOutliers(data []float64, q25, q75 float64) int {
	iqr := q75 - q25
	lowerBound := q25 - 1.5*iqr
	upperBound := q75 + 1.5*iqr

	outlierCount := 0
	for _, x := range data {
		if x < lowerBound || x > upperBound {
			outlierCount++
		}
	}

	return outlierCount
}
