// Package analysis derives distribution metrics from simulation results.
package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// DescriptiveStats contains basic descriptive statistics.
type DescriptiveStats struct {
	N      int
	Mean   float64
	Median float64
	StdDev float64
	Min    float64
	Max    float64
	P90    float64
}

// Describe computes descriptive statistics for a sample.
func Describe(sample []float64) DescriptiveStats {
	if len(sample) == 0 {
		return DescriptiveStats{}
	}

	sorted := make([]float64, len(sample))
	copy(sorted, sample)
	sort.Float64s(sorted)

	d := DescriptiveStats{
		N:      len(sorted),
		Mean:   stat.Mean(sorted, nil),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		P90:    stat.Quantile(0.9, stat.Empirical, sorted, nil),
	}
	if len(sorted) > 1 {
		d.StdDev = stat.StdDev(sorted, nil)
	}
	return d
}

// EffectSize contains effect size metrics.
type EffectSize struct {
	CohensD        float64 // (mean1 - mean2) / pooled standard deviation.
	Interpretation string  // negligible, small, medium, large.
}

// ComputeEffectSize computes Cohen's d between two samples.
func ComputeEffectSize(sample1, sample2 []float64) EffectSize {
	if len(sample1) < 2 || len(sample2) < 2 {
		return EffectSize{Interpretation: "undefined"}
	}

	mean1, std1 := stat.MeanStdDev(sample1, nil)
	mean2, std2 := stat.MeanStdDev(sample2, nil)

	n1 := float64(len(sample1))
	n2 := float64(len(sample2))
	pooled := math.Sqrt(((n1-1)*std1*std1 + (n2-1)*std2*std2) / (n1 + n2 - 2))

	var d float64
	if pooled > 0 {
		d = (mean1 - mean2) / pooled
	}
	return EffectSize{
		CohensD:        d,
		Interpretation: interpretCohensD(math.Abs(d)),
	}
}

func interpretCohensD(d float64) string {
	switch {
	case d < 0.2:
		return "negligible"
	case d < 0.5:
		return "small"
	case d < 0.8:
		return "medium"
	default:
		return "large"
	}
}

// gini computes the Gini coefficient of non-negative values. Zero means
// perfectly even use; values near one mean a few entries take everything.
func gini(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := float64(len(sorted))
	var sum, weighted float64
	for i, v := range sorted {
		sum += v
		weighted += float64(i+1) * v
	}
	if sum == 0 {
		return 0
	}
	return (2*weighted)/(n*sum) - (n+1)/n
}

// topShare returns the share in percent of the total held by the largest
// fraction of values.
func topShare(values []float64, fraction float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))

	k := int(float64(len(sorted)) * fraction)
	if k < 1 {
		k = 1
	}

	total := floats(sorted).sum()
	if total == 0 {
		return 0
	}
	return floats(sorted[:k]).sum() / total * 100
}

type floats []float64

func (f floats) sum() float64 {
	var s float64
	for _, v := range f {
		s += v
	}
	return s
}
