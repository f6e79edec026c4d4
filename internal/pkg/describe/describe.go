// Package describe computes the descriptive statistics used by the QA reports and the
// dataset summary table.
package describe

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
)

// Quantiles reported by Describe, in output order.
var Quantiles = []float64{0.01, 0.25, 0.50, 0.75, 0.99}

// Summary describes a numeric column. Pointer fields are nil when the statistic is
// undefined for the sample (empty input, too few values for std or skew).
type Summary struct {
	Count     int
	Mean      *float64
	Std       *float64
	Skew      *float64
	Min       *float64
	Max       *float64
	Quantiles []*float64 // aligned with the package-level Quantiles
}

func Describe(values []float64) Summary {
	s := Summary{
		Count:     len(values),
		Quantiles: make([]*float64, len(Quantiles)),
	}
	if len(values) == 0 {
		return s
	}

	data := stats.Float64Data(values)
	if v, err := stats.Mean(data); err == nil {
		s.Mean = &v
	}
	if v, err := stats.Min(data); err == nil {
		s.Min = &v
	}
	if v, err := stats.Max(data); err == nil {
		s.Max = &v
	}
	if len(values) > 1 {
		if v, err := stats.StandardDeviationSample(data); err == nil && !math.IsNaN(v) {
			s.Std = &v
		}
	}
	if v, ok := Skew(values); ok {
		s.Skew = &v
	}

	sorted := sortedCopy(values)
	for i, q := range Quantiles {
		v := quantileSorted(sorted, q)
		s.Quantiles[i] = &v
	}
	return s
}

// Median of values; ok is false for empty input.
func Median(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	m, err := stats.Median(stats.Float64Data(values))
	if err != nil {
		return 0, false
	}
	return m, true
}

// Quantile uses linear interpolation between closest ranks, q in [0,1].
func Quantile(values []float64, q float64) (float64, bool) {
	if len(values) == 0 || q < 0 || q > 1 {
		return 0, false
	}
	return quantileSorted(sortedCopy(values), q), true
}

func quantileSorted(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// Skew is the adjusted Fisher-Pearson sample skewness. It needs at least three values;
// a constant sample has zero skew.
func Skew(values []float64) (float64, bool) {
	n := float64(len(values))
	if n < 3 {
		return 0, false
	}
	mean, err := stats.Mean(stats.Float64Data(values))
	if err != nil {
		return 0, false
	}

	var m2, m3 float64
	for _, v := range values {
		d := v - mean
		m2 += d * d
		m3 += d * d * d
	}
	m2 /= n
	m3 /= n
	if m2 == 0 {
		return 0, true
	}
	g1 := m3 / math.Pow(m2, 1.5)
	return g1 * math.Sqrt(n*(n-1)) / (n - 2), true
}

// OutlierBounds returns the 1.5*IQR fences.
func OutlierBounds(values []float64) (lower, upper float64, ok bool) {
	q1, ok1 := Quantile(values, 0.25)
	q3, ok3 := Quantile(values, 0.75)
	if !ok1 || !ok3 {
		return 0, 0, false
	}
	iqr := q3 - q1
	return q1 - 1.5*iqr, q3 + 1.5*iqr, true
}

func sortedCopy(values []float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	sort.Float64s(out)
	return out
}
