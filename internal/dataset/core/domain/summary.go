package domain

import "churn-metrics-pipeline/internal/pkg/describe"

// SummaryColumns is the header of the summary statistics file, after the metric name.
var SummaryColumns = []string{
	"count", "nonzero", "mean", "std", "skew", "min",
	"1pct", "25pct", "50pct", "75pct", "99pct", "max",
}

// ColumnSummary describes one metric column of a snapshot. Pointer fields are nil when
// the statistic is undefined for the column (too few values, no rows).
type ColumnSummary struct {
	Metric  string
	Count   int
	NonZero *float64 // fraction of all rows holding a non-null, non-zero value
	Mean    *float64
	Std     *float64
	Skew    *float64
	Min     *float64
	Pct     []*float64 // aligned with describe.Quantiles
	Max     *float64
}

// Values returns the statistics in SummaryColumns order.
func (c ColumnSummary) Values() []*float64 {
	count := float64(c.Count)
	out := []*float64{&count, c.NonZero, c.Mean, c.Std, c.Skew, c.Min}
	out = append(out, c.Pct...)
	return append(out, c.Max)
}

// Summarize computes per-column statistics from the snapshot alone.
func Summarize(s Snapshot) []ColumnSummary {
	out := make([]ColumnSummary, 0, len(s.Metrics))
	for i, m := range s.Metrics {
		values := s.Column(i)
		d := describe.Describe(values)

		cs := ColumnSummary{
			Metric: m,
			Count:  d.Count,
			Mean:   d.Mean,
			Std:    d.Std,
			Skew:   d.Skew,
			Min:    d.Min,
			Pct:    d.Quantiles,
			Max:    d.Max,
		}
		if len(s.Rows) > 0 {
			nz := 0
			for _, v := range values {
				if v != 0 {
					nz++
				}
			}
			f := float64(nz) / float64(len(s.Rows))
			cs.NonZero = &f
		}
		out = append(out, cs)
	}
	return out
}
