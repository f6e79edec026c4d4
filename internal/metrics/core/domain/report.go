package domain

import "time"

// Coverage is one row of the metric coverage report.
type Coverage struct {
	MetricName      string
	CountWithMetric int64 // active accounts with at least one value in range
	NAccount        int64 // active accounts in range
	AvgValue        *float64
	MinValue        *float64
	MaxValue        *float64
	EarliestMetric  *time.Time
	LastMetric      *time.Time
}

// Pct is the covered fraction, clamped to [0,1] and 0 when no account is active.
func (c Coverage) Pct() float64 {
	if c.NAccount <= 0 || c.CountWithMetric <= 0 {
		return 0
	}
	p := float64(c.CountWithMetric) / float64(c.NAccount)
	if p > 1 {
		return 1
	}
	return p
}

// SeriesPoint summarises the values observed exactly at one bucket time.
// Avg/Min/Max are nil when NCalc is 0.
type SeriesPoint struct {
	MetricTime time.Time
	NCalc      int64
	Avg        *float64
	Min        *float64
	Max        *float64
}

// Gaps returns the bucket times no account contributed to.
func Gaps(points []SeriesPoint) []time.Time {
	var out []time.Time
	for _, p := range points {
		if p.NCalc == 0 {
			out = append(out, p.MetricTime)
		}
	}
	return out
}
