// Package domain holds the current-customer snapshot: one row per active account, one
// column per metric name, values taken at the latest metric time.
package domain

import (
	"sort"
	"time"
)

// ActiveWindow is how far before the snapshot time an account's last event may be.
const ActiveWindow = 90 * 24 * time.Hour

// Observation is one metric value at the snapshot time.
type Observation struct {
	AccountID  string
	MetricName string
	Value      *float64
}

type Row struct {
	AccountID string
	Values    []*float64 // aligned with Snapshot.Metrics; nil = not observed
}

type Snapshot struct {
	AsOf    time.Time
	Metrics []string
	Rows    []Row
}

// ActiveSince is the inclusive lower bound of the activity window for a snapshot at asOf.
func ActiveSince(asOf time.Time) time.Time {
	return asOf.Add(-ActiveWindow)
}

// Pivot turns long observations into the wide table. Every account gets a row and every
// metric a column even when entirely unobserved; observations for accounts or metrics
// outside those lists are dropped.
func Pivot(asOf time.Time, metrics, accounts []string, obs []Observation) Snapshot {
	col := make(map[string]int, len(metrics))
	for i, m := range metrics {
		col[m] = i
	}

	sorted := append([]string(nil), accounts...)
	sort.Strings(sorted)

	s := Snapshot{AsOf: asOf, Metrics: metrics, Rows: make([]Row, 0, len(sorted))}
	row := make(map[string]int, len(sorted))
	for _, a := range sorted {
		if _, dup := row[a]; dup {
			continue
		}
		row[a] = len(s.Rows)
		s.Rows = append(s.Rows, Row{AccountID: a, Values: make([]*float64, len(metrics))})
	}

	for _, o := range obs {
		r, ok := row[o.AccountID]
		if !ok {
			continue
		}
		c, ok := col[o.MetricName]
		if !ok || o.Value == nil {
			continue
		}
		v := *o.Value
		s.Rows[r].Values[c] = &v
	}
	return s
}

// Column returns the non-null values of metric i, in row order.
func (s Snapshot) Column(i int) []float64 {
	var out []float64
	for _, r := range s.Rows {
		if v := r.Values[i]; v != nil {
			out = append(out, *v)
		}
	}
	return out
}

// Value looks up one cell; ok is false for an unknown account or metric.
func (s Snapshot) Value(account, metric string) (v *float64, ok bool) {
	c := -1
	for i, m := range s.Metrics {
		if m == metric {
			c = i
			break
		}
	}
	if c < 0 {
		return nil, false
	}
	for _, r := range s.Rows {
		if r.AccountID == account {
			return r.Values[c], true
		}
	}
	return nil, false
}
