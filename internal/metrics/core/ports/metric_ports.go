package ports

import (
	"context"
	"time"

	"churn-metrics-pipeline/internal/metrics/core/domain"
	"churn-metrics-pipeline/internal/pkg/daterange"
)

type MetricWriterPort interface {
	EnsureTables(ctx context.Context) error
	GetOrCreateMetricName(ctx context.Context, name string) (int64, error)
	// InsertCountMetric counts events of eventType per account in [t-Window, t) for every
	// bucket t in [first, last]. Accounts with no events get no row. Existing rows are kept.
	InsertCountMetric(ctx context.Context, metricNameID int64, eventType string, first, last time.Time) (int64, error)
	CountForMetric(ctx context.Context, metricNameID int64) (int64, error)
}

type MetricReaderPort interface {
	MetricNames(ctx context.Context) ([]domain.MetricName, error)
	// Coverage covers every metric name; from is inclusive, to exclusive.
	Coverage(ctx context.Context, from, to time.Time) ([]domain.Coverage, error)
	StatsOverTime(ctx context.Context, metricName string, first, last time.Time) ([]domain.SeriesPoint, error)
}

// EventTypeSelector picks the event types with more than minPerMonth events per account
// per month; zero selects the default threshold.
type EventTypeSelector interface {
	CommonEventTypes(ctx context.Context, r daterange.Range, minPerMonth float64) ([]string, error)
}
