package ports

import (
	"context"
	"time"

	"churn-metrics-pipeline/internal/dataset/core/domain"
)

type SnapshotReaderPort interface {
	// LatestMetricTime is MAX(metric_time); ok is false when no metric exists.
	LatestMetricTime(ctx context.Context) (t time.Time, ok bool, err error)
	// MetricNames lists every metric name ordered by id.
	MetricNames(ctx context.Context) ([]string, error)
	// ActiveAccounts lists accounts with an event in [from, to).
	ActiveAccounts(ctx context.Context, from, to time.Time) ([]string, error)
	// ObservationsAt returns the values recorded exactly at t for the given accounts.
	ObservationsAt(ctx context.Context, t time.Time, accounts []string) ([]domain.Observation, error)
}
