package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"churn-metrics-pipeline/internal/dataset/core/domain"
	"churn-metrics-pipeline/internal/dataset/core/ports"
	platform "churn-metrics-pipeline/internal/platform/postgres"

	"github.com/lib/pq"
)

// DB is satisfied by *sql.DB.
type DB interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type SnapshotRepository struct {
	db DB
}

func NewSnapshotRepository(db DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

var _ ports.SnapshotReaderPort = (*SnapshotRepository)(nil)

const latestMetricTimeSQL = `SELECT MAX(metric_time) FROM churn_analytics.metric`

func (r *SnapshotRepository) LatestMetricTime(ctx context.Context) (time.Time, bool, error) {
	rows, err := r.db.QueryContext(ctx, latestMetricTimeSQL)
	if err != nil {
		return time.Time{}, false, platform.Classify(err)
	}
	defer rows.Close()

	var t sql.NullTime
	if rows.Next() {
		if err := rows.Scan(&t); err != nil {
			return time.Time{}, false, err
		}
	}
	if err := rows.Err(); err != nil {
		return time.Time{}, false, err
	}
	if !t.Valid {
		return time.Time{}, false, nil
	}
	return t.Time.UTC(), true, nil
}

const metricNamesSQL = `SELECT metric_name FROM churn_analytics.metric_name ORDER BY metric_name_id`

func (r *SnapshotRepository) MetricNames(ctx context.Context) ([]string, error) {
	return r.strings(ctx, metricNamesSQL)
}

const activeAccountsSQL = `
SELECT DISTINCT account_id
FROM churn_analytics.event
WHERE event_time >= $1 AND event_time < $2
ORDER BY account_id`

func (r *SnapshotRepository) ActiveAccounts(ctx context.Context, from, to time.Time) ([]string, error) {
	return r.strings(ctx, activeAccountsSQL, from, to)
}

const observationsAtSQL = `
SELECT m.account_id, n.metric_name, m.metric_value
FROM churn_analytics.metric m
INNER JOIN churn_analytics.metric_name n ON n.metric_name_id = m.metric_name_id
WHERE m.metric_time = $1
  AND m.account_id = ANY($2)`

func (r *SnapshotRepository) ObservationsAt(ctx context.Context, t time.Time, accounts []string) ([]domain.Observation, error) {
	rows, err := r.db.QueryContext(ctx, observationsAtSQL, t, pq.Array(accounts))
	if err != nil {
		return nil, fmt.Errorf("failed to read observations: %w", platform.Classify(err))
	}
	defer rows.Close()

	var out []domain.Observation
	for rows.Next() {
		var (
			o domain.Observation
			v sql.NullFloat64
		)
		if err := rows.Scan(&o.AccountID, &o.MetricName, &v); err != nil {
			return nil, err
		}
		if v.Valid {
			o.Value = &v.Float64
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *SnapshotRepository) strings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, platform.Classify(err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
