package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"churn-metrics-pipeline/internal/metrics/core/ports"
	platform "churn-metrics-pipeline/internal/platform/postgres"

	sq "github.com/Masterminds/squirrel"
)

const (
	metricTable     = platform.Schema + ".metric"
	metricNameTable = platform.Schema + ".metric_name"
)

var createMetricTablesSQL = []string{
	`CREATE TABLE IF NOT EXISTS churn_analytics.metric_name (
    metric_name_id SERIAL PRIMARY KEY,
    metric_name    TEXT NOT NULL UNIQUE
)`,
	`CREATE TABLE IF NOT EXISTS churn_analytics.metric (
    account_id     TEXT NOT NULL,
    metric_time    TIMESTAMP NOT NULL,
    metric_name_id INTEGER NOT NULL REFERENCES churn_analytics.metric_name (metric_name_id),
    metric_value   DOUBLE PRECISION,
    UNIQUE (account_id, metric_time, metric_name_id)
)`,
	`CREATE INDEX IF NOT EXISTS metric_time_idx ON churn_analytics.metric (metric_time)`,
}

type MetricWriter struct {
	db DB
}

func NewMetricWriter(db DB) *MetricWriter {
	return &MetricWriter{db: db}
}

var _ ports.MetricWriterPort = (*MetricWriter)(nil)

func (w *MetricWriter) EnsureTables(ctx context.Context) error {
	if err := platform.EnsureSchema(ctx, w.db); err != nil {
		return err
	}
	for _, stmt := range createMetricTablesSQL {
		if _, err := w.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create metric tables: %w", err)
		}
	}
	return nil
}

func (w *MetricWriter) GetOrCreateMetricName(ctx context.Context, name string) (int64, error) {
	query, args, err := sq.Insert(metricNameTable).
		Columns("metric_name").
		Values(name).
		Suffix("ON CONFLICT (metric_name) DO NOTHING").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return 0, err
	}
	if _, err := w.db.ExecContext(ctx, query, args...); err != nil {
		return 0, fmt.Errorf("failed to create metric name %s: %w", name, platform.Classify(err))
	}

	query, args, err = sq.Select("metric_name_id").
		From(metricNameTable).
		Where(sq.Eq{"metric_name": name}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return 0, err
	}

	var id int64
	if err := w.scanOne(ctx, query, args, &id); err != nil {
		return 0, fmt.Errorf("failed to read metric name %s: %w", name, err)
	}
	return id, nil
}

// $1 = first bucket, $2 = last bucket, $3 = metric_name_id, $4 = event type name.
// Each bucket t counts the account's events in [t - 28 days, t).
const insertCountMetricSQL = `
WITH date_vals AS (
    SELECT i::timestamp AS metric_date
    FROM generate_series($1::timestamp, $2::timestamp, interval '7 day') i
)
INSERT INTO churn_analytics.metric (account_id, metric_time, metric_name_id, metric_value)
SELECT e.account_id, d.metric_date, $3, COUNT(*)
FROM churn_analytics.event e
INNER JOIN date_vals d
    ON e.event_time < d.metric_date
   AND e.event_time >= d.metric_date - interval '28 day'
INNER JOIN churn_analytics.event_type t ON t.event_type_id = e.event_type_id
WHERE t.event_type_name = $4
GROUP BY e.account_id, d.metric_date
ON CONFLICT (account_id, metric_time, metric_name_id) DO NOTHING;
`

func (w *MetricWriter) InsertCountMetric(ctx context.Context, metricNameID int64, eventType string, first, last time.Time) (int64, error) {
	res, err := w.db.ExecContext(ctx, insertCountMetricSQL, first, last, metricNameID, eventType)
	if err != nil {
		return 0, platform.Classify(err)
	}
	return res.RowsAffected()
}

func (w *MetricWriter) CountForMetric(ctx context.Context, metricNameID int64) (int64, error) {
	query, args, err := sq.Select("COUNT(*)").
		From(metricTable).
		Where(sq.Eq{"metric_name_id": metricNameID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return 0, err
	}

	var n int64
	if err := w.scanOne(ctx, query, args, &n); err != nil {
		return 0, err
	}
	return n, nil
}

func (w *MetricWriter) scanOne(ctx context.Context, query string, args []any, dest ...any) error {
	rows, err := w.db.QueryContext(ctx, query, args...)
	if err != nil {
		return platform.Classify(err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return err
		}
		return sql.ErrNoRows
	}
	if err := rows.Scan(dest...); err != nil {
		return err
	}
	return rows.Err()
}
