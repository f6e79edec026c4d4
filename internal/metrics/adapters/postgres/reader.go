package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"churn-metrics-pipeline/internal/metrics/core/domain"
	"churn-metrics-pipeline/internal/metrics/core/ports"
	platform "churn-metrics-pipeline/internal/platform/postgres"
)

type MetricReader struct {
	db DB
}

func NewMetricReader(db DB) *MetricReader {
	return &MetricReader{db: db}
}

var _ ports.MetricReaderPort = (*MetricReader)(nil)

func (r *MetricReader) MetricNames(ctx context.Context) ([]domain.MetricName, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT metric_name_id, metric_name
FROM churn_analytics.metric_name
ORDER BY metric_name_id`)
	if err != nil {
		return nil, platform.Classify(err)
	}
	defer rows.Close()

	var out []domain.MetricName
	for rows.Next() {
		var n domain.MetricName
		if err := rows.Scan(&n.ID, &n.Name); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// $1 = from, $2 = to (exclusive). Only values of accounts active in the window count;
// metric names without such values still get a row.
const coverageSQL = `
WITH active AS (
    SELECT DISTINCT account_id
    FROM churn_analytics.event
    WHERE event_time >= $1 AND event_time < $2
), in_range AS (
    SELECT m.account_id, m.metric_time, m.metric_name_id, m.metric_value
    FROM churn_analytics.metric m
    INNER JOIN active a ON a.account_id = m.account_id
    WHERE m.metric_time >= $1 AND m.metric_time < $2
)
SELECT n.metric_name,
       COUNT(DISTINCT v.account_id) AS count_with_metric,
       (SELECT COUNT(*) FROM active) AS n_account,
       AVG(v.metric_value) AS avg_value,
       MIN(v.metric_value) AS min_value,
       MAX(v.metric_value) AS max_value,
       MIN(v.metric_time) AS earliest_metric,
       MAX(v.metric_time) AS last_metric
FROM churn_analytics.metric_name n
LEFT JOIN in_range v ON v.metric_name_id = n.metric_name_id
GROUP BY n.metric_name_id, n.metric_name
ORDER BY n.metric_name;
`

func (r *MetricReader) Coverage(ctx context.Context, from, to time.Time) ([]domain.Coverage, error) {
	rows, err := r.db.QueryContext(ctx, coverageSQL, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query coverage: %w", platform.Classify(err))
	}
	defer rows.Close()

	var out []domain.Coverage
	for rows.Next() {
		var (
			c                domain.Coverage
			avg, minV, maxV  sql.NullFloat64
			earliest, latest sql.NullTime
		)
		if err := rows.Scan(&c.MetricName, &c.CountWithMetric, &c.NAccount,
			&avg, &minV, &maxV, &earliest, &latest); err != nil {
			return nil, err
		}
		c.AvgValue, c.MinValue, c.MaxValue = floatPtr(avg), floatPtr(minV), floatPtr(maxV)
		c.EarliestMetric, c.LastMetric = timePtr(earliest), timePtr(latest)
		out = append(out, c)
	}
	return out, rows.Err()
}

// $1 = first bucket, $2 = last bucket, $3 = metric name. Values are matched at exactly
// the bucket time, so empty buckets come back with n_calc = 0.
const statsOverTimeSQL = `
WITH buckets AS (
    SELECT i::timestamp AS metric_time
    FROM generate_series($1::timestamp, $2::timestamp, interval '7 day') i
), vals AS (
    SELECT m.metric_time, m.metric_value
    FROM churn_analytics.metric m
    INNER JOIN churn_analytics.metric_name n ON n.metric_name_id = m.metric_name_id
    WHERE n.metric_name = $3
)
SELECT b.metric_time,
       COUNT(v.metric_value) AS n_calc,
       AVG(v.metric_value) AS avg_value,
       MIN(v.metric_value) AS min_value,
       MAX(v.metric_value) AS max_value
FROM buckets b
LEFT JOIN vals v ON v.metric_time = b.metric_time
GROUP BY b.metric_time
ORDER BY b.metric_time;
`

func (r *MetricReader) StatsOverTime(ctx context.Context, metricName string, first, last time.Time) ([]domain.SeriesPoint, error) {
	rows, err := r.db.QueryContext(ctx, statsOverTimeSQL, first, last, metricName)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats over time: %w", platform.Classify(err))
	}
	defer rows.Close()

	var out []domain.SeriesPoint
	for rows.Next() {
		var (
			p               domain.SeriesPoint
			avg, minV, maxV sql.NullFloat64
		)
		if err := rows.Scan(&p.MetricTime, &p.NCalc, &avg, &minV, &maxV); err != nil {
			return nil, err
		}
		p.MetricTime = p.MetricTime.UTC()
		if p.NCalc > 0 {
			p.Avg, p.Min, p.Max = floatPtr(avg), floatPtr(minV), floatPtr(maxV)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func timePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time.UTC()
	return &t
}
