package postgres

import (
	"context"
	"fmt"
	"time"

	"churn-metrics-pipeline/internal/events/core/domain"
	"churn-metrics-pipeline/internal/events/core/ports"
	platform "churn-metrics-pipeline/internal/platform/postgres"
)

type EventStatsReader struct {
	db DB
}

func NewEventStatsReader(db DB) *EventStatsReader {
	return &EventStatsReader{db: db}
}

var _ ports.EventStatsReaderPort = (*EventStatsReader)(nil)

// $1 = from, $2 = to (exclusive)
const countByTypeSQL = `
WITH active AS (
    SELECT COUNT(DISTINCT account_id) AS n_account
    FROM churn_analytics.event
    WHERE event_time >= $1 AND event_time < $2
)
SELECT t.event_type_name, COUNT(*) AS n_event, a.n_account
FROM churn_analytics.event e
INNER JOIN churn_analytics.event_type t ON t.event_type_id = e.event_type_id
CROSS JOIN active a
WHERE e.event_time >= $1 AND e.event_time < $2
GROUP BY t.event_type_name, a.n_account
ORDER BY t.event_type_name;
`

func (r *EventStatsReader) CountByType(ctx context.Context, from, to time.Time) ([]ports.TypeCount, error) {
	rows, err := r.db.QueryContext(ctx, countByTypeSQL, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to count events: %w", platform.Classify(err))
	}
	defer rows.Close()

	var out []ports.TypeCount
	for rows.Next() {
		var c ports.TypeCount
		if err := rows.Scan(&c.EventType, &c.NEvent, &c.NAccount); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// $1 = first day, $2 = last day (inclusive), $3 = event type name
const eventsPerDaySQL = `
WITH days AS (
    SELECT d::date AS event_date
    FROM generate_series($1::timestamp, $2::timestamp, interval '1 day') d
), matching AS (
    SELECT e.event_time::date AS event_date
    FROM churn_analytics.event e
    INNER JOIN churn_analytics.event_type t ON t.event_type_id = e.event_type_id
    WHERE t.event_type_name = $3
      AND e.event_time >= $1::timestamp
      AND e.event_time < $2::timestamp + interval '1 day'
)
SELECT days.event_date, COUNT(matching.event_date) AS n_event
FROM days
LEFT JOIN matching ON matching.event_date = days.event_date
GROUP BY days.event_date
ORDER BY days.event_date;
`

func (r *EventStatsReader) EventsPerDay(ctx context.Context, eventType string, first, last time.Time) ([]domain.DailyCount, error) {
	rows, err := r.db.QueryContext(ctx, eventsPerDaySQL, first, last, eventType)
	if err != nil {
		return nil, fmt.Errorf("failed to count events per day: %w", platform.Classify(err))
	}
	defer rows.Close()

	var out []domain.DailyCount
	for rows.Next() {
		var c domain.DailyCount
		if err := rows.Scan(&c.Day, &c.NEvent); err != nil {
			return nil, err
		}
		c.Day = c.Day.UTC()
		out = append(out, c)
	}
	return out, rows.Err()
}
