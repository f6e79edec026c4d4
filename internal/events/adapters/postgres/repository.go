package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"churn-metrics-pipeline/internal/events/core/domain"
	"churn-metrics-pipeline/internal/events/core/ports"
	platform "churn-metrics-pipeline/internal/platform/postgres"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
)

const (
	eventTable     = platform.Schema + ".event"
	eventTypeTable = platform.Schema + ".event_type"

	// lookups are chunked to stay far below the bind parameter limit
	typeChunk = 5000
)

var createEventTablesSQL = []string{
	`CREATE TABLE IF NOT EXISTS churn_analytics.event_type (
    event_type_id   SERIAL PRIMARY KEY,
    event_type_name TEXT NOT NULL UNIQUE
)`,
	`CREATE TABLE IF NOT EXISTS churn_analytics.event (
    account_id      TEXT NOT NULL,
    event_time      TIMESTAMP NOT NULL,
    event_type_id   INTEGER NOT NULL REFERENCES churn_analytics.event_type (event_type_id),
    product_id      TEXT,
    additional_data TEXT,
    UNIQUE (account_id, event_time, event_type_id)
)`,
	`CREATE INDEX IF NOT EXISTS event_time_idx ON churn_analytics.event (event_time)`,
	`CREATE INDEX IF NOT EXISTS event_type_time_idx ON churn_analytics.event (event_type_id, event_time)`,
}

type EventRepository struct {
	db     DB
	policy domain.DuplicatePolicy
}

func NewEventRepository(db DB, policy domain.DuplicatePolicy) *EventRepository {
	return &EventRepository{db: db, policy: policy}
}

var _ ports.EventRepositoryPort = (*EventRepository)(nil)

func (r *EventRepository) EnsureSchema(ctx context.Context) error {
	if err := platform.EnsureSchema(ctx, r.db); err != nil {
		return err
	}
	for _, stmt := range createEventTablesSQL {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create event tables: %w", err)
		}
	}
	return nil
}

func (r *EventRepository) EnsureEventTypes(ctx context.Context, names []string) (map[string]int64, error) {
	ids := make(map[string]int64, len(names))
	if len(names) == 0 {
		return ids, nil
	}

	sorted := append([]string(nil), names...)
	sort.Strings(sorted)

	for start := 0; start < len(sorted); start += typeChunk {
		chunk := sorted[start:min(start+typeChunk, len(sorted))]

		ins := sq.Insert(eventTypeTable).
			Columns("event_type_name").
			Suffix("ON CONFLICT (event_type_name) DO NOTHING").
			PlaceholderFormat(sq.Dollar)
		for _, n := range chunk {
			ins = ins.Values(n)
		}
		query, args, err := ins.ToSql()
		if err != nil {
			return nil, err
		}
		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return nil, fmt.Errorf("failed to insert event types: %w", err)
		}

		query, args, err = sq.Select("event_type_id", "event_type_name").
			From(eventTypeTable).
			Where(sq.Eq{"event_type_name": chunk}).
			PlaceholderFormat(sq.Dollar).
			ToSql()
		if err != nil {
			return nil, err
		}
		if err := r.scanTypes(ctx, ids, query, args); err != nil {
			return nil, err
		}
	}

	for _, n := range names {
		if _, ok := ids[n]; !ok {
			return nil, fmt.Errorf("event type %q was not created", n)
		}
	}
	return ids, nil
}

func (r *EventRepository) scanTypes(ctx context.Context, ids map[string]int64, query string, args []any) error {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to read event types: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t domain.EventType
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return err
		}
		ids[t.Name] = t.ID
	}
	return rows.Err()
}

func (r *EventRepository) InsertEvents(ctx context.Context, batch []domain.Event) (int64, error) {
	if len(batch) == 0 {
		return 0, nil
	}

	ins := sq.Insert(eventTable).
		Columns("account_id", "event_time", "event_type_id", "product_id", "additional_data").
		PlaceholderFormat(sq.Dollar)
	if r.policy == domain.IgnoreDuplicates {
		ins = ins.Suffix("ON CONFLICT (account_id, event_time, event_type_id) DO NOTHING")
	}
	for _, e := range batch {
		ins = ins.Values(e.AccountID, e.EventTime, e.EventTypeID, nullable(e.ProductID), nullable(e.AdditionalData))
	}
	query, args, err := ins.ToSql()
	if err != nil {
		return 0, err
	}

	var inserted int64
	err = platform.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		inserted, err = res.RowsAffected()
		return err
	})
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return 0, fmt.Errorf("%w: %s", domain.ErrDuplicateEvent, pqErr.Detail)
		}
		return 0, fmt.Errorf("failed to insert events: %w", platform.Classify(err))
	}
	return inserted, nil
}

// Counts is used by load to report table sizes after a run.
func (r *EventRepository) Counts(ctx context.Context) (events, eventTypes int64, err error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT (SELECT COUNT(*) FROM churn_analytics.event),
       (SELECT COUNT(*) FROM churn_analytics.event_type)`)
	if err != nil {
		return 0, 0, platform.Classify(err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&events, &eventTypes); err != nil {
			return 0, 0, err
		}
	}
	return events, eventTypes, rows.Err()
}

// nullable maps "" to NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
