package ports

import (
	"context"
	"time"

	"churn-metrics-pipeline/internal/events/core/domain"
)

// EventSource streams events in file order. Scan stops at the first error returned by fn.
type EventSource interface {
	Scan(ctx context.Context, fn func(domain.Event) error) error
}

type EventRepositoryPort interface {
	// EnsureSchema creates the schema, event_type and event tables if absent.
	EnsureSchema(ctx context.Context) error
	// EnsureEventTypes creates missing names and returns the id of every name given.
	EnsureEventTypes(ctx context.Context, names []string) (map[string]int64, error)
	// InsertEvents writes one batch in a single transaction and returns the rows
	// actually inserted (duplicates under the ignore policy are not counted).
	InsertEvents(ctx context.Context, batch []domain.Event) (int64, error)
}

type EventStatsReaderPort interface {
	// CountByType returns, per event type, the events in [from, to) and the number
	// of distinct accounts active in the same window.
	CountByType(ctx context.Context, from, to time.Time) ([]TypeCount, error)
	// EventsPerDay returns one row per calendar day in [first, last], zero-filled.
	EventsPerDay(ctx context.Context, eventType string, first, last time.Time) ([]domain.DailyCount, error)
}

type TypeCount struct {
	EventType string
	NEvent    int64
	NAccount  int64
}
