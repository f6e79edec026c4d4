package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"churn-metrics-pipeline/internal/events/core/domain"
	"churn-metrics-pipeline/internal/events/core/ports"
)

var (
	ErrInvalidEvent = errors.New("invalid event")
	ErrEmptyInput   = errors.New("no events in input")
	ErrInvalidBatch = errors.New("invalid batch size")
	ErrTypeChanged  = errors.New("event type changed between passes")
)

// BatchError reports a failed batch. Batches before it are committed and stay committed.
type BatchError struct {
	Batch     int   // 1-based index of the failed batch
	Committed int   // batches committed before the failure
	Inserted  int64 // rows inserted by those batches
	Err       error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch %d failed after %d committed batches (%d rows): %v",
		e.Batch, e.Committed, e.Inserted, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }

type LoadEventsUseCase struct {
	repo   ports.EventRepositoryPort
	logger *slog.Logger
}

func NewLoadEventsUseCase(repo ports.EventRepositoryPort, logger *slog.Logger) *LoadEventsUseCase {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &LoadEventsUseCase{repo: repo, logger: logger}
}

type LoadEventsInput struct {
	Source    ports.EventSource
	BatchSize int
}

type LoadEventsResult struct {
	Rows       int   // rows read from the source
	Inserted   int64 // rows written
	Duplicates int64 // rows skipped as already present
	Batches    int
	EventTypes []string
}

// Execute validates the whole source before writing anything, then registers the
// event types and inserts the rows batch by batch, one transaction per batch.
func (uc *LoadEventsUseCase) Execute(ctx context.Context, in LoadEventsInput) (LoadEventsResult, error) {
	var res LoadEventsResult

	if in.Source == nil {
		return res, fmt.Errorf("%w: no source", ErrInvalidEvent)
	}
	if in.BatchSize < 1 {
		return res, fmt.Errorf("%w: %d", ErrInvalidBatch, in.BatchSize)
	}

	seen := map[string]struct{}{}
	err := in.Source.Scan(ctx, func(e domain.Event) error {
		if err := validateEvent(e); err != nil {
			return err
		}
		seen[e.EventType] = struct{}{}
		res.Rows++
		return nil
	})
	if err != nil {
		return res, err
	}
	if res.Rows == 0 {
		return res, ErrEmptyInput
	}

	for name := range seen {
		res.EventTypes = append(res.EventTypes, name)
	}
	sort.Strings(res.EventTypes)

	if err := uc.repo.EnsureSchema(ctx); err != nil {
		return res, err
	}
	ids, err := uc.repo.EnsureEventTypes(ctx, res.EventTypes)
	if err != nil {
		return res, err
	}
	uc.logger.Debug("event types registered", "count", len(ids))

	batch := make([]domain.Event, 0, in.BatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := uc.repo.InsertEvents(ctx, batch)
		if err != nil {
			return &BatchError{
				Batch:     res.Batches + 1,
				Committed: res.Batches,
				Inserted:  res.Inserted,
				Err:       err,
			}
		}
		res.Batches++
		res.Inserted += n
		res.Duplicates += int64(len(batch)) - n
		uc.logger.Info("batch committed", "batch", res.Batches, "rows", len(batch), "inserted", n)
		batch = batch[:0]
		return nil
	}

	err = in.Source.Scan(ctx, func(e domain.Event) error {
		id, ok := ids[e.EventType]
		if !ok {
			return fmt.Errorf("%w: %q", ErrTypeChanged, e.EventType)
		}
		e.EventTypeID = id
		batch = append(batch, e)
		if len(batch) == in.BatchSize {
			return flush()
		}
		return nil
	})
	if err != nil {
		var batchErr *BatchError
		if errors.As(err, &batchErr) {
			return res, err
		}
		// a source or cancellation error in the second pass: report what is already committed
		return res, &BatchError{
			Batch:     res.Batches + 1,
			Committed: res.Batches,
			Inserted:  res.Inserted,
			Err:       err,
		}
	}
	if err := flush(); err != nil {
		return res, err
	}

	return res, nil
}

func validateEvent(e domain.Event) error {
	var missing []string
	if strings.TrimSpace(e.AccountID) == "" {
		missing = append(missing, "account_id")
	}
	if strings.TrimSpace(e.EventType) == "" {
		missing = append(missing, "event_type")
	}
	if e.EventTime.IsZero() {
		missing = append(missing, "event_time")
	}
	if len(missing) == 0 {
		return nil
	}

	if e.Line > 0 {
		return fmt.Errorf("%w: line %d: missing %s", ErrInvalidEvent, e.Line, strings.Join(missing, ", "))
	}
	return fmt.Errorf("%w: missing %s", ErrInvalidEvent, strings.Join(missing, ", "))
}

// SliceSource serves events already in memory, e.g. from an HTTP request body.
type SliceSource []domain.Event

func (s SliceSource) Scan(ctx context.Context, fn func(domain.Event) error) error {
	for _, e := range s {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	return nil
}
