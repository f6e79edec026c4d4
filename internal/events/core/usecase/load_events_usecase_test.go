package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"churn-metrics-pipeline/internal/events/core/domain"
	"churn-metrics-pipeline/internal/events/core/usecase"
)

// Fake repository implementing EventRepositoryPort
type fakeEventRepo struct {
	EnsureSchemaFn func(ctx context.Context) error
	EnsureTypesFn  func(ctx context.Context, names []string) (map[string]int64, error)
	InsertFn       func(ctx context.Context, batch []domain.Event) (int64, error)

	schemaCalls int
	batches     [][]domain.Event
}

func (f *fakeEventRepo) EnsureSchema(ctx context.Context) error {
	f.schemaCalls++
	if f.EnsureSchemaFn != nil {
		return f.EnsureSchemaFn(ctx)
	}
	return nil
}

func (f *fakeEventRepo) EnsureEventTypes(ctx context.Context, names []string) (map[string]int64, error) {
	if f.EnsureTypesFn != nil {
		return f.EnsureTypesFn(ctx, names)
	}
	ids := make(map[string]int64, len(names))
	for i, n := range names {
		ids[n] = int64(i + 1)
	}
	return ids, nil
}

func (f *fakeEventRepo) InsertEvents(ctx context.Context, batch []domain.Event) (int64, error) {
	cp := append([]domain.Event(nil), batch...)
	f.batches = append(f.batches, cp)
	if f.InsertFn != nil {
		return f.InsertFn(ctx, cp)
	}
	return int64(len(batch)), nil
}

func ev(account, eventType string, day int) domain.Event {
	return domain.Event{
		AccountID: account,
		EventType: eventType,
		EventTime: time.Date(2020, 5, day, 10, 0, 0, 0, time.UTC),
	}
}

// ------------------------------------------------------------
// SUCCESS: batching and type resolution
// ------------------------------------------------------------
func TestLoadEvents_Batches(t *testing.T) {
	repo := &fakeEventRepo{}
	uc := usecase.NewLoadEventsUseCase(repo, nil)

	src := usecase.SliceSource{
		ev("A1", "login", 1),
		ev("A1", "purchase", 2),
		ev("A2", "login", 3),
		ev("A2", "login", 4),
		ev("A3", "logout", 5),
	}

	res, err := uc.Execute(context.Background(), usecase.LoadEventsInput{Source: src, BatchSize: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Rows != 5 || res.Inserted != 5 || res.Batches != 3 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(res.EventTypes) != 3 || res.EventTypes[0] != "login" || res.EventTypes[2] != "purchase" {
		t.Fatalf("expected sorted event types, got %v", res.EventTypes)
	}
	if repo.schemaCalls != 1 {
		t.Fatalf("expected schema ensured once, got %d", repo.schemaCalls)
	}
	if len(repo.batches[2]) != 1 {
		t.Fatalf("expected last batch of 1, got %d", len(repo.batches[2]))
	}
	// ids assigned in sorted-name order by the fake: login=1, logout=2, purchase=3
	if repo.batches[0][1].EventTypeID != 3 {
		t.Fatalf("expected purchase id 3, got %d", repo.batches[0][1].EventTypeID)
	}
}

// ------------------------------------------------------------
// DUPLICATES are counted, not failed
// ------------------------------------------------------------
func TestLoadEvents_DuplicatesCounted(t *testing.T) {
	repo := &fakeEventRepo{
		InsertFn: func(ctx context.Context, batch []domain.Event) (int64, error) {
			return int64(len(batch)) - 1, nil
		},
	}
	uc := usecase.NewLoadEventsUseCase(repo, nil)

	src := usecase.SliceSource{ev("A1", "login", 1), ev("A1", "login", 1)}
	res, err := uc.Execute(context.Background(), usecase.LoadEventsInput{Source: src, BatchSize: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Inserted != 1 || res.Duplicates != 1 {
		t.Fatalf("expected 1 inserted 1 duplicate, got %+v", res)
	}
}

// ------------------------------------------------------------
// INVALID ROW: nothing is written
// ------------------------------------------------------------
func TestLoadEvents_InvalidRowFailsBeforeWrites(t *testing.T) {
	repo := &fakeEventRepo{}
	uc := usecase.NewLoadEventsUseCase(repo, nil)

	bad := ev("", "login", 2)
	bad.Line = 3
	src := usecase.SliceSource{ev("A1", "login", 1), bad}

	_, err := uc.Execute(context.Background(), usecase.LoadEventsInput{Source: src, BatchSize: 1})
	if !errors.Is(err, usecase.ErrInvalidEvent) {
		t.Fatalf("expected ErrInvalidEvent, got %v", err)
	}
	if repo.schemaCalls != 0 || len(repo.batches) != 0 {
		t.Fatalf("expected no writes, got schema=%d batches=%d", repo.schemaCalls, len(repo.batches))
	}
}

func TestLoadEvents_MissingTimestamp(t *testing.T) {
	uc := usecase.NewLoadEventsUseCase(&fakeEventRepo{}, nil)

	src := usecase.SliceSource{{AccountID: "A1", EventType: "login"}}
	_, err := uc.Execute(context.Background(), usecase.LoadEventsInput{Source: src, BatchSize: 1})
	if !errors.Is(err, usecase.ErrInvalidEvent) {
		t.Fatalf("expected ErrInvalidEvent, got %v", err)
	}
}

// ------------------------------------------------------------
// BATCH FAILURE: earlier batches stay committed
// ------------------------------------------------------------
func TestLoadEvents_BatchFailure(t *testing.T) {
	dbErr := errors.New("connection reset")
	calls := 0
	repo := &fakeEventRepo{
		InsertFn: func(ctx context.Context, batch []domain.Event) (int64, error) {
			calls++
			if calls == 2 {
				return 0, dbErr
			}
			return int64(len(batch)), nil
		},
	}
	uc := usecase.NewLoadEventsUseCase(repo, nil)

	src := usecase.SliceSource{ev("A1", "login", 1), ev("A2", "login", 2), ev("A3", "login", 3)}
	res, err := uc.Execute(context.Background(), usecase.LoadEventsInput{Source: src, BatchSize: 1})

	var be *usecase.BatchError
	if !errors.As(err, &be) {
		t.Fatalf("expected BatchError, got %v", err)
	}
	if be.Batch != 2 || be.Committed != 1 || be.Inserted != 1 {
		t.Fatalf("unexpected batch error: %+v", be)
	}
	if !errors.Is(err, dbErr) {
		t.Fatalf("expected wrapped db error")
	}
	if res.Inserted != 1 {
		t.Fatalf("expected 1 committed row, got %d", res.Inserted)
	}
	if calls != 2 {
		t.Fatalf("expected load to stop after failure, got %d calls", calls)
	}
}

// passSource serves a different slice on each Scan, like a file edited between passes.
type passSource struct {
	passes [][]domain.Event
	ScanFn func(ctx context.Context, pass int) error

	calls int
}

func (p *passSource) Scan(ctx context.Context, fn func(domain.Event) error) error {
	pass := p.calls
	p.calls++
	for _, e := range p.passes[pass] {
		if err := fn(e); err != nil {
			return err
		}
	}
	if p.ScanFn != nil {
		return p.ScanFn(ctx, pass)
	}
	return nil
}

func TestLoadEvents_TypeChangedReportsCommittedBatches(t *testing.T) {
	repo := &fakeEventRepo{}
	uc := usecase.NewLoadEventsUseCase(repo, nil)

	src := &passSource{passes: [][]domain.Event{
		{ev("A1", "login", 1), ev("A2", "login", 2), ev("A3", "login", 3)},
		{ev("A1", "login", 1), ev("A2", "login", 2), ev("A3", "signup", 3)},
	}}
	res, err := uc.Execute(context.Background(), usecase.LoadEventsInput{Source: src, BatchSize: 2})

	if !errors.Is(err, usecase.ErrTypeChanged) {
		t.Fatalf("expected ErrTypeChanged, got %v", err)
	}
	var be *usecase.BatchError
	if !errors.As(err, &be) {
		t.Fatalf("expected BatchError, got %v", err)
	}
	if be.Batch != 2 || be.Committed != 1 || be.Inserted != 2 {
		t.Fatalf("unexpected batch error: %+v", be)
	}
	if res.Inserted != 2 || len(repo.batches) != 1 {
		t.Fatalf("expected one committed batch of 2, got %+v", res)
	}
}

func TestLoadEvents_SecondPassReadError(t *testing.T) {
	readErr := errors.New("file truncated")
	uc := usecase.NewLoadEventsUseCase(&fakeEventRepo{}, nil)

	src := &passSource{
		passes: [][]domain.Event{
			{ev("A1", "login", 1), ev("A2", "login", 2)},
			{ev("A1", "login", 1)},
		},
		ScanFn: func(ctx context.Context, pass int) error {
			if pass == 1 {
				return readErr
			}
			return nil
		},
	}
	_, err := uc.Execute(context.Background(), usecase.LoadEventsInput{Source: src, BatchSize: 1})

	var be *usecase.BatchError
	if !errors.As(err, &be) || !errors.Is(err, readErr) {
		t.Fatalf("expected BatchError wrapping the read error, got %v", err)
	}
	if be.Committed != 1 || be.Inserted != 1 {
		t.Fatalf("unexpected batch error: %+v", be)
	}
}

// ------------------------------------------------------------
// INPUT VALIDATION
// ------------------------------------------------------------
func TestLoadEvents_EmptyInput(t *testing.T) {
	uc := usecase.NewLoadEventsUseCase(&fakeEventRepo{}, nil)

	_, err := uc.Execute(context.Background(), usecase.LoadEventsInput{Source: usecase.SliceSource{}, BatchSize: 5})
	if !errors.Is(err, usecase.ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}

func TestLoadEvents_InvalidBatchSize(t *testing.T) {
	uc := usecase.NewLoadEventsUseCase(&fakeEventRepo{}, nil)

	_, err := uc.Execute(context.Background(), usecase.LoadEventsInput{Source: usecase.SliceSource{ev("A1", "x", 1)}})
	if !errors.Is(err, usecase.ErrInvalidBatch) {
		t.Fatalf("expected ErrInvalidBatch, got %v", err)
	}
}

func TestLoadEvents_SchemaError(t *testing.T) {
	schemaErr := errors.New("permission denied")
	repo := &fakeEventRepo{EnsureSchemaFn: func(ctx context.Context) error { return schemaErr }}
	uc := usecase.NewLoadEventsUseCase(repo, nil)

	_, err := uc.Execute(context.Background(), usecase.LoadEventsInput{Source: usecase.SliceSource{ev("A1", "x", 1)}, BatchSize: 5})
	if !errors.Is(err, schemaErr) {
		t.Fatalf("expected schema error, got %v", err)
	}
	if len(repo.batches) != 0 {
		t.Fatalf("expected no inserts")
	}
}
