package fiber

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"churn-metrics-pipeline/internal/events/core/domain"
	"churn-metrics-pipeline/internal/events/core/usecase"
	platform "churn-metrics-pipeline/internal/platform/postgres"

	"github.com/gofiber/fiber/v2"
)

type fakeLoadUseCase struct {
	ExecuteFunc func(ctx context.Context, in usecase.LoadEventsInput) (usecase.LoadEventsResult, error)
	LastInput   usecase.LoadEventsInput
	LastEvents  []domain.Event
}

func (f *fakeLoadUseCase) Execute(ctx context.Context, in usecase.LoadEventsInput) (usecase.LoadEventsResult, error) {
	f.LastInput = in
	f.LastEvents = nil
	_ = in.Source.Scan(ctx, func(e domain.Event) error {
		f.LastEvents = append(f.LastEvents, e)
		return nil
	})
	if f.ExecuteFunc != nil {
		return f.ExecuteFunc(ctx, in)
	}
	return usecase.LoadEventsResult{}, nil
}

type fakeAnalyzeUseCase struct {
	PerAccountFunc func(ctx context.Context, in usecase.EventsPerAccountInput) ([]domain.EventFrequency, error)
	PerDayFunc     func(ctx context.Context, in usecase.EventsPerDayInput) (usecase.EventsPerDayResult, error)
}

func (f *fakeAnalyzeUseCase) EventsPerAccount(ctx context.Context, in usecase.EventsPerAccountInput) ([]domain.EventFrequency, error) {
	return f.PerAccountFunc(ctx, in)
}

func (f *fakeAnalyzeUseCase) EventsPerDay(ctx context.Context, in usecase.EventsPerDayInput) (usecase.EventsPerDayResult, error) {
	return f.PerDayFunc(ctx, in)
}

// helper: create fiber app and routes
func setupTestApp(load LoadEventsUseCase, analyze AnalyzeEventsUseCase) *fiber.App {
	app := fiber.New()
	NewEventHandler(load, analyze, 100).Register(app)
	return app
}

// helper: send request
func doRequest(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		buf = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	_ = resp.Body.Close()

	return resp, respBody
}

func TestCreateEvent_Created(t *testing.T) {
	load := &fakeLoadUseCase{
		ExecuteFunc: func(ctx context.Context, in usecase.LoadEventsInput) (usecase.LoadEventsResult, error) {
			return usecase.LoadEventsResult{Rows: 1, Inserted: 1, Batches: 1}, nil
		},
	}
	app := setupTestApp(load, &fakeAnalyzeUseCase{})

	resp, body := doRequest(t, app, http.MethodPost, "/events", CreateEventRequest{
		AccountID: "A1",
		EventTime: "2020-05-01 10:00:00",
		EventType: "login",
	})

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", resp.StatusCode, body)
	}
	if len(load.LastEvents) != 1 || load.LastEvents[0].AccountID != "A1" {
		t.Fatalf("unexpected events passed: %+v", load.LastEvents)
	}
	if !load.LastEvents[0].EventTime.Equal(time.Date(2020, 5, 1, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected time: %s", load.LastEvents[0].EventTime)
	}
}

func TestCreateEvent_Duplicate(t *testing.T) {
	load := &fakeLoadUseCase{
		ExecuteFunc: func(ctx context.Context, in usecase.LoadEventsInput) (usecase.LoadEventsResult, error) {
			return usecase.LoadEventsResult{Rows: 1, Duplicates: 1, Batches: 1}, nil
		},
	}
	app := setupTestApp(load, &fakeAnalyzeUseCase{})

	resp, body := doRequest(t, app, http.MethodPost, "/events", CreateEventRequest{
		AccountID: "A1", EventTime: "2020-05-01", EventType: "login",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var out CreateEventResponse
	_ = json.Unmarshal(body, &out)
	if out.Status != "duplicate" {
		t.Fatalf("expected duplicate status, got %q", out.Status)
	}
}

func TestCreateEvent_BadTimestamp(t *testing.T) {
	load := &fakeLoadUseCase{}
	app := setupTestApp(load, &fakeAnalyzeUseCase{})

	resp, _ := doRequest(t, app, http.MethodPost, "/events", CreateEventRequest{
		AccountID: "A1", EventTime: "yesterday", EventType: "login",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if load.LastInput.Source != nil {
		t.Fatalf("use case should not be called")
	}
}

func TestCreateEvent_InvalidJSON(t *testing.T) {
	app := setupTestApp(&fakeLoadUseCase{}, &fakeAnalyzeUseCase{})

	req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestBulkCreateEvents_Success(t *testing.T) {
	load := &fakeLoadUseCase{
		ExecuteFunc: func(ctx context.Context, in usecase.LoadEventsInput) (usecase.LoadEventsResult, error) {
			return usecase.LoadEventsResult{Rows: 2, Inserted: 1, Duplicates: 1, Batches: 1}, nil
		},
	}
	app := setupTestApp(load, &fakeAnalyzeUseCase{})

	resp, body := doRequest(t, app, http.MethodPost, "/events/bulk", BulkCreateEventsRequest{
		Events: []CreateEventRequest{
			{AccountID: "A1", EventTime: "2020-05-01", EventType: "login"},
			{AccountID: "A2", EventTime: "2020-05-02", EventType: "login"},
		},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if load.LastInput.BatchSize != 100 {
		t.Fatalf("expected configured batch size, got %d", load.LastInput.BatchSize)
	}

	var out BulkCreateEventsResponse
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if out.Created != 1 || out.Duplicates != 1 {
		t.Fatalf("unexpected response: %+v", out)
	}
}

func TestBulkCreateEvents_Empty(t *testing.T) {
	app := setupTestApp(&fakeLoadUseCase{}, &fakeAnalyzeUseCase{})

	resp, _ := doRequest(t, app, http.MethodPost, "/events/bulk", BulkCreateEventsRequest{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestBulkCreateEvents_InvalidEvent(t *testing.T) {
	load := &fakeLoadUseCase{
		ExecuteFunc: func(ctx context.Context, in usecase.LoadEventsInput) (usecase.LoadEventsResult, error) {
			return usecase.LoadEventsResult{}, usecase.ErrInvalidEvent
		},
	}
	app := setupTestApp(load, &fakeAnalyzeUseCase{})

	resp, _ := doRequest(t, app, http.MethodPost, "/events/bulk", BulkCreateEventsRequest{
		Events: []CreateEventRequest{{EventTime: "2020-05-01", EventType: "login"}},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestBulkCreateEvents_BatchFailure(t *testing.T) {
	load := &fakeLoadUseCase{
		ExecuteFunc: func(ctx context.Context, in usecase.LoadEventsInput) (usecase.LoadEventsResult, error) {
			return usecase.LoadEventsResult{}, &usecase.BatchError{Batch: 1, Err: errors.New("db down")}
		},
	}
	app := setupTestApp(load, &fakeAnalyzeUseCase{})

	resp, _ := doRequest(t, app, http.MethodPost, "/events/bulk", BulkCreateEventsRequest{
		Events: []CreateEventRequest{{AccountID: "A1", EventTime: "2020-05-01", EventType: "login"}},
	})
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
}

func TestEventsPerAccount_Success(t *testing.T) {
	analyze := &fakeAnalyzeUseCase{
		PerAccountFunc: func(ctx context.Context, in usecase.EventsPerAccountInput) ([]domain.EventFrequency, error) {
			if in.Range.Days() != 31 {
				t.Fatalf("expected 31 days, got %d", in.Range.Days())
			}
			return []domain.EventFrequency{domain.NewEventFrequency("login", 40, 10, 28)}, nil
		},
	}
	app := setupTestApp(&fakeLoadUseCase{}, analyze)

	resp, body := doRequest(t, app, http.MethodGet, "/events/per-account?start=2020-01-01&end=2020-01-31", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var out []EventFrequencyResponse
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if len(out) != 1 || out[0].EventsPerAccountPerMonth != 4 {
		t.Fatalf("unexpected response: %+v", out)
	}
}

func TestEventsPerAccount_BadRange(t *testing.T) {
	app := setupTestApp(&fakeLoadUseCase{}, &fakeAnalyzeUseCase{})

	resp, _ := doRequest(t, app, http.MethodGet, "/events/per-account?start=2020-02-01&end=2020-01-01", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestEventsPerAccount_NotLoaded(t *testing.T) {
	analyze := &fakeAnalyzeUseCase{
		PerAccountFunc: func(ctx context.Context, in usecase.EventsPerAccountInput) ([]domain.EventFrequency, error) {
			return nil, platform.ErrSchemaMissing
		},
	}
	app := setupTestApp(&fakeLoadUseCase{}, analyze)

	resp, _ := doRequest(t, app, http.MethodGet, "/events/per-account?start=2020-01-01&end=2020-01-31", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestEventsPerDay_Success(t *testing.T) {
	d := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	analyze := &fakeAnalyzeUseCase{
		PerDayFunc: func(ctx context.Context, in usecase.EventsPerDayInput) (usecase.EventsPerDayResult, error) {
			counts := []domain.DailyCount{{Day: d, NEvent: 4}, {Day: d.AddDate(0, 0, 1), NEvent: 0}}
			return usecase.EventsPerDayResult{Counts: counts, Summary: domain.SummarizeDaily(counts)}, nil
		},
	}
	app := setupTestApp(&fakeLoadUseCase{}, analyze)

	resp, body := doRequest(t, app, http.MethodGet, "/events/per-day?event_type=login&start=2020-01-01&end=2020-01-02", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var out EventsPerDayResponse
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if len(out.Days) != 2 || out.Days[0].EventDate != "2020-01-01" || out.Summary.ZeroDays != 1 {
		t.Fatalf("unexpected response: %+v", out)
	}
}

func TestEventsPerDay_MissingType(t *testing.T) {
	analyze := &fakeAnalyzeUseCase{
		PerDayFunc: func(ctx context.Context, in usecase.EventsPerDayInput) (usecase.EventsPerDayResult, error) {
			return usecase.EventsPerDayResult{}, usecase.ErrEventTypeRequired
		},
	}
	app := setupTestApp(&fakeLoadUseCase{}, analyze)

	resp, _ := doRequest(t, app, http.MethodGet, "/events/per-day?start=2020-01-01&end=2020-01-02", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
