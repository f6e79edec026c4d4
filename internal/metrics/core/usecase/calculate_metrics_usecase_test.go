package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"churn-metrics-pipeline/internal/metrics/core/domain"
	"churn-metrics-pipeline/internal/metrics/core/usecase"
	"churn-metrics-pipeline/internal/pkg/daterange"
)

// Fake writer implementing MetricWriterPort
type fakeWriter struct {
	EnsureFn func(ctx context.Context) error
	InsertFn func(ctx context.Context, id int64, eventType string, first, last time.Time) (int64, error)

	names   map[string]int64
	inserts []string
}

func (f *fakeWriter) EnsureTables(ctx context.Context) error {
	if f.EnsureFn != nil {
		return f.EnsureFn(ctx)
	}
	return nil
}

func (f *fakeWriter) GetOrCreateMetricName(ctx context.Context, name string) (int64, error) {
	if f.names == nil {
		f.names = map[string]int64{}
	}
	if id, ok := f.names[name]; ok {
		return id, nil
	}
	f.names[name] = int64(len(f.names) + 1)
	return f.names[name], nil
}

func (f *fakeWriter) InsertCountMetric(ctx context.Context, id int64, eventType string, first, last time.Time) (int64, error) {
	f.inserts = append(f.inserts, eventType)
	if f.InsertFn != nil {
		return f.InsertFn(ctx, id, eventType, first, last)
	}
	return 3, nil
}

func (f *fakeWriter) CountForMetric(ctx context.Context, id int64) (int64, error) {
	return 10, nil
}

type fakeSelector struct {
	types []string
	err   error

	gotMin float64
}

func (f *fakeSelector) CommonEventTypes(ctx context.Context, r daterange.Range, minPerMonth float64) ([]string, error) {
	f.gotMin = minPerMonth
	return f.types, f.err
}

func mustRange(t *testing.T, start, end string) daterange.Range {
	t.Helper()
	r, err := daterange.Parse(start, end)
	if err != nil {
		t.Fatalf("bad range: %v", err)
	}
	return r
}

// ------------------------------------------------------------
// SINGLE METRIC
// ------------------------------------------------------------
func TestCalculateMetric_Success(t *testing.T) {
	var gotFirst, gotLast time.Time
	w := &fakeWriter{
		InsertFn: func(ctx context.Context, id int64, eventType string, first, last time.Time) (int64, error) {
			gotFirst, gotLast = first, last
			return 2, nil
		},
	}
	uc := usecase.NewCalculateMetricsUseCase(w, &fakeSelector{}, nil)

	res, err := uc.Execute(context.Background(), usecase.CalculateMetricInput{
		EventType:  "login",
		MetricName: "login_count",
		Range:      mustRange(t, "2021-01-01", "2021-01-31"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// last bucket is the last weekly step that does not pass the end date
	if !gotFirst.Equal(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)) || !gotLast.Equal(time.Date(2021, 1, 29, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected bucket bounds %s..%s", gotFirst, gotLast)
	}
	if res.Buckets != 5 || res.Inserted != 2 || res.Total != 10 || res.MetricNameID != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestCalculateMetric_InvalidInputsFailBeforeWrites(t *testing.T) {
	w := &fakeWriter{
		EnsureFn: func(ctx context.Context) error {
			t.Fatalf("tables must not be touched")
			return nil
		},
	}
	uc := usecase.NewCalculateMetricsUseCase(w, &fakeSelector{}, nil)
	r := mustRange(t, "2021-01-01", "2021-01-31")

	_, err := uc.Execute(context.Background(), usecase.CalculateMetricInput{MetricName: "x", Range: r})
	if !errors.Is(err, usecase.ErrEventTypeRequired) {
		t.Fatalf("expected ErrEventTypeRequired, got %v", err)
	}

	_, err = uc.Execute(context.Background(), usecase.CalculateMetricInput{EventType: "login", MetricName: "bad name", Range: r})
	if !errors.Is(err, domain.ErrInvalidMetricName) {
		t.Fatalf("expected ErrInvalidMetricName, got %v", err)
	}

	_, err = uc.Execute(context.Background(), usecase.CalculateMetricInput{EventType: "login", MetricName: "x"})
	if !errors.Is(err, daterange.ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestCalculateMetric_InsertError(t *testing.T) {
	dbErr := errors.New("db error")
	w := &fakeWriter{
		InsertFn: func(ctx context.Context, id int64, eventType string, first, last time.Time) (int64, error) {
			return 0, dbErr
		},
	}
	uc := usecase.NewCalculateMetricsUseCase(w, &fakeSelector{}, nil)

	_, err := uc.Execute(context.Background(), usecase.CalculateMetricInput{
		EventType: "login", MetricName: "login_count", Range: mustRange(t, "2021-01-01", "2021-01-31"),
	})
	if !errors.Is(err, dbErr) {
		t.Fatalf("expected db error, got %v", err)
	}
}

// ------------------------------------------------------------
// COMMON EVENTS
// ------------------------------------------------------------
func TestCalculateCommon_NamesAndPartialFailure(t *testing.T) {
	w := &fakeWriter{
		InsertFn: func(ctx context.Context, id int64, eventType string, first, last time.Time) (int64, error) {
			if eventType == "broken" {
				return 0, errors.New("boom")
			}
			return 1, nil
		},
	}
	uc := usecase.NewCalculateMetricsUseCase(w, &fakeSelector{types: []string{"login", "broken", "Page View"}}, nil)

	res, err := uc.CalculateCommon(context.Background(), usecase.CalculateCommonInput{Range: mustRange(t, "2021-01-01", "2021-03-01")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Results) != 2 || res.Results[1].MetricName != "count_page_view" {
		t.Fatalf("unexpected results: %+v", res.Results)
	}
	if _, ok := res.Failed["count_broken"]; !ok {
		t.Fatalf("expected count_broken to be reported failed: %v", res.Failed)
	}
}

func TestCalculateCommon_AllFailed(t *testing.T) {
	w := &fakeWriter{
		InsertFn: func(ctx context.Context, id int64, eventType string, first, last time.Time) (int64, error) {
			return 0, errors.New("boom")
		},
	}
	uc := usecase.NewCalculateMetricsUseCase(w, &fakeSelector{types: []string{"login"}}, nil)

	_, err := uc.CalculateCommon(context.Background(), usecase.CalculateCommonInput{Range: mustRange(t, "2021-01-01", "2021-03-01")})
	if !errors.Is(err, usecase.ErrAllMetricsFailed) {
		t.Fatalf("expected ErrAllMetricsFailed, got %v", err)
	}
}

func TestCalculateCommon_NoneCommon(t *testing.T) {
	uc := usecase.NewCalculateMetricsUseCase(&fakeWriter{}, &fakeSelector{}, nil)

	_, err := uc.CalculateCommon(context.Background(), usecase.CalculateCommonInput{Range: mustRange(t, "2021-01-01", "2021-03-01")})
	if !errors.Is(err, usecase.ErrNoCommonEvents) {
		t.Fatalf("expected ErrNoCommonEvents, got %v", err)
	}
}

func TestCalculateCommon_PassesThreshold(t *testing.T) {
	sel := &fakeSelector{types: []string{"login"}}
	uc := usecase.NewCalculateMetricsUseCase(&fakeWriter{}, sel, nil)

	_, err := uc.CalculateCommon(context.Background(), usecase.CalculateCommonInput{
		Range:             mustRange(t, "2021-01-01", "2021-03-01"),
		MinEventsPerMonth: 2.5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sel.gotMin != 2.5 {
		t.Fatalf("expected threshold 2.5 to reach the selector, got %v", sel.gotMin)
	}
}
