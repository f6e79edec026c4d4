package fiber

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"churn-metrics-pipeline/internal/dataset/core/domain"
	"churn-metrics-pipeline/internal/dataset/core/usecase"

	"github.com/gofiber/fiber/v2"
)

type fakeAssembleUseCase struct {
	snap    domain.Snapshot
	summary []domain.ColumnSummary
	err     error
}

func (f *fakeAssembleUseCase) Execute(ctx context.Context) (domain.Snapshot, error) {
	return f.snap, f.err
}

func (f *fakeAssembleUseCase) Summary(ctx context.Context) ([]domain.ColumnSummary, error) {
	return f.summary, f.err
}

func request(t *testing.T, uc AssembleDatasetUseCase, path string) (int, []byte) {
	t.Helper()
	app := fiber.New()
	NewDatasetHandler(uc).Register(app)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, body
}

func v(x float64) *float64 { return &x }

func TestGetDataset_NullsSerialized(t *testing.T) {
	asOf := time.Date(2021, 1, 29, 0, 0, 0, 0, time.UTC)
	snap := domain.Pivot(asOf, []string{"login_count", "purchase_count"}, []string{"A1"}, []domain.Observation{
		{AccountID: "A1", MetricName: "login_count", Value: v(2)},
	})

	status, body := request(t, &fakeAssembleUseCase{snap: snap}, "/dataset")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if raw["as_of"] != "2021-01-29" {
		t.Fatalf("unexpected as_of %v", raw["as_of"])
	}
	rows := raw["rows"].([]any)
	values := rows[0].(map[string]any)["values"].(map[string]any)
	if values["login_count"] != 2.0 {
		t.Fatalf("expected 2, got %v", values["login_count"])
	}
	if p, ok := values["purchase_count"]; !ok || p != nil {
		t.Fatalf("expected explicit null, got %v (present=%v)", p, ok)
	}
}

func TestGetDataset_NoMetrics(t *testing.T) {
	status, _ := request(t, &fakeAssembleUseCase{err: usecase.ErrNoMetrics}, "/dataset")
	if status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
}

func TestGetDataset_InternalError(t *testing.T) {
	status, _ := request(t, &fakeAssembleUseCase{err: errors.New("db down")}, "/dataset")
	if status != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", status)
	}
}

func TestGetSummary(t *testing.T) {
	snap := domain.Pivot(time.Now(), []string{"m"}, []string{"A", "B"}, []domain.Observation{
		{AccountID: "A", MetricName: "m", Value: v(4)},
	})

	status, body := request(t, &fakeAssembleUseCase{summary: domain.Summarize(snap)}, "/dataset/summary")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}

	var out []ColumnSummaryResponse
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if len(out) != 1 || out[0].Count != 1 || *out[0].NonZero != 0.5 || out[0].Std != nil {
		t.Fatalf("unexpected summary: %+v", out)
	}
	if *out[0].Pct["50pct"] != 4 {
		t.Fatalf("unexpected median: %v", out[0].Pct)
	}
}
