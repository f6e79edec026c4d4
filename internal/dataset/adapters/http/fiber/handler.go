package fiber

import (
	"context"
	"errors"
	"net/http"

	"churn-metrics-pipeline/internal/dataset/core/domain"
	"churn-metrics-pipeline/internal/dataset/core/usecase"
	"churn-metrics-pipeline/internal/pkg/describe"
	platform "churn-metrics-pipeline/internal/platform/postgres"

	"github.com/gofiber/fiber/v2"
)

type AssembleDatasetUseCase interface {
	Execute(ctx context.Context) (domain.Snapshot, error)
	Summary(ctx context.Context) ([]domain.ColumnSummary, error)
}

type DatasetHandler struct {
	uc AssembleDatasetUseCase
}

func NewDatasetHandler(uc AssembleDatasetUseCase) *DatasetHandler {
	return &DatasetHandler{uc: uc}
}

func (h *DatasetHandler) Register(r fiber.Router) {
	r.Get("/dataset", h.GetDataset)
	r.Get("/dataset/summary", h.GetSummary)
}

type DatasetRowResponse struct {
	AccountID string              `json:"account_id"`
	Values    map[string]*float64 `json:"values"`
}

type DatasetResponse struct {
	AsOf    string               `json:"as_of" example:"2021-01-29"`
	Metrics []string             `json:"metrics"`
	Rows    []DatasetRowResponse `json:"rows"`
}

type ColumnSummaryResponse struct {
	Metric  string              `json:"metric"`
	Count   int                 `json:"count"`
	NonZero *float64            `json:"nonzero"`
	Mean    *float64            `json:"mean"`
	Std     *float64            `json:"std"`
	Skew    *float64            `json:"skew"`
	Min     *float64            `json:"min"`
	Pct     map[string]*float64 `json:"percentiles"`
	Max     *float64            `json:"max"`
}

type ErrorResponse struct {
	Error   string `json:"error" example:"not_calculated"`
	Message string `json:"message"`
}

// GetDataset godoc
// @Summary Current customer dataset
// @Description One row per account active in the 90 days before the latest metric time; unobserved values are null
// @Tags Dataset
// @Produce json
// @Success 200 {object} DatasetResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /dataset [get]
func (h *DatasetHandler) GetDataset(c *fiber.Ctx) error {
	snap, err := h.uc.Execute(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}

	resp := DatasetResponse{
		AsOf:    snap.AsOf.Format("2006-01-02"),
		Metrics: snap.Metrics,
		Rows:    make([]DatasetRowResponse, 0, len(snap.Rows)),
	}
	for _, r := range snap.Rows {
		values := make(map[string]*float64, len(snap.Metrics))
		for i, m := range snap.Metrics {
			values[m] = r.Values[i]
		}
		resp.Rows = append(resp.Rows, DatasetRowResponse{AccountID: r.AccountID, Values: values})
	}
	return c.Status(http.StatusOK).JSON(resp)
}

// GetSummary godoc
// @Summary Dataset summary statistics
// @Tags Dataset
// @Produce json
// @Success 200 {array} ColumnSummaryResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /dataset/summary [get]
func (h *DatasetHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.uc.Summary(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}

	resp := make([]ColumnSummaryResponse, 0, len(summary))
	for _, s := range summary {
		pct := make(map[string]*float64, len(describe.Quantiles))
		for i, name := range domain.SummaryColumns[6:11] {
			pct[name] = s.Pct[i]
		}
		resp = append(resp, ColumnSummaryResponse{
			Metric:  s.Metric,
			Count:   s.Count,
			NonZero: s.NonZero,
			Mean:    s.Mean,
			Std:     s.Std,
			Skew:    s.Skew,
			Min:     s.Min,
			Pct:     pct,
			Max:     s.Max,
		})
	}
	return c.Status(http.StatusOK).JSON(resp)
}

func writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, usecase.ErrNoMetrics),
		errors.Is(err, platform.ErrSchemaMissing):
		return c.Status(http.StatusNotFound).JSON(ErrorResponse{Error: "not_calculated", Message: usecase.ErrNoMetrics.Error()})
	default:
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{Error: "internal_server_error"})
	}
}
