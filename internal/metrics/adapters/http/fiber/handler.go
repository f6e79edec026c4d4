package fiber

import (
	"context"
	"errors"
	"net/http"
	"time"

	"churn-metrics-pipeline/internal/metrics/core/domain"
	"churn-metrics-pipeline/internal/metrics/core/usecase"
	"churn-metrics-pipeline/internal/pkg/daterange"
	platform "churn-metrics-pipeline/internal/platform/postgres"

	"github.com/gofiber/fiber/v2"
)

type MetricReportUseCase interface {
	Coverage(ctx context.Context, in usecase.CoverageInput) ([]domain.Coverage, error)
	StatsOverTime(ctx context.Context, in usecase.SeriesInput) ([]domain.SeriesPoint, error)
}

type MetricsHandler struct {
	uc MetricReportUseCase
}

func NewMetricsHandler(uc MetricReportUseCase) *MetricsHandler {
	return &MetricsHandler{uc: uc}
}

func (h *MetricsHandler) Register(r fiber.Router) {
	r.Get("/metrics/coverage", h.GetCoverage)
	r.Get("/metrics/series", h.GetSeries)
}

// GetCoverage godoc
// @Summary Metric coverage
// @Description Fraction of accounts active in the range that have a value for each metric
// @Tags Metrics
// @Produce json
// @Param start query string true "Start date (YYYY-MM-DD)"
// @Param end query string true "End date (YYYY-MM-DD)"
// @Success 200 {array} CoverageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /metrics/coverage [get]
func (h *MetricsHandler) GetCoverage(c *fiber.Ctx) error {
	r, err := daterange.Parse(c.Query("start"), c.Query("end"))
	if err != nil {
		return writeError(c, err)
	}

	rows, err := h.uc.Coverage(c.UserContext(), usecase.CoverageInput{Range: r})
	if err != nil {
		return writeError(c, err)
	}

	resp := make([]CoverageResponse, 0, len(rows))
	for _, row := range rows {
		resp = append(resp, CoverageResponse{
			MetricName:      row.MetricName,
			CountWithMetric: row.CountWithMetric,
			NAccount:        row.NAccount,
			PctWithMetric:   row.Pct(),
			AvgValue:        row.AvgValue,
			MinValue:        row.MinValue,
			MaxValue:        row.MaxValue,
			EarliestMetric:  formatTime(row.EarliestMetric),
			LastMetric:      formatTime(row.LastMetric),
		})
	}
	return c.Status(http.StatusOK).JSON(resp)
}

// GetSeries godoc
// @Summary Metric statistics over time
// @Description Count, average, min and max of the values observed at each weekly bucket
// @Tags Metrics
// @Produce json
// @Param metric query string true "Metric name"
// @Param start query string true "Start date (YYYY-MM-DD)"
// @Param end query string true "End date (YYYY-MM-DD)"
// @Success 200 {object} SeriesResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /metrics/series [get]
func (h *MetricsHandler) GetSeries(c *fiber.Ctx) error {
	metric := c.Query("metric")
	if metric == "" {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_query",
			Message: "metric is required",
		})
	}

	r, err := daterange.Parse(c.Query("start"), c.Query("end"))
	if err != nil {
		return writeError(c, err)
	}

	points, err := h.uc.StatsOverTime(c.UserContext(), usecase.SeriesInput{MetricName: metric, Range: r})
	if err != nil {
		return writeError(c, err)
	}

	resp := SeriesResponse{
		MetricName: metric,
		Points:     make([]SeriesPointResponse, 0, len(points)),
		Gaps:       []string{},
	}
	for _, p := range points {
		resp.Points = append(resp.Points, SeriesPointResponse{
			MetricTime: p.MetricTime.Format(daterange.Layout),
			NCalc:      p.NCalc,
			Avg:        p.Avg,
			Min:        p.Min,
			Max:        p.Max,
		})
	}
	for _, g := range domain.Gaps(points) {
		resp.Gaps = append(resp.Gaps, g.Format(daterange.Layout))
	}
	return c.Status(http.StatusOK).JSON(resp)
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(daterange.Layout)
	return &s
}

func writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, daterange.ErrInvalidDate),
		errors.Is(err, daterange.ErrInvalidRange):
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{Error: "invalid_query", Message: err.Error()})
	case errors.Is(err, usecase.ErrUnknownMetric):
		return c.Status(http.StatusNotFound).JSON(ErrorResponse{Error: "unknown_metric", Message: err.Error()})
	case errors.Is(err, usecase.ErrNoMetricNames),
		errors.Is(err, platform.ErrSchemaMissing):
		return c.Status(http.StatusNotFound).JSON(ErrorResponse{Error: "not_calculated", Message: "no metrics calculated yet"})
	default:
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{Error: "internal_server_error"})
	}
}
