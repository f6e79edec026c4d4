package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"churn-metrics-pipeline/internal/metrics/core/domain"
	"churn-metrics-pipeline/internal/metrics/core/ports"
	"churn-metrics-pipeline/internal/pkg/daterange"
)

var (
	ErrEventTypeRequired = errors.New("event type is required")
	ErrNoCommonEvents    = errors.New("no event type is common enough to measure")
	ErrAllMetricsFailed  = errors.New("every metric calculation failed")
)

type CalculateMetricsUseCase struct {
	writer   ports.MetricWriterPort
	selector ports.EventTypeSelector
	logger   *slog.Logger
}

func NewCalculateMetricsUseCase(writer ports.MetricWriterPort, selector ports.EventTypeSelector, logger *slog.Logger) *CalculateMetricsUseCase {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CalculateMetricsUseCase{writer: writer, selector: selector, logger: logger}
}

type CalculateMetricInput struct {
	EventType  string
	MetricName string
	Range      daterange.Range
}

type CalculateMetricResult struct {
	MetricName   string
	MetricNameID int64
	EventType    string
	Buckets      int
	Inserted     int64 // rows written by this run
	Total        int64 // rows stored for the metric afterwards
}

// Execute computes a trailing-window event count for one event type. Observations that
// already exist for a (account, time, metric) are left untouched.
func (uc *CalculateMetricsUseCase) Execute(ctx context.Context, in CalculateMetricInput) (CalculateMetricResult, error) {
	res := CalculateMetricResult{MetricName: in.MetricName, EventType: in.EventType}

	if strings.TrimSpace(in.EventType) == "" {
		return res, ErrEventTypeRequired
	}
	if err := domain.ValidateName(in.MetricName); err != nil {
		return res, err
	}
	if in.Range.Start.IsZero() || in.Range.End.Before(in.Range.Start) {
		return res, daterange.ErrInvalidRange
	}
	buckets := domain.Buckets(in.Range)
	res.Buckets = len(buckets)

	if err := uc.writer.EnsureTables(ctx); err != nil {
		return res, err
	}

	id, err := uc.writer.GetOrCreateMetricName(ctx, in.MetricName)
	if err != nil {
		return res, err
	}
	res.MetricNameID = id

	last := buckets[len(buckets)-1]
	res.Inserted, err = uc.writer.InsertCountMetric(ctx, id, in.EventType, buckets[0], last)
	if err != nil {
		return res, fmt.Errorf("metric %s: %w", in.MetricName, err)
	}

	res.Total, err = uc.writer.CountForMetric(ctx, id)
	if err != nil {
		return res, err
	}

	uc.logger.Info("metric calculated",
		"metric", in.MetricName,
		"event_type", in.EventType,
		"buckets", res.Buckets,
		"first", buckets[0].Format(daterange.Layout),
		"last", last.Format(daterange.Layout),
		"inserted", res.Inserted,
		"total", res.Total,
	)
	if res.Inserted == 0 {
		uc.logger.Warn("no new observations", "metric", in.MetricName, "event_type", in.EventType)
	}
	return res, nil
}

type CalculateCommonInput struct {
	Range             daterange.Range
	MinEventsPerMonth float64 // zero means the selector's default
}

type CalculateCommonResult struct {
	Results []CalculateMetricResult
	Failed  map[string]error // metric name -> error
}

// CalculateCommon computes count_<event> for every common event type. A failing metric is
// logged and skipped; an error is returned only when none succeeded.
func (uc *CalculateMetricsUseCase) CalculateCommon(ctx context.Context, in CalculateCommonInput) (CalculateCommonResult, error) {
	res := CalculateCommonResult{Failed: map[string]error{}}

	types, err := uc.selector.CommonEventTypes(ctx, in.Range, in.MinEventsPerMonth)
	if err != nil {
		return res, err
	}
	if len(types) == 0 {
		return res, ErrNoCommonEvents
	}

	var errs []error
	for _, t := range types {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		name := domain.CountMetricName(t)
		r, err := uc.Execute(ctx, CalculateMetricInput{EventType: t, MetricName: name, Range: in.Range})
		if err != nil {
			uc.logger.Error("metric failed", "metric", name, "event_type", t, "err", err)
			res.Failed[name] = err
			errs = append(errs, err)
			continue
		}
		res.Results = append(res.Results, r)
	}

	if len(res.Results) == 0 {
		return res, fmt.Errorf("%w: %w", ErrAllMetricsFailed, errors.Join(errs...))
	}
	return res, nil
}
