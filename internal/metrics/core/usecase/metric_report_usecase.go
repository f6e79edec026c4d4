package usecase

import (
	"context"
	"errors"
	"fmt"

	"churn-metrics-pipeline/internal/metrics/core/domain"
	"churn-metrics-pipeline/internal/metrics/core/ports"
	"churn-metrics-pipeline/internal/pkg/daterange"
)

var (
	ErrUnknownMetric = errors.New("unknown metric")
	ErrNoMetricNames = errors.New("no metrics calculated yet")
)

type MetricReportUseCase struct {
	reader ports.MetricReaderPort
}

func NewMetricReportUseCase(reader ports.MetricReaderPort) *MetricReportUseCase {
	return &MetricReportUseCase{reader: reader}
}

type CoverageInput struct {
	Range daterange.Range
}

// Coverage reports every metric name against the accounts active in the inclusive range.
func (uc *MetricReportUseCase) Coverage(ctx context.Context, in CoverageInput) ([]domain.Coverage, error) {
	rows, err := uc.reader.Coverage(ctx, in.Range.Start, in.Range.End.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoMetricNames
	}
	return rows, nil
}

type SeriesInput struct {
	MetricName string
	Range      daterange.Range
}

// StatsOverTime returns one point per weekly bucket, empty buckets included.
func (uc *MetricReportUseCase) StatsOverTime(ctx context.Context, in SeriesInput) ([]domain.SeriesPoint, error) {
	names, err := uc.reader.MetricNames(ctx)
	if err != nil {
		return nil, err
	}
	found := false
	for _, n := range names {
		if n.Name == in.MetricName {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMetric, in.MetricName)
	}

	if in.Range.Start.IsZero() || in.Range.End.Before(in.Range.Start) {
		return nil, daterange.ErrInvalidRange
	}
	buckets := domain.Buckets(in.Range)
	return uc.reader.StatsOverTime(ctx, in.MetricName, buckets[0], buckets[len(buckets)-1])
}
