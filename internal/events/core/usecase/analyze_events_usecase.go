package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"churn-metrics-pipeline/internal/events/core/domain"
	"churn-metrics-pipeline/internal/events/core/ports"
	"churn-metrics-pipeline/internal/pkg/daterange"
)

// CommonThreshold is the default events-per-account-per-month above which an event
// type gets a standard count metric.
const CommonThreshold = 0.05

// Threshold returns v, or CommonThreshold when v is not positive.
func Threshold(v float64) float64 {
	if v <= 0 {
		return CommonThreshold
	}
	return v
}

var ErrEventTypeRequired = errors.New("event type is required")

type AnalyzeEventsUseCase struct {
	reader ports.EventStatsReaderPort
}

func NewAnalyzeEventsUseCase(reader ports.EventStatsReaderPort) *AnalyzeEventsUseCase {
	return &AnalyzeEventsUseCase{reader: reader}
}

type EventsPerAccountInput struct {
	Range daterange.Range
}

// EventsPerAccount reports every event type's frequency over the inclusive date range,
// most frequent first. The month count is days / 28.
func (uc *AnalyzeEventsUseCase) EventsPerAccount(ctx context.Context, in EventsPerAccountInput) ([]domain.EventFrequency, error) {
	counts, err := uc.reader.CountByType(ctx, in.Range.Start, in.Range.End.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	days := in.Range.Days()
	out := make([]domain.EventFrequency, 0, len(counts))
	for _, c := range counts {
		out = append(out, domain.NewEventFrequency(c.EventType, c.NEvent, c.NAccount, days))
	}
	domain.SortByFrequency(out)
	return out, nil
}

type EventsPerDayInput struct {
	EventType string
	Range     daterange.Range
}

type EventsPerDayResult struct {
	Counts  []domain.DailyCount
	Summary domain.DailySummary
}

// EventsPerDay returns one count per day of the range, days without events included as 0.
func (uc *AnalyzeEventsUseCase) EventsPerDay(ctx context.Context, in EventsPerDayInput) (EventsPerDayResult, error) {
	if strings.TrimSpace(in.EventType) == "" {
		return EventsPerDayResult{}, ErrEventTypeRequired
	}

	counts, err := uc.reader.EventsPerDay(ctx, in.EventType, in.Range.Start, in.Range.End)
	if err != nil {
		return EventsPerDayResult{}, fmt.Errorf("events per day for %s: %w", in.EventType, err)
	}
	return EventsPerDayResult{Counts: counts, Summary: domain.SummarizeDaily(counts)}, nil
}

// CommonEventTypes lists the types strictly above minPerMonth events per account per
// month, most frequent first. Zero means CommonThreshold.
func (uc *AnalyzeEventsUseCase) CommonEventTypes(ctx context.Context, r daterange.Range, minPerMonth float64) ([]string, error) {
	freqs, err := uc.EventsPerAccount(ctx, EventsPerAccountInput{Range: r})
	if err != nil {
		return nil, err
	}
	return domain.CommonEventTypes(freqs, Threshold(minPerMonth)), nil
}
