package domain

import (
	"sort"
	"time"

	"churn-metrics-pipeline/internal/pkg/describe"
)

// DaysPerMonth is the month length used by the events-per-month report.
const DaysPerMonth = 28.0

// EventFrequency is one row of the events-per-account-per-month report.
type EventFrequency struct {
	EventType                string
	NEvent                   int64
	NAccount                 int64
	EventsPerAccount         float64
	NMonths                  float64
	EventsPerAccountPerMonth float64
}

// NewEventFrequency derives the ratios; zero accounts or zero days yield zero ratios.
func NewEventFrequency(eventType string, nEvent, nAccount int64, days int) EventFrequency {
	f := EventFrequency{
		EventType: eventType,
		NEvent:    nEvent,
		NAccount:  nAccount,
		NMonths:   float64(days) / DaysPerMonth,
	}
	if nAccount > 0 {
		f.EventsPerAccount = float64(nEvent) / float64(nAccount)
	}
	if f.NMonths > 0 {
		f.EventsPerAccountPerMonth = f.EventsPerAccount / f.NMonths
	}
	return f
}

// SortByFrequency orders most common first, ties by name.
func SortByFrequency(freqs []EventFrequency) {
	sort.SliceStable(freqs, func(i, j int) bool {
		if freqs[i].EventsPerAccountPerMonth != freqs[j].EventsPerAccountPerMonth {
			return freqs[i].EventsPerAccountPerMonth > freqs[j].EventsPerAccountPerMonth
		}
		return freqs[i].EventType < freqs[j].EventType
	})
}

// CommonEventTypes keeps the event types strictly above the threshold, in input order.
func CommonEventTypes(freqs []EventFrequency, minPerMonth float64) []string {
	var out []string
	for _, f := range freqs {
		if f.EventsPerAccountPerMonth > minPerMonth {
			out = append(out, f.EventType)
		}
	}
	return out
}

// DailyCount is one calendar day of the events-per-day report. Zero means the day
// was observed with no events.
type DailyCount struct {
	Day    time.Time
	NEvent int64
}

type DailySummary struct {
	Days         int
	DaysWithData int
	ZeroDays     int
	Mean         float64
	Median       float64
	Min          int64
	Max          int64
	Gaps         int // consecutive rows more than one day apart
	Outliers     []DailyCount
}

func SummarizeDaily(counts []DailyCount) DailySummary {
	s := DailySummary{Days: len(counts)}
	if len(counts) == 0 {
		return s
	}

	values := make([]float64, len(counts))
	s.Min, s.Max = counts[0].NEvent, counts[0].NEvent
	for i, c := range counts {
		values[i] = float64(c.NEvent)
		if c.NEvent > 0 {
			s.DaysWithData++
		} else {
			s.ZeroDays++
		}
		if c.NEvent < s.Min {
			s.Min = c.NEvent
		}
		if c.NEvent > s.Max {
			s.Max = c.NEvent
		}
		if i > 0 && c.Day.Sub(counts[i-1].Day) > 24*time.Hour {
			s.Gaps++
		}
	}

	d := describe.Describe(values)
	if d.Mean != nil {
		s.Mean = *d.Mean
	}
	if m, ok := describe.Median(values); ok {
		s.Median = m
	}

	if lower, upper, ok := describe.OutlierBounds(values); ok {
		for _, c := range counts {
			v := float64(c.NEvent)
			if v < lower || v > upper {
				s.Outliers = append(s.Outliers, c)
			}
		}
	}
	return s
}
