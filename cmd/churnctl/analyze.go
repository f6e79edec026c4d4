package main

import (
	"context"

	eventsRepoPg "churn-metrics-pipeline/internal/events/adapters/postgres"
	"churn-metrics-pipeline/internal/events/core/domain"
	eventsUsecase "churn-metrics-pipeline/internal/events/core/usecase"
	"churn-metrics-pipeline/internal/pkg/daterange"
	"churn-metrics-pipeline/internal/report"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Report event frequencies and daily event counts",
	Long: `Writes events_per_account_per_month.csv for the date range, then a per-day count
file and QA chart for --event-type, or for every event type above the common-event
threshold when no type is given. Dates are inclusive.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := dateRange(cmd)
		if err != nil {
			return err
		}
		a, err := setup()
		if err != nil {
			return err
		}
		ctx, cancel := signalContext()
		defer cancel()

		out, err := report.NewWriter(a.cfg.Output.Dir)
		if err != nil {
			return err
		}

		db, err := a.openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		uc := eventsUsecase.NewAnalyzeEventsUseCase(eventsRepoPg.NewEventStatsReader(db))

		freqs, err := uc.EventsPerAccount(ctx, eventsUsecase.EventsPerAccountInput{Range: r})
		if err != nil {
			return hint(err, "load")
		}
		path, err := out.EventsPerAccount(freqs)
		if err != nil {
			return err
		}
		a.logger.Info("events per account written", "file", path, "event_types", len(freqs))
		for _, f := range freqs {
			a.logger.Debug("event frequency",
				"event_type", f.EventType,
				"n_event", f.NEvent,
				"n_account", f.NAccount,
				"per_account_per_month", f.EventsPerAccountPerMonth,
			)
		}

		minPerMonth, _ := cmd.Flags().GetFloat64("min-events-per-month")
		threshold := eventsUsecase.Threshold(minPerMonth)
		types := domain.CommonEventTypes(freqs, threshold)
		if et, _ := cmd.Flags().GetString("event-type"); et != "" {
			types = []string{et}
		}
		if len(types) == 0 {
			a.logger.Warn("no common event types in range", "threshold", threshold)
			return nil
		}

		for _, et := range types {
			if err := analyzeDaily(ctx, a, uc, out, et, r); err != nil {
				return err
			}
		}
		return nil
	},
}

func analyzeDaily(ctx context.Context, a *app, uc *eventsUsecase.AnalyzeEventsUseCase, out *report.Writer, eventType string, r daterange.Range) error {
	res, err := uc.EventsPerDay(ctx, eventsUsecase.EventsPerDayInput{EventType: eventType, Range: r})
	if err != nil {
		return err
	}
	files, err := out.EventsPerDay(eventType, res.Counts)
	if err != nil {
		return err
	}

	s := res.Summary
	a.logger.Info("events per day",
		"event_type", eventType,
		"files", files,
		"days", s.Days,
		"days_with_events", s.DaysWithData,
		"zero_days", s.ZeroDays,
		"mean", s.Mean,
		"median", s.Median,
		"min", s.Min,
		"max", s.Max,
		"gaps", s.Gaps,
		"outliers", len(s.Outliers),
	)
	for _, o := range s.Outliers {
		a.logger.Debug("outlier day", "event_type", eventType, "day", o.Day.Format(daterange.Layout), "n_event", o.NEvent)
	}
	return nil
}

func init() {
	analyzeCmd.Flags().String("start", "", "First day (YYYY-MM-DD)")
	analyzeCmd.Flags().String("end", "", "Last day, inclusive (YYYY-MM-DD)")
	analyzeCmd.Flags().String("event-type", "", "Only report daily counts for this event type")
	analyzeCmd.Flags().Float64("min-events-per-month", eventsUsecase.CommonThreshold, "Events per account per month an event type must exceed to be common")
	_ = analyzeCmd.MarkFlagRequired("start")
	_ = analyzeCmd.MarkFlagRequired("end")
}
