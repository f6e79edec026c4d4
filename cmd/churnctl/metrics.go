package main

import (
	"context"

	eventsRepoPg "churn-metrics-pipeline/internal/events/adapters/postgres"
	eventsUsecase "churn-metrics-pipeline/internal/events/core/usecase"
	metricsRepoPg "churn-metrics-pipeline/internal/metrics/adapters/postgres"
	"churn-metrics-pipeline/internal/metrics/core/domain"
	metricsUsecase "churn-metrics-pipeline/internal/metrics/core/usecase"
	"churn-metrics-pipeline/internal/pkg/daterange"
	"churn-metrics-pipeline/internal/report"

	"github.com/spf13/cobra"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Calculate count metrics, then report coverage and QA",
	Long: `Calculates the 28-day trailing event count at every weekly date from --start to --end.

With --event-type a single metric is calculated (named --metric-name, default
count_<event_type>). Without it, a count_<event_type> metric is calculated for every
event type with more than --min-events-per-month events per account per month.
Observations already stored are kept.

Afterwards metric_coverage.csv is written for all metrics, followed by the stats over
time and QA chart for --metric-name or the first metric in the coverage report.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := dateRange(cmd)
		if err != nil {
			return err
		}
		eventType, _ := cmd.Flags().GetString("event-type")
		metricName, _ := cmd.Flags().GetString("metric-name")
		skip, _ := cmd.Flags().GetBool("skip-calculation")
		if eventType != "" && metricName == "" {
			metricName = domain.CountMetricName(eventType)
		}
		if metricName != "" {
			if err := domain.ValidateName(metricName); err != nil {
				return err
			}
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

		metricsDB := metricsRepoPg.NewSQLDB(db, a.logger)

		if !skip {
			selector := eventsUsecase.NewAnalyzeEventsUseCase(eventsRepoPg.NewEventStatsReader(db))
			calc := metricsUsecase.NewCalculateMetricsUseCase(metricsRepoPg.NewMetricWriter(metricsDB), selector, a.logger)

			if eventType != "" {
				_, err := calc.Execute(ctx, metricsUsecase.CalculateMetricInput{
					EventType:  eventType,
					MetricName: metricName,
					Range:      r,
				})
				if err != nil {
					return hint(err, "load")
				}
			} else {
				minPerMonth, _ := cmd.Flags().GetFloat64("min-events-per-month")
				res, err := calc.CalculateCommon(ctx, metricsUsecase.CalculateCommonInput{
					Range:             r,
					MinEventsPerMonth: minPerMonth,
				})
				if err != nil {
					return hint(err, "load")
				}
				for name, ferr := range res.Failed {
					a.logger.Error("metric failed", "metric", name, "error", ferr)
				}
				a.logger.Info("metrics calculated", "succeeded", len(res.Results), "failed", len(res.Failed))
			}
		}

		uc := metricsUsecase.NewMetricReportUseCase(metricsRepoPg.NewMetricReader(metricsDB))
		return metricReport(ctx, a, uc, out, r, metricName)
	},
}

var metricReportCmd = &cobra.Command{
	Use:   "metric-report",
	Short: "Report coverage and QA for metrics already calculated",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := dateRange(cmd)
		if err != nil {
			return err
		}
		metricName, _ := cmd.Flags().GetString("metric-name")

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

		uc := metricsUsecase.NewMetricReportUseCase(metricsRepoPg.NewMetricReader(metricsRepoPg.NewSQLDB(db, a.logger)))
		return metricReport(ctx, a, uc, out, r, metricName)
	},
}

func metricReport(ctx context.Context, a *app, uc *metricsUsecase.MetricReportUseCase, out *report.Writer, r daterange.Range, metricName string) error {
	coverage, err := uc.Coverage(ctx, metricsUsecase.CoverageInput{Range: r})
	if err != nil {
		return hint(err, "metrics")
	}

	path, err := out.Coverage(coverage)
	if err != nil {
		return err
	}
	a.logger.Info("coverage written", "file", path, "metrics", len(coverage))
	for _, c := range coverage {
		a.logger.Info("coverage",
			"metric", c.MetricName,
			"accounts_with_metric", c.CountWithMetric,
			"active_accounts", c.NAccount,
			"pct", c.Pct(),
		)
	}

	if metricName == "" {
		metricName = coverage[0].MetricName
	}

	points, err := uc.StatsOverTime(ctx, metricsUsecase.SeriesInput{MetricName: metricName, Range: r})
	if err != nil {
		return err
	}
	files, err := out.StatsOverTime(metricName, points)
	if err != nil {
		return err
	}
	a.logger.Info("stats over time written", "metric", metricName, "files", files, "dates", len(points))

	if gaps := domain.Gaps(points); len(gaps) > 0 {
		days := make([]string, len(gaps))
		for i, g := range gaps {
			days[i] = g.Format(daterange.Layout)
		}
		a.logger.Warn("dates with no observations", "metric", metricName, "dates", days)
	}
	return nil
}

func init() {
	for _, c := range []*cobra.Command{metricsCmd, metricReportCmd} {
		c.Flags().String("start", "", "First metric date (YYYY-MM-DD)")
		c.Flags().String("end", "", "Last metric date, inclusive (YYYY-MM-DD)")
		c.Flags().String("metric-name", "", "Metric to run the QA report for")
		_ = c.MarkFlagRequired("start")
		_ = c.MarkFlagRequired("end")
	}
	metricsCmd.Flags().String("event-type", "", "Calculate a single metric for this event type")
	metricsCmd.Flags().Bool("skip-calculation", false, "Only report on metrics already stored")
	metricsCmd.Flags().Float64("min-events-per-month", eventsUsecase.CommonThreshold, "Events per account per month an event type must exceed to get a count metric")
}
