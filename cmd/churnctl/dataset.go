package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	datasetCSV "churn-metrics-pipeline/internal/dataset/adapters/csv"
	datasetRepoPg "churn-metrics-pipeline/internal/dataset/adapters/postgres"
	"churn-metrics-pipeline/internal/dataset/core/domain"
	datasetUsecase "churn-metrics-pipeline/internal/dataset/core/usecase"
	"churn-metrics-pipeline/internal/report"

	"github.com/spf13/cobra"
)

var datasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Assemble the current customer dataset",
	Long: `Takes the latest metric date, finds the accounts with events in the 90 days before
it and writes one row per account with one column per metric (empty when the account
has no value). Summary statistics per metric are written next to it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
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

		uc := datasetUsecase.NewAssembleDatasetUseCase(datasetRepoPg.NewSnapshotRepository(db), a.logger)
		snap, err := uc.Execute(ctx)
		if err != nil {
			return hint(err, "metrics")
		}

		summary := domain.Summarize(snap)
		files, err := out.Dataset(snap, summary)
		if err != nil {
			return err
		}
		a.logger.Info("dataset written", "files", files, "accounts", len(snap.Rows), "metrics", len(snap.Metrics))
		logSummary(a, summary)
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats <dataset.csv>",
	Short: "Recompute summary statistics from a dataset file",
	Long: `Reads a dataset written by the dataset command and writes <name>_summarystats.csv
next to it. No database connection is made.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup()
		if err != nil {
			return err
		}

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		snap, err := datasetCSV.ReadSnapshot(f)
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}

		out, err := report.NewWriter(filepath.Dir(args[0]))
		if err != nil {
			return err
		}
		summary := domain.Summarize(snap)
		path := strings.TrimSuffix(args[0], filepath.Ext(args[0])) + "_summarystats.csv"
		if err := out.Summary(path, summary); err != nil {
			return err
		}
		a.logger.Info("summary written", "file", path, "accounts", len(snap.Rows), "metrics", len(snap.Metrics))
		logSummary(a, summary)
		return nil
	},
}

func logSummary(a *app, summary []domain.ColumnSummary) {
	for _, s := range summary {
		attrs := []any{"metric", s.Metric, "count", s.Count}
		if s.Mean != nil {
			attrs = append(attrs, "mean", *s.Mean)
		}
		if s.NonZero != nil {
			attrs = append(attrs, "nonzero", *s.NonZero)
		}
		a.logger.Debug("column summary", attrs...)
	}
}
