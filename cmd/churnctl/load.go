package main

import (
	"errors"
	"fmt"
	"unicode/utf8"

	eventsCSV "churn-metrics-pipeline/internal/events/adapters/csv"
	eventsRepoPg "churn-metrics-pipeline/internal/events/adapters/postgres"
	"churn-metrics-pipeline/internal/events/core/domain"
	eventsUsecase "churn-metrics-pipeline/internal/events/core/usecase"

	"github.com/spf13/cobra"
)

var loadCmd = &cobra.Command{
	Use:   "load <events.csv>",
	Short: "Load an event export into the database",
	Long: `Reads a delimited event file with a header row containing account_id, event_time
and event_type (product_id and additional_data are optional).

The whole file is validated before anything is written. Rows are then inserted in
batches, one transaction per batch. Rows already present are skipped unless
--duplicates reject is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup()
		if err != nil {
			return err
		}
		ctx, cancel := signalContext()
		defer cancel()

		delimiter, _ := cmd.Flags().GetString("delimiter")
		comma, err := parseDelimiter(delimiter)
		if err != nil {
			return err
		}
		dup, _ := cmd.Flags().GetString("duplicates")
		policy, err := domain.ParseDuplicatePolicy(dup)
		if err != nil {
			return err
		}

		db, err := a.openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		repo := eventsRepoPg.NewEventRepository(db, policy)
		uc := eventsUsecase.NewLoadEventsUseCase(repo, a.logger)

		a.logger.Info("loading events", "file", args[0], "batch_size", a.cfg.Load.BatchSize)
		res, err := uc.Execute(ctx, eventsUsecase.LoadEventsInput{
			Source:    eventsCSV.NewFileSource(args[0], comma),
			BatchSize: a.cfg.Load.BatchSize,
		})
		if err != nil {
			var batchErr *eventsUsecase.BatchError
			if errors.As(err, &batchErr) {
				a.logger.Error("load stopped",
					"failed_batch", batchErr.Batch,
					"committed_batches", batchErr.Committed,
					"committed_rows", batchErr.Inserted,
				)
			}
			return err
		}

		a.logger.Info("load complete",
			"rows", res.Rows,
			"inserted", res.Inserted,
			"duplicates", res.Duplicates,
			"batches", res.Batches,
			"event_types", len(res.EventTypes),
		)

		events, types, err := repo.Counts(ctx)
		if err != nil {
			return err
		}
		a.logger.Info("table counts", "event", events, "event_type", types)
		return nil
	},
}

// parseDelimiter accepts a single character or the escape \t.
func parseDelimiter(s string) (rune, error) {
	if s == `\t` {
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || size != len(s) || r == '"' || r == '\r' || r == '\n' {
		return 0, fmt.Errorf("invalid delimiter %q", s)
	}
	return r, nil
}

func init() {
	loadCmd.Flags().String("delimiter", ",", `Field delimiter (single character, \t for tab)`)
	loadCmd.Flags().Int("batch-size", 0, "Rows per transaction (overrides CHURN_BATCH_SIZE)")
	loadCmd.Flags().String("duplicates", "ignore", "What to do with rows already loaded: ignore or reject")

	if err := v.BindPFlag("load.batch_size", loadCmd.Flags().Lookup("batch-size")); err != nil {
		panic(err)
	}
}
