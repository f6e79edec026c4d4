package usecase

import (
	"context"
	"errors"
	"log/slog"

	"churn-metrics-pipeline/internal/dataset/core/domain"
	"churn-metrics-pipeline/internal/dataset/core/ports"
)

// ErrNoMetrics means the metric tables are empty; metrics must be calculated first.
var ErrNoMetrics = errors.New("no metrics calculated; run the metrics command first")

type AssembleDatasetUseCase struct {
	reader ports.SnapshotReaderPort
	logger *slog.Logger
}

func NewAssembleDatasetUseCase(reader ports.SnapshotReaderPort, logger *slog.Logger) *AssembleDatasetUseCase {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &AssembleDatasetUseCase{reader: reader, logger: logger}
}

// Execute builds the snapshot at the latest metric time for accounts active in the
// preceding ActiveWindow.
func (uc *AssembleDatasetUseCase) Execute(ctx context.Context) (domain.Snapshot, error) {
	asOf, ok, err := uc.reader.LatestMetricTime(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}
	if !ok {
		return domain.Snapshot{}, ErrNoMetrics
	}

	metrics, err := uc.reader.MetricNames(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}
	if len(metrics) == 0 {
		return domain.Snapshot{}, ErrNoMetrics
	}

	accounts, err := uc.reader.ActiveAccounts(ctx, domain.ActiveSince(asOf), asOf)
	if err != nil {
		return domain.Snapshot{}, err
	}

	var obs []domain.Observation
	if len(accounts) > 0 {
		obs, err = uc.reader.ObservationsAt(ctx, asOf, accounts)
		if err != nil {
			return domain.Snapshot{}, err
		}
	}

	snap := domain.Pivot(asOf, metrics, accounts, obs)
	uc.logger.Info("dataset assembled",
		"as_of", asOf.Format("2006-01-02"),
		"accounts", len(snap.Rows),
		"metrics", len(snap.Metrics),
		"observations", len(obs),
	)
	if len(snap.Rows) == 0 {
		uc.logger.Warn("no active accounts in window", "since", domain.ActiveSince(asOf).Format("2006-01-02"))
	}
	return snap, nil
}

// Summary assembles the snapshot and describes each metric column.
func (uc *AssembleDatasetUseCase) Summary(ctx context.Context) ([]domain.ColumnSummary, error) {
	snap, err := uc.Execute(ctx)
	if err != nil {
		return nil, err
	}
	return domain.Summarize(snap), nil
}
