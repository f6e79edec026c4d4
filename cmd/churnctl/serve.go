package main

import (
	"context"
	"time"

	datasetHttp "churn-metrics-pipeline/internal/dataset/adapters/http/fiber"
	datasetRepoPg "churn-metrics-pipeline/internal/dataset/adapters/postgres"
	datasetUsecase "churn-metrics-pipeline/internal/dataset/core/usecase"

	eventsHttp "churn-metrics-pipeline/internal/events/adapters/http/fiber"
	eventsRepoPg "churn-metrics-pipeline/internal/events/adapters/postgres"
	"churn-metrics-pipeline/internal/events/core/domain"
	eventsUsecase "churn-metrics-pipeline/internal/events/core/usecase"

	metricsHttp "churn-metrics-pipeline/internal/metrics/adapters/http/fiber"
	metricsRepoPg "churn-metrics-pipeline/internal/metrics/adapters/postgres"
	metricsUsecase "churn-metrics-pipeline/internal/metrics/core/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	fiberSwagger "github.com/swaggo/fiber-swagger"

	_ "churn-metrics-pipeline/docs"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve ingestion and reports over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup()
		if err != nil {
			return err
		}
		ctx, cancel := signalContext()
		defer cancel()

		dup, _ := cmd.Flags().GetString("duplicates")
		policy, err := domain.ParseDuplicatePolicy(dup)
		if err != nil {
			return err
		}

		// DB connection
		db, err := a.openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		// Adapter-level DB wrappers
		metricsDB := metricsRepoPg.NewSQLDB(db, a.logger)

		// Repositories
		eventRepository := eventsRepoPg.NewEventRepository(db, policy)
		eventStats := eventsRepoPg.NewEventStatsReader(db)
		metricReader := metricsRepoPg.NewMetricReader(metricsDB)
		snapshotRepository := datasetRepoPg.NewSnapshotRepository(db)

		// Usecases
		loadUC := eventsUsecase.NewLoadEventsUseCase(eventRepository, a.logger)
		analyzeUC := eventsUsecase.NewAnalyzeEventsUseCase(eventStats)
		metricReportUC := metricsUsecase.NewMetricReportUseCase(metricReader)
		datasetUC := datasetUsecase.NewAssembleDatasetUseCase(snapshotRepository, a.logger)

		// HTTP (Fiber) app + handlers
		app := fiber.New(fiber.Config{DisableStartupMessage: true})

		eventsHttp.NewEventHandler(loadUC, analyzeUC, a.cfg.Load.BatchSize).Register(app)
		metricsHttp.NewMetricsHandler(metricReportUC).Register(app)
		datasetHttp.NewDatasetHandler(datasetUC).Register(app)

		// Swagger
		app.Get("/docs/*", fiberSwagger.WrapHandler)

		errCh := make(chan error, 1)
		go func() {
			errCh <- app.Listen(a.cfg.HTTP.Addr)
		}()

		a.logger.Info("server started", "addr", a.cfg.HTTP.Addr)

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		a.logger.Info("shutting down...")

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()

		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			a.logger.Error("fiber shutdown error", "error", err)
		}

		a.logger.Info("server exiting")
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides CHURN_HTTP_ADDR)")
	serveCmd.Flags().String("duplicates", "ignore", "Policy for events already stored: ignore or reject")

	if err := v.BindPFlag("http.addr", serveCmd.Flags().Lookup("addr")); err != nil {
		panic(err)
	}
}
