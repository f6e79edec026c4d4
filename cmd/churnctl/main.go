// churnctl loads an event log into PostgreSQL, calculates churn metrics from it and
// assembles the current customer dataset.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"churn-metrics-pipeline/internal/config"
	"churn-metrics-pipeline/internal/logging"
	"churn-metrics-pipeline/internal/pkg/daterange"
	platform "churn-metrics-pipeline/internal/platform/postgres"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	// Flags
	configFile string
	verbose    bool
	logJSON    bool

	v = config.New()
)

var rootCmd = &cobra.Command{
	Use:   "churnctl",
	Short: "Churn event metrics pipeline",
	Long: `churnctl loads an event log into PostgreSQL, calculates weekly trailing-window
count metrics per account and assembles the current customer dataset.

Typical run:
  churnctl load events.csv
  churnctl analyze --start 2020-01-01 --end 2020-06-30
  churnctl metrics --start 2020-02-01 --end 2020-06-30
  churnctl dataset

Environment variables:
  CHURN_DB            database name (default: churn)
  CHURN_DB_USER       database user (default: postgres)
  CHURN_DB_PASS       database password
  CHURN_DB_HOST       database host (default: localhost)
  CHURN_DB_PORT       database port (default: 5432)
  CHURN_DB_SSLMODE    sslmode (default: disable)
  CHURN_OUTPUT_DIR    report directory (default: output)
  CHURN_BATCH_SIZE    rows per load transaction (default: 10000)
  CHURN_HTTP_ADDR     listen address for serve (default: :8080)
`,
	SilenceUsage: true,
}

// app is what every command needs once flags and config are resolved.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

func setup() (*app, error) {
	cfg, err := config.Load(v, configFile)
	if err != nil {
		return nil, err
	}

	logger := logging.New(os.Stderr, logging.Options{Verbose: verbose, JSON: logJSON}).
		With("run_id", uuid.NewString())
	return &app{cfg: cfg, logger: logger}, nil
}

func (a *app) openDB(ctx context.Context) (*sql.DB, error) {
	a.logger.Debug("connecting", "db", a.cfg.Database.Redacted())
	return platform.Open(ctx, a.cfg.Database.DSN())
}

// signalContext is cancelled on SIGINT/SIGTERM so a running batch can roll back.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func dateRange(cmd *cobra.Command) (daterange.Range, error) {
	start, _ := cmd.Flags().GetString("start")
	end, _ := cmd.Flags().GetString("end")
	return daterange.Parse(start, end)
}

// hint names the command that creates what a failed step was looking for.
func hint(err error, prerequisite string) error {
	if errors.Is(err, platform.ErrSchemaMissing) {
		return fmt.Errorf("%w (run `churnctl %s` first)", err, prerequisite)
	}
	return err
}

func bindFlag(key, flag string) {
	if err := v.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "Config file (yaml, toml or json)")
	pf.String("dbname", "", "Database name")
	pf.String("user", "", "Database user")
	pf.String("password", "", "Database password")
	pf.String("host", "", "Database host")
	pf.Int("port", 0, "Database port")
	pf.String("output-dir", "", "Directory for report files")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	pf.BoolVar(&logJSON, "log-json", false, "Log as JSON")

	bindFlag("database.name", "dbname")
	bindFlag("database.user", "user")
	bindFlag("database.password", "password")
	bindFlag("database.host", "host")
	bindFlag("database.port", "port")
	bindFlag("output.dir", "output-dir")

	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(metricReportCmd)
	rootCmd.AddCommand(datasetCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(cleanupCmd)
	rootCmd.AddCommand(serveCmd)
}

// @title Churn Metrics Pipeline API
// @version 1.0
// @description Event ingestion, event reports, metric coverage and the current customer dataset.
// @host localhost:8080
// @BasePath /
func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
