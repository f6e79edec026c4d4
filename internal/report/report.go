// Package report writes the report files and QA charts into the output directory.
// File names are derived from the event type or metric they describe.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	datasetcsv "churn-metrics-pipeline/internal/dataset/adapters/csv"
	datasetdomain "churn-metrics-pipeline/internal/dataset/core/domain"
	eventdomain "churn-metrics-pipeline/internal/events/core/domain"
	metricdomain "churn-metrics-pipeline/internal/metrics/core/domain"
	"churn-metrics-pipeline/internal/pkg/daterange"
)

const (
	EventsPerAccountFile = "events_per_account_per_month.csv"
	CoverageFile         = "metric_coverage.csv"
	DatasetFile          = "current_customer_dataset.csv"
	DatasetSummaryFile   = "current_customer_dataset_summarystats.csv"
)

// Extensions the writer produces; cleanup removes exactly these.
var Extensions = []string{".csv", ".png", ".pdf"}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.\-]+`)

// FileStem makes a name safe to use as part of a file name.
func FileStem(name string) string {
	s := unsafeChars.ReplaceAllString(name, "_")
	if s == "" || s == "." || s == ".." {
		return "_"
	}
	return s
}

func EventsPerDayFile(eventType string) string { return FileStem(eventType) + "_events_per_day.csv" }
func EventChartFile(eventType string) string   { return FileStem(eventType) + "_event_qa.png" }
func StatsOverTimeFile(metric string) string   { return FileStem(metric) + "_stats_over_time.csv" }
func MetricChartFile(metric string) string     { return FileStem(metric) + "_metric_qa.png" }

type Writer struct {
	dir string
}

// NewWriter creates dir if needed.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir %s: %w", dir, err)
	}
	return &Writer{dir: dir}, nil
}

func (w *Writer) Dir() string { return w.dir }

func (w *Writer) path(name string) string { return filepath.Join(w.dir, name) }

func (w *Writer) EventsPerAccount(freqs []eventdomain.EventFrequency) (string, error) {
	rows := make([][]string, 0, len(freqs))
	for _, f := range freqs {
		rows = append(rows, []string{
			f.EventType,
			strconv.FormatInt(f.NEvent, 10),
			strconv.FormatInt(f.NAccount, 10),
			formatFloat(f.EventsPerAccount),
			formatFloat(f.NMonths),
			formatFloat(f.EventsPerAccountPerMonth),
		})
	}
	path := w.path(EventsPerAccountFile)
	return path, writeCSV(path,
		[]string{"event_type", "n_event", "n_account", "events_per_account", "n_months", "events_per_account_per_month"},
		rows)
}

// EventsPerDay writes the daily counts and the matching chart. It returns both paths.
func (w *Writer) EventsPerDay(eventType string, counts []eventdomain.DailyCount) ([]string, error) {
	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []string{c.Day.Format(daterange.Layout), strconv.FormatInt(c.NEvent, 10)})
	}

	csvPath := w.path(EventsPerDayFile(eventType))
	if err := writeCSV(csvPath, []string{"event_date", "n_event"}, rows); err != nil {
		return nil, err
	}
	pngPath := w.path(EventChartFile(eventType))
	if err := DailyChart(pngPath, eventType+" events per day", counts); err != nil {
		return []string{csvPath}, err
	}
	return []string{csvPath, pngPath}, nil
}

func (w *Writer) Coverage(rows []metricdomain.Coverage) (string, error) {
	out := make([][]string, 0, len(rows))
	for _, c := range rows {
		out = append(out, []string{
			c.MetricName,
			strconv.FormatInt(c.CountWithMetric, 10),
			strconv.FormatInt(c.NAccount, 10),
			formatFloat(c.Pct()),
			formatPtr(c.AvgValue),
			formatPtr(c.MinValue),
			formatPtr(c.MaxValue),
			formatTime(c.EarliestMetric),
			formatTime(c.LastMetric),
		})
	}
	path := w.path(CoverageFile)
	return path, writeCSV(path,
		[]string{"metric_name", "count_with_metric", "n_account", "pct_with_metric",
			"avg_value", "min_value", "max_value", "earliest_metric", "last_metric"},
		out)
}

// StatsOverTime writes the per-bucket statistics and the four-panel chart.
func (w *Writer) StatsOverTime(metric string, points []metricdomain.SeriesPoint) ([]string, error) {
	rows := make([][]string, 0, len(points))
	for _, p := range points {
		rows = append(rows, []string{
			p.MetricTime.Format(daterange.Layout),
			strconv.FormatInt(p.NCalc, 10),
			formatPtr(p.Avg),
			formatPtr(p.Min),
			formatPtr(p.Max),
		})
	}

	csvPath := w.path(StatsOverTimeFile(metric))
	if err := writeCSV(csvPath, []string{"metric_time", "n_calc", "avg", "min", "max"}, rows); err != nil {
		return nil, err
	}
	pngPath := w.path(MetricChartFile(metric))
	if err := SeriesChart(pngPath, metric, points); err != nil {
		return []string{csvPath}, err
	}
	return []string{csvPath, pngPath}, nil
}

// Dataset writes the snapshot and its summary statistics.
func (w *Writer) Dataset(snap datasetdomain.Snapshot, summary []datasetdomain.ColumnSummary) ([]string, error) {
	dataPath := w.path(DatasetFile)
	if err := writeFile(dataPath, func(f *os.File) error { return datasetcsv.WriteSnapshot(f, snap) }); err != nil {
		return nil, err
	}
	sumPath := w.path(DatasetSummaryFile)
	if err := w.Summary(sumPath, summary); err != nil {
		return []string{dataPath}, err
	}
	return []string{dataPath, sumPath}, nil
}

// Summary writes summary statistics to an explicit path.
func (w *Writer) Summary(path string, summary []datasetdomain.ColumnSummary) error {
	return writeFile(path, func(f *os.File) error { return datasetcsv.WriteSummary(f, summary) })
}

func writeCSV(path string, header []string, rows [][]string) error {
	return writeFile(path, func(f *os.File) error {
		cw := csv.NewWriter(f)
		if err := cw.Write(header); err != nil {
			return err
		}
		if err := cw.WriteAll(rows); err != nil {
			return err
		}
		return cw.Error()
	})
}

func writeFile(path string, fn func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(daterange.Layout)
}
