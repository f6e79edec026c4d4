package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"churn-metrics-pipeline/internal/pkg/daterange"
)

const (
	// Step is the spacing between metric observation times.
	Step = 7 * 24 * time.Hour
	// Window is the trailing span counted at each observation: [t-Window, t).
	Window = 28 * 24 * time.Hour

	CountPrefix = "count_"
)

var ErrInvalidMetricName = errors.New("invalid metric name")

var validName = regexp.MustCompile(`^[A-Za-z0-9_.\-]+$`)

// MetricName is the lookup row, created on first use.
type MetricName struct {
	ID   int64
	Name string
}

// Metric is one (account, time, name) observation. At most one exists per key.
type Metric struct {
	AccountID    string
	MetricTime   time.Time
	MetricNameID int64
	Value        float64
}

// Buckets lists the observation times for a range: Start, Start+Step, ... up to End.
func Buckets(r daterange.Range) []time.Time {
	return r.Steps(Step)
}

// WindowFor is the half-open interval counted for an observation at t.
func WindowFor(t time.Time) (from, to time.Time) {
	return t.Add(-Window), t
}

// ValidateName rejects names that cannot be used as a column header or file name.
func ValidateName(name string) error {
	if !validName.MatchString(name) {
		return fmt.Errorf("%w: %q (letters, digits, '_', '.', '-')", ErrInvalidMetricName, name)
	}
	return nil
}

// CountMetricName derives the standard name for an event-type count, e.g. "Page View" -> "count_page_view".
func CountMetricName(eventType string) string {
	var b strings.Builder
	b.WriteString(CountPrefix)
	lastUnderscore := true
	for _, r := range strings.ToLower(strings.TrimSpace(eventType)) {
		ok := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		switch {
		case ok:
			b.WriteRune(r)
			lastUnderscore = false
		case !lastUnderscore:
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.TrimRight(b.String(), "_")
}
