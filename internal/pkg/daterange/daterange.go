// Package daterange parses the YYYY-MM-DD ranges every report and metric run is scoped to.
package daterange

import (
	"errors"
	"fmt"
	"time"
)

const Layout = "2006-01-02"

var (
	ErrInvalidDate  = errors.New("invalid date")
	ErrInvalidRange = errors.New("invalid date range")
)

// Range is a closed calendar range [Start, End]. Both ends are naive midnights.
type Range struct {
	Start time.Time
	End   time.Time
}

// Parse validates both dates and the ordering. It never touches storage, so a bad
// range fails before any write.
func Parse(start, end string) (Range, error) {
	s, err := parseDate(start)
	if err != nil {
		return Range{}, fmt.Errorf("start date: %w", err)
	}
	e, err := parseDate(end)
	if err != nil {
		return Range{}, fmt.Errorf("end date: %w", err)
	}
	return New(s, e)
}

func New(start, end time.Time) (Range, error) {
	if start.IsZero() || end.IsZero() {
		return Range{}, ErrInvalidRange
	}
	if start.After(end) {
		return Range{}, fmt.Errorf("%w: start %s is after end %s", ErrInvalidRange,
			start.Format(Layout), end.Format(Layout))
	}
	return Range{Start: start, End: end}, nil
}

func parseDate(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrInvalidDate)
	}
	t, err := time.ParseInLocation(Layout, v, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q (want YYYY-MM-DD)", ErrInvalidDate, v)
	}
	return t, nil
}

// Days is the number of calendar days in the range, both ends included.
func (r Range) Days() int {
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

// Steps returns every point from Start to End (inclusive) at the given step.
func (r Range) Steps(step time.Duration) []time.Time {
	if step <= 0 {
		return nil
	}
	var out []time.Time
	for t := r.Start; !t.After(r.End); t = t.Add(step) {
		out = append(out, t)
	}
	return out
}

func (r Range) String() string {
	return r.Start.Format(Layout) + ".." + r.End.Format(Layout)
}
