package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidTimestamp = errors.New("invalid event_time")

// Event is one row of the event log. Empty ProductID / AdditionalData are stored as NULL.
type Event struct {
	AccountID      string
	EventTime      time.Time
	EventType      string
	EventTypeID    int64 // resolved from EventType before insert
	ProductID      string
	AdditionalData string

	Line int // source line, 0 when the event did not come from a file
}

// EventType is the lookup row created on first sighting of a name.
type EventType struct {
	ID   int64
	Name string
}

// time.Parse accepts fractional seconds after the seconds field without a layout for them.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseEventTime accepts the usual export formats. Timestamps are naive: an RFC3339
// offset is dropped and the wall clock kept, so every stored time shares one convention.
func ParseEventTime(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrInvalidTimestamp)
	}

	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, v, time.UTC); err == nil {
			return t, nil
		}
	}

	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(),
			t.Nanosecond(), time.UTC), nil
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, v)
}

var ErrDuplicateEvent = errors.New("duplicate event")

// DuplicatePolicy decides what happens when (account_id, event_time, event_type) already exists.
type DuplicatePolicy int

const (
	IgnoreDuplicates DuplicatePolicy = iota
	RejectDuplicates
)

func ParseDuplicatePolicy(v string) (DuplicatePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "ignore":
		return IgnoreDuplicates, nil
	case "reject":
		return RejectDuplicates, nil
	}
	return IgnoreDuplicates, fmt.Errorf("unknown duplicate policy %q (want ignore or reject)", v)
}
