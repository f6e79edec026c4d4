// Package csv reads event exports. The header must contain account_id, event_time and
// event_type; product_id and additional_data are optional. Column order is free.
package csv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"churn-metrics-pipeline/internal/events/core/domain"
	"churn-metrics-pipeline/internal/events/core/ports"
)

var (
	ErrMissingColumn = errors.New("missing required column")
	ErrMalformedRow  = errors.New("malformed row")
)

var requiredColumns = []string{"account_id", "event_time", "event_type"}

// FileSource re-opens the file on every Scan, so it can be read twice.
type FileSource struct {
	path  string
	comma rune
}

var _ ports.EventSource = (*FileSource)(nil)

func NewFileSource(path string, comma rune) *FileSource {
	if comma == 0 {
		comma = ','
	}
	return &FileSource{path: path, comma: comma}
}

func (s *FileSource) Scan(ctx context.Context, fn func(domain.Event) error) error {
	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", s.path, err)
	}
	defer f.Close()

	return Decode(ctx, f, s.comma, fn)
}

type columns struct {
	account, time, eventType int
	product, extra           int
}

// Decode parses r and calls fn for every row. Line numbers on events and errors are
// 1-based file lines, the header being line 1.
func Decode(ctx context.Context, r io.Reader, comma rune, fn func(domain.Event) error) error {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: header: %v", ErrMalformedRow, err)
	}
	cols, err := mapHeader(header)
	if err != nil {
		return err
	}

	for row := 0; ; row++ {
		if row%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedRow, err)
		}
		line, _ := cr.FieldPos(0)

		e, err := toEvent(rec, cols)
		if err != nil {
			return fmt.Errorf("%w: line %d: %w", ErrMalformedRow, line, err)
		}
		e.Line = line

		if err := fn(e); err != nil {
			return err
		}
	}
}

func mapHeader(header []string) (columns, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		idx[h] = i
	}

	var missing []string
	for _, c := range requiredColumns {
		if _, ok := idx[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return columns{}, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}

	cols := columns{
		account:   idx["account_id"],
		time:      idx["event_time"],
		eventType: idx["event_type"],
		product:   -1,
		extra:     -1,
	}
	if i, ok := idx["product_id"]; ok {
		cols.product = i
	}
	if i, ok := idx["additional_data"]; ok {
		cols.extra = i
	}
	return cols, nil
}

func toEvent(rec []string, cols columns) (domain.Event, error) {
	t, err := domain.ParseEventTime(rec[cols.time])
	if err != nil {
		return domain.Event{}, err
	}

	e := domain.Event{
		AccountID: strings.TrimSpace(rec[cols.account]),
		EventTime: t,
		EventType: strings.TrimSpace(rec[cols.eventType]),
	}
	if cols.product >= 0 {
		e.ProductID = strings.TrimSpace(rec[cols.product])
	}
	if cols.extra >= 0 {
		e.AdditionalData = rec[cols.extra]
	}
	return e, nil
}
