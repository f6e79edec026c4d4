// Package csv writes and reads the customer dataset files. An empty cell is a null value.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"churn-metrics-pipeline/internal/dataset/core/domain"
)

const accountColumn = "account_id"

var ErrBadDataset = errors.New("not a dataset file")

// WriteSnapshot writes account_id followed by one column per metric.
func WriteSnapshot(w io.Writer, s domain.Snapshot) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(append([]string{accountColumn}, s.Metrics...)); err != nil {
		return err
	}
	rec := make([]string, len(s.Metrics)+1)
	for _, r := range s.Rows {
		rec[0] = r.AccountID
		for i, v := range r.Values {
			rec[i+1] = formatCell(v)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteSummary writes one row per metric with the columns of domain.SummaryColumns.
func WriteSummary(w io.Writer, summary []domain.ColumnSummary) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(append([]string{"metric"}, domain.SummaryColumns...)); err != nil {
		return err
	}
	for _, c := range summary {
		rec := []string{c.Metric}
		for _, v := range c.Values() {
			rec = append(rec, formatCell(v))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadSnapshot parses a file produced by WriteSnapshot. AsOf is not stored in the file.
func ReadSnapshot(r io.Reader) (domain.Snapshot, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return domain.Snapshot{}, fmt.Errorf("%w: empty file", ErrBadDataset)
	}
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("%w: %v", ErrBadDataset, err)
	}
	if strings.TrimSpace(strings.TrimPrefix(header[0], "\ufeff")) != accountColumn {
		return domain.Snapshot{}, fmt.Errorf("%w: first column must be %s, got %q", ErrBadDataset, accountColumn, header[0])
	}

	s := domain.Snapshot{Metrics: append([]string(nil), header[1:]...)}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return s, nil
		}
		if err != nil {
			return domain.Snapshot{}, fmt.Errorf("%w: %v", ErrBadDataset, err)
		}
		line, _ := cr.FieldPos(0)

		row := domain.Row{AccountID: rec[0], Values: make([]*float64, len(s.Metrics))}
		for i, cell := range rec[1:] {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return domain.Snapshot{}, fmt.Errorf("%w: line %d column %s: %v", ErrBadDataset, line, s.Metrics[i], err)
			}
			row.Values[i] = &v
		}
		s.Rows = append(s.Rows, row)
	}
}

func formatCell(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
