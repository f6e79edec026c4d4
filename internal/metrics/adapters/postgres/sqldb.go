package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"
)

// RowScanner is satisfied by *sql.Rows; tests substitute canned rows.
type RowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// DB is the narrow surface the metric adapters need; NewSQLDB adapts *sql.DB.
type DB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (RowScanner, error)
}

// sqlDB logs every statement with its duration at debug level. Metric inserts scan the
// whole event table, so this is where slow calculations show up.
type sqlDB struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewSQLDB(db *sql.DB, logger *slog.Logger) DB {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &sqlDB{db: db, logger: logger}
}

func (s *sqlDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	res, err := s.db.ExecContext(ctx, query, args...)
	s.trace(ctx, "exec", query, start, err)
	return res, err
}

func (s *sqlDB) QueryContext(ctx context.Context, query string, args ...any) (RowScanner, error) {
	start := time.Now()
	rows, err := s.db.QueryContext(ctx, query, args...)
	s.trace(ctx, "query", query, start, err)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *sqlDB) trace(ctx context.Context, kind, query string, start time.Time, err error) {
	if !s.logger.Enabled(ctx, slog.LevelDebug) {
		return
	}
	s.logger.DebugContext(ctx, "sql "+kind,
		"statement", firstLine(query),
		"duration", time.Since(start).Round(time.Millisecond),
		"error", err,
	)
}

func firstLine(q string) string {
	q = strings.TrimSpace(q)
	if i := strings.IndexByte(q, '\n'); i >= 0 {
		return q[:i]
	}
	return q
}
