// Package postgres holds the connection setup and the small helpers every postgres
// adapter shares: per-batch transactions, error classification and schema teardown.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// Schema is the namespace owned by the pipeline.
const Schema = "churn_analytics"

// Tables in drop order (facts before lookups).
var Tables = []string{"metric", "metric_name", "event", "event_type"}

var ErrSchemaMissing = errors.New("schema objects missing")

// Open connects with lib/pq and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return db, nil
}

// TxBeginner is satisfied by *sql.DB.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// WithTx commits when fn returns nil and rolls back otherwise (including on panic).
func WithTx(ctx context.Context, db TxBeginner, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	err = fn(tx)
	return err
}

// Classify turns "schema/table does not exist" into ErrSchemaMissing so callers can
// tell the user which command to run first. Other errors pass through.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "3F000", "42P01":
			return fmt.Errorf("%w: %s", ErrSchemaMissing, pqErr.Message)
		}
	}
	return err
}

// Execer is the subset of *sql.DB used by DropSchema.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// DropSchema removes every table and then the schema itself.
func DropSchema(ctx context.Context, db Execer) ([]string, error) {
	var dropped []string
	for _, table := range Tables {
		stmt := fmt.Sprintf("DROP TABLE IF EXISTS %s.%s CASCADE",
			pq.QuoteIdentifier(Schema), pq.QuoteIdentifier(table))
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return dropped, fmt.Errorf("failed to drop table %s.%s: %w", Schema, table, err)
		}
		dropped = append(dropped, Schema+"."+table)
	}

	stmt := fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", pq.QuoteIdentifier(Schema))
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return dropped, fmt.Errorf("failed to drop schema %s: %w", Schema, err)
	}
	return append(dropped, Schema), nil
}

const createSchemaSQL = `CREATE SCHEMA IF NOT EXISTS churn_analytics`

// EnsureSchema creates the namespace; each feature adapter creates its own tables.
func EnsureSchema(ctx context.Context, db Execer) error {
	if _, err := db.ExecContext(ctx, createSchemaSQL); err != nil {
		return fmt.Errorf("failed to create schema %s: %w", Schema, err)
	}
	return nil
}
