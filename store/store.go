// Package store persists closes and pipeline runs in a sqlite database.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/etnz/tracker/date"
	"github.com/shopspring/decimal"

	// Register sqlite3 driver
	_ "github.com/mattn/go-sqlite3"
)

// DB is a sqlite database holding cached closes and saved runs.
type DB struct {
	sql *sql.DB
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS closes(
		ticker TEXT NOT NULL,
		day    TEXT NOT NULL,
		close  TEXT NOT NULL,
		PRIMARY KEY(ticker, day)
	)`,
	`CREATE TABLE IF NOT EXISTS coverage(
		ticker    TEXT NOT NULL,
		start_day TEXT NOT NULL,
		end_day   TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS runs(
		id        TEXT PRIMARY KEY,
		created   TEXT NOT NULL,
		start_day TEXT NOT NULL,
		end_day   TEXT NOT NULL,
		benchmark TEXT NOT NULL,
		elapsed   INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS valuations(
		run_id    TEXT NOT NULL REFERENCES runs(id),
		day       TEXT NOT NULL,
		symbol    TEXT NOT NULL,
		open_date TEXT NOT NULL,
		metric    TEXT NOT NULL,
		value     TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS valuations_run ON valuations(run_id, metric, day)`,
}

// Open opens, and creates if needed, the database at dsn. Use ":memory:" for a transient one.
func Open(dsn string) (*DB, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", dsn, err)
	}
	// a memory database lives as long as its connection
	db.SetMaxOpenConns(1)
	d := &DB{sql: db}
	if err := d.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

func (d *DB) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrating: %w", err)
		}
	}
	return nil
}

// Close closes the database.
func (d *DB) Close() error { return d.sql.Close() }

func parseDay(s string) (date.Date, error) {
	day, err := date.Parse(s)
	if err != nil {
		return date.Date{}, fmt.Errorf("corrupted day %q: %w", s, err)
	}
	return day, nil
}

func nullString(v decimal.NullDecimal) sql.NullString {
	if !v.Valid {
		return sql.NullString{}
	}
	return sql.NullString{String: v.Decimal.String(), Valid: true}
}
