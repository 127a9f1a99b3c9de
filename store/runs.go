package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/etnz/tracker"
	"github.com/etnz/tracker/date"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Run describes a saved pipeline run.
type Run struct {
	ID        string
	Created   time.Time
	Window    date.Range
	Benchmark string
	Elapsed   time.Duration
}

// SaveRun stores the valuations of r, one row per metric, and returns the new run id.
func (d *DB) SaveRun(ctx context.Context, r *tracker.Report) (string, error) {
	id := uuid.NewString()
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs(id, created, start_day, end_day, benchmark, elapsed) VALUES(?,?,?,?,?,?)`,
		id, time.Now().UTC().Format(time.RFC3339), r.Window.From.String(), r.Window.To.String(), r.Benchmark, int64(r.Elapsed),
	); err != nil {
		return "", fmt.Errorf("saving run: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO valuations(run_id, day, symbol, open_date, metric, value) VALUES(?,?,?,?,?,?)`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()
	for _, v := range r.Valuations {
		for _, m := range tracker.Metrics {
			if _, err := stmt.ExecContext(ctx, id, v.Date.String(), v.Symbol, v.OpenDate.String(), string(m), nullString(v.Get(m))); err != nil {
				return "", fmt.Errorf("saving %s valuation on %s: %w", v.Symbol, v.Date, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// Runs lists saved runs, most recent first.
func (d *DB) Runs(ctx context.Context) ([]Run, error) {
	rows, err := d.sql.QueryContext(ctx, `SELECT id, created, start_day, end_day, benchmark, elapsed FROM runs ORDER BY created DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Run
	for rows.Next() {
		var r Run
		var created, start, end string
		var elapsed int64
		if err := rows.Scan(&r.ID, &created, &start, &end, &r.Benchmark, &elapsed); err != nil {
			return nil, err
		}
		if r.Created, err = time.Parse(time.RFC3339, created); err != nil {
			return nil, fmt.Errorf("corrupted run %s: %w", r.ID, err)
		}
		if r.Window.From, err = parseDay(start); err != nil {
			return nil, err
		}
		if r.Window.To, err = parseDay(end); err != nil {
			return nil, err
		}
		r.Elapsed = time.Duration(elapsed)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Series returns the daily sum of metric over all lots of a saved run.
// Days where every value is null are null.
func (d *DB) Series(ctx context.Context, runID string, metric tracker.Metric) ([]date.Date, []decimal.NullDecimal, error) {
	rows, err := d.sql.QueryContext(ctx,
		`SELECT day, value FROM valuations WHERE run_id=? AND metric=? ORDER BY day ASC`,
		runID, string(metric))
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()
	var days []date.Date
	var sums []decimal.NullDecimal
	for rows.Next() {
		var day string
		var value sql.NullString
		if err := rows.Scan(&day, &value); err != nil {
			return nil, nil, err
		}
		on, err := parseDay(day)
		if err != nil {
			return nil, nil, err
		}
		if n := len(days); n == 0 || !days[n-1].Equal(on) {
			days = append(days, on)
			sums = append(sums, decimal.NullDecimal{})
		}
		if !value.Valid {
			continue
		}
		v, err := decimal.NewFromString(value.String)
		if err != nil {
			return nil, nil, fmt.Errorf("corrupted %s on %s: %w", metric, day, err)
		}
		last := &sums[len(sums)-1]
		if last.Valid {
			last.Decimal = last.Decimal.Add(v)
		} else {
			*last = decimal.NewNullDecimal(v)
		}
	}
	return days, sums, rows.Err()
}
