package store

import (
	"context"
	"fmt"

	"github.com/etnz/tracker"
	"github.com/etnz/tracker/date"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SaveCloses upserts closes.
func (d *DB) SaveCloses(ctx context.Context, closes []tracker.Close) error {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO closes(ticker, day, close) VALUES(?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, c := range closes {
		if _, err := stmt.ExecContext(ctx, c.Ticker, c.Date.String(), c.Close.String()); err != nil {
			return fmt.Errorf("saving %s close on %s: %w", c.Ticker, c.Date, err)
		}
	}
	return tx.Commit()
}

// Closes returns the stored closes of ticker in [start, end), by day.
func (d *DB) Closes(ctx context.Context, ticker string, start, end date.Date) ([]tracker.Close, error) {
	// ISO days sort as text
	rows, err := d.sql.QueryContext(ctx,
		`SELECT day, close FROM closes WHERE ticker=? AND day>=? AND day<? ORDER BY day ASC`,
		ticker, start.String(), end.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []tracker.Close
	for rows.Next() {
		var day, px string
		if err := rows.Scan(&day, &px); err != nil {
			return nil, err
		}
		c := tracker.Close{Ticker: ticker}
		if c.Date, err = parseDay(day); err != nil {
			return nil, err
		}
		if c.Close, err = decimal.NewFromString(px); err != nil {
			return nil, fmt.Errorf("corrupted %s close on %s: %w", ticker, day, err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// covered reports whether [start, end) of ticker was fetched in a single range before.
func (d *DB) covered(ctx context.Context, ticker string, start, end date.Date) (bool, error) {
	var n int
	err := d.sql.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM coverage WHERE ticker=? AND start_day<=? AND end_day>=?`,
		ticker, start.String(), end.String()).Scan(&n)
	return n > 0, err
}

func (d *DB) cover(ctx context.Context, ticker string, start, end date.Date) error {
	_, err := d.sql.ExecContext(ctx, `INSERT INTO coverage(ticker, start_day, end_day) VALUES(?,?,?)`,
		ticker, start.String(), end.String())
	return err
}

// Cache is a tracker.PriceProvider serving closes from the database, and
// fetching from Source the ranges it has never fetched.
//
// Ranges ending after today are always fetched, the last close may change.
type Cache struct {
	DB     *DB
	Source tracker.PriceProvider
	Today  func() date.Date
}

var _ tracker.PriceProvider = (*Cache)(nil)

// NewCache returns a cache of source in db.
func NewCache(db *DB, source tracker.PriceProvider) *Cache {
	return &Cache{DB: db, Source: source, Today: date.Today}
}

// Prices returns the closes of tickers in [start, end), ordered by ticker then day.
func (c *Cache) Prices(ctx context.Context, tickers []string, start, end date.Date) ([]tracker.Close, error) {
	var out []tracker.Close
	for _, ticker := range tickers {
		ok, err := c.DB.covered(ctx, ticker, start, end)
		if err != nil {
			return nil, fmt.Errorf("reading price cache: %w", err)
		}
		if !ok {
			if err := c.fetch(ctx, ticker, start, end); err != nil {
				return nil, err
			}
		}
		closes, err := c.DB.Closes(ctx, ticker, start, end)
		if err != nil {
			return nil, fmt.Errorf("reading price cache: %w", err)
		}
		out = append(out, closes...)
	}
	return out, nil
}

func (c *Cache) fetch(ctx context.Context, ticker string, start, end date.Date) error {
	closes, err := c.Source.Prices(ctx, []string{ticker}, start, end)
	if err != nil {
		return err
	}
	if err := c.DB.SaveCloses(ctx, closes); err != nil {
		return fmt.Errorf("writing price cache: %w", err)
	}
	logger.Debug("price cache filled", zap.String("ticker", ticker), zap.Stringer("start", start), zap.Stringer("end", end), zap.Int("closes", len(closes)))
	if end.After(c.Today()) {
		return nil
	}
	return c.DB.cover(ctx, ticker, start, end)
}
