package tracker

import (
	"cmp"
	"context"
	"slices"

	"github.com/etnz/tracker/date"
)

// PriceProvider returns daily closes.
//
// end is exclusive. A ticker without data on a day has no row for that day.
type PriceProvider interface {
	Prices(ctx context.Context, tickers []string, start, end date.Date) ([]Close, error)
}

// Calendar returns the trading days in [start, end), in increasing order.
type Calendar interface {
	Days(ctx context.Context, start, end date.Date) ([]date.Date, error)
}

// StaticPrices serves closes from memory, typically loaded with DecodePrices.
type StaticPrices []Close

// Prices returns the rows of the requested tickers dated in [start, end), ordered by ticker then day.
func (s StaticPrices) Prices(_ context.Context, tickers []string, start, end date.Date) ([]Close, error) {
	var rows []Close
	for _, c := range s {
		if !slices.Contains(tickers, c.Ticker) || c.Date.Before(start) || !c.Date.Before(end) {
			continue
		}
		rows = append(rows, c)
	}
	slices.SortStableFunc(rows, func(a, b Close) int {
		if c := cmp.Compare(a.Ticker, b.Ticker); c != 0 {
			return c
		}
		return a.Date.Compare(b.Date)
	})
	return rows, nil
}
