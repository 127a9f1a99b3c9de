package tracker

import (
	"maps"
	"slices"

	"github.com/etnz/tracker/date"
	"github.com/shopspring/decimal"
)

// Close is the closing price of a ticker on a trading day.
type Close struct {
	Ticker string
	Date   date.Date
	Close  decimal.Decimal
}

// PriceTable indexes daily closes by ticker and day.
// Days without a close are simply absent.
type PriceTable struct {
	series map[string]*date.History[decimal.Decimal]
}

// NewPriceTable indexes rows. A duplicate (ticker, day) keeps the last row.
func NewPriceTable(rows []Close) *PriceTable {
	t := &PriceTable{series: make(map[string]*date.History[decimal.Decimal])}
	for _, r := range rows {
		h, ok := t.series[r.Ticker]
		if !ok {
			h = new(date.History[decimal.Decimal])
			t.series[r.Ticker] = h
		}
		h.Append(r.Date, r.Close)
	}
	return t
}

// Series returns the closes of ticker, empty if unknown.
func (t *PriceTable) Series(ticker string) *date.History[decimal.Decimal] {
	if h, ok := t.series[ticker]; ok {
		return h
	}
	return new(date.History[decimal.Decimal])
}

// Close returns the close of ticker on day.
func (t *PriceTable) Close(ticker string, day date.Date) (decimal.Decimal, bool) {
	h, ok := t.series[ticker]
	if !ok {
		return decimal.Decimal{}, false
	}
	return h.Get(day)
}

// Tickers returns the tickers with at least one close, sorted.
func (t *PriceTable) Tickers() []string {
	return slices.Sorted(maps.Keys(t.series))
}

// Bounds returns the earliest and latest day with a close, for any ticker.
func (t *PriceTable) Bounds() (first, last date.Date, ok bool) {
	for _, h := range t.series {
		f, _, hasData := h.First()
		if !hasData {
			continue
		}
		l, _, _ := h.Latest()
		if !ok || f.Before(first) {
			first = f
		}
		if !ok || l.After(last) {
			last = l
		}
		ok = true
	}
	return first, last, ok
}

// Since returns the table restricted to closes on or after day.
func (t *PriceTable) Since(day date.Date) *PriceTable {
	s := &PriceTable{series: make(map[string]*date.History[decimal.Decimal], len(t.series))}
	for ticker, h := range t.series {
		if sub := h.Since(day); sub.Len() > 0 {
			s.series[ticker] = sub
		}
	}
	return s
}

// Rows returns all closes ordered by ticker then day.
func (t *PriceTable) Rows() []Close {
	var rows []Close
	for _, ticker := range t.Tickers() {
		for day, v := range t.series[ticker].Values() {
			rows = append(rows, Close{Ticker: ticker, Date: day, Close: v})
		}
	}
	return rows
}

// Len returns the number of closes in the table.
func (t *PriceTable) Len() int {
	n := 0
	for _, h := range t.series {
		n += h.Len()
	}
	return n
}
