package tracker

import (
	"fmt"
	"slices"

	"github.com/etnz/tracker/date"
	"go.uber.org/zap"
)

// Snapshot is the set of lots open on a trading day.
type Snapshot struct {
	On   date.Date
	Lots []Lot // positive quantities only, by symbol then FIFO
}

// Position returns the open quantity of symbol.
func (s Snapshot) Position(symbol string) Quantity {
	var q Quantity
	for _, l := range s.Lots {
		if l.Symbol == symbol {
			q = q.Add(l.Quantity)
		}
	}
	return q
}

// Symbols returns the distinct symbols held, sorted.
func (s Snapshot) Symbols() []string {
	var symbols []string
	for _, l := range s.Lots {
		if n := len(symbols); n == 0 || symbols[n-1] != l.Symbol {
			symbols = append(symbols, l.Symbol)
		}
	}
	return symbols
}

// Generate replays the pending sales of b over the calendar and returns one
// snapshot per calendar day, in calendar order, even when nothing is held.
//
// Before each day's snapshot, every pending sale dated on or before that day is
// applied. A sale dated on a non-trading day is therefore applied on the next
// trading day. The calendar must be strictly increasing.
func Generate(b *Balance, calendar []date.Date) ([]Snapshot, error) {
	snapshots, _, err := GenerateWith(b, calendar, OversellFail)
	return snapshots, err
}

// GenerateWith is like Generate with a configurable oversell policy.
// With OversellWarn the excess is dropped and reported in the returned slice.
func GenerateWith(b *Balance, calendar []date.Date, policy OversellPolicy) ([]Snapshot, []*OversellError, error) {
	if err := CheckCalendar(calendar); err != nil {
		return nil, nil, err
	}

	book, err := NewBook(b.Lots)
	if err != nil {
		return nil, nil, err
	}
	pending := slices.SortedFunc(slices.Values(b.Sales), saleOrder)
	var warnings []*OversellError
	snapshots := make([]Snapshot, 0, len(calendar))

	for _, day := range calendar {
		for len(pending) > 0 && !pending[0].Date.After(day) {
			sale := pending[0]
			pending = pending[1:]
			w, err := applyPolicy(book.Sell(sale), policy)
			if err != nil {
				return nil, nil, fmt.Errorf("generating snapshot on %s: %w", day, err)
			}
			if w != nil {
				warnings = append(warnings, w)
			}
		}
		snapshots = append(snapshots, Snapshot{On: day, Lots: book.Open(day)})
	}

	if len(pending) > 0 {
		logger.Debug("sales after the calendar not replayed", zap.Int("sales", len(pending)))
	}
	return snapshots, warnings, nil
}

// CheckCalendar returns ErrCalendar if days are not strictly increasing.
func CheckCalendar(days []date.Date) error {
	for i := 1; i < len(days); i++ {
		if !days[i-1].Before(days[i]) {
			return fmt.Errorf("%w: %s follows %s", ErrCalendar, days[i], days[i-1])
		}
	}
	return nil
}
