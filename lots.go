package tracker

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/etnz/tracker/date"
	"github.com/shopspring/decimal"
)

// Lot is the open remainder of a single buy.
//
// A lot is identified by its symbol and open date. Lots opened on the same
// day are depleted in transaction log order.
type Lot struct {
	Symbol       string
	OpenDate     date.Date
	Quantity     Quantity        // remaining open quantity, never negative
	CostPerShare decimal.Decimal // purchase price
	seq          int             // position of the buy in the transaction log
}

// NewLot returns an open lot. Lots created this way tie in slice order.
func NewLot(symbol string, open date.Date, qty Quantity, costPerShare decimal.Decimal) Lot {
	return Lot{Symbol: symbol, OpenDate: open, Quantity: qty, CostPerShare: costPerShare}
}

// Cost returns the original cost of the remaining quantity.
func (l Lot) Cost() decimal.Decimal { return l.CostPerShare.Mul(l.Quantity.Decimal()) }

// Sale is the total quantity of a symbol sold on a date.
type Sale struct {
	Symbol   string
	Date     date.Date
	Quantity Quantity
}

// lotOrder sorts lots by symbol, then oldest first.
func lotOrder(a, b Lot) int {
	if c := cmp.Compare(a.Symbol, b.Symbol); c != 0 {
		return c
	}
	if c := a.OpenDate.Compare(b.OpenDate); c != 0 {
		return c
	}
	return cmp.Compare(a.seq, b.seq)
}

// matchFIFO consumes sale from lots in place and returns the unmatched quantity.
// lots must be in lotOrder. Only lots opened on or before the sale date are eligible.
func matchFIFO(lots []Lot, sale Sale) Quantity {
	remaining := sale.Quantity
	for i := range lots {
		if !remaining.IsPositive() {
			break
		}
		l := &lots[i]
		if l.Symbol != sale.Symbol || l.OpenDate.After(sale.Date) || !l.Quantity.IsPositive() {
			continue
		}
		take := l.Quantity.Min(remaining)
		l.Quantity = l.Quantity.Sub(take)
		remaining = remaining.Sub(take)
	}
	return remaining
}

// checkLots rejects negative lot quantities. Exhausted lots hold zero.
func checkLots(lots []Lot) error {
	for _, l := range lots {
		if l.Quantity.IsNegative() {
			return fmt.Errorf("%w: lot %s opened on %s has a negative quantity %s", ErrMalformed, l.Symbol, l.OpenDate, l.Quantity)
		}
	}
	return nil
}

func checkSale(sale Sale) error {
	if !sale.Quantity.IsPositive() {
		return fmt.Errorf("%w: sale of %s on %s must be positive, got %s", ErrMalformed, sale.Symbol, sale.Date, sale.Quantity)
	}
	return nil
}

func oversold(sale Sale, remaining Quantity) error {
	if !remaining.IsPositive() {
		return nil
	}
	return &OversellError{Symbol: sale.Symbol, Date: sale.Date, Excess: remaining}
}

// Match applies sale to lots using FIFO and returns the adjusted lots.
//
// The result holds a copy of every input lot, exhausted ones included with a
// zero quantity, in symbol then FIFO order. The input slice is not modified.
// If the open lots cannot cover the sale, the covered part is still applied
// and an *OversellError carrying the excess is returned with the lots.
// A lot with a negative quantity or a non positive sale is an ErrMalformed.
func Match(lots []Lot, sale Sale) ([]Lot, error) {
	if err := checkLots(lots); err != nil {
		return nil, err
	}
	if err := checkSale(sale); err != nil {
		return nil, err
	}
	out := slices.Clone(lots)
	slices.SortStableFunc(out, lotOrder)
	remaining := matchFIFO(out, sale)
	return out, oversold(sale, remaining)
}

// Book is the working set of open lots, mutated in place as sales are applied.
//
// Lots are kept in symbol then FIFO order and exhausted lots are removed after
// every sale, so they can never be matched again.
type Book struct {
	lots []Lot
}

// NewBook returns a book holding a copy of the lots with a positive quantity.
// Like Match, it rejects lots with a negative quantity.
func NewBook(lots []Lot) (*Book, error) {
	if err := checkLots(lots); err != nil {
		return nil, err
	}
	b := &Book{lots: slices.Clone(lots)}
	slices.SortStableFunc(b.lots, lotOrder)
	b.compact()
	return b, nil
}

func (b *Book) compact() {
	b.lots = slices.DeleteFunc(b.lots, func(l Lot) bool { return !l.Quantity.IsPositive() })
}

// Sell applies the sale. On oversell the book still reflects the covered part.
func (b *Book) Sell(sale Sale) error {
	if err := checkSale(sale); err != nil {
		return err
	}
	remaining := matchFIFO(b.lots, sale)
	b.compact()
	return oversold(sale, remaining)
}

// Lots returns a copy of all the lots in the book.
func (b *Book) Lots() []Lot { return slices.Clone(b.lots) }

// Open returns a copy of the lots opened on or before day.
func (b *Book) Open(day date.Date) []Lot {
	var open []Lot
	for _, l := range b.lots {
		if !l.OpenDate.After(day) {
			open = append(open, l)
		}
	}
	return open
}

// Position returns the open quantity of symbol on day.
func (b *Book) Position(symbol string, day date.Date) Quantity {
	var q Quantity
	for _, l := range b.lots {
		if l.Symbol == symbol && !l.OpenDate.After(day) {
			q = q.Add(l.Quantity)
		}
	}
	return q
}
