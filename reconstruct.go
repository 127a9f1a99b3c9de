package tracker

import (
	"cmp"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/etnz/tracker/date"
	"go.uber.org/zap"
)

// Balance is the portfolio state at the start of an analysis window.
type Balance struct {
	On date.Date
	// Lots open on On after netting every sell dated on or before On,
	// followed by the buys opened after On. Ordered by symbol then FIFO.
	Lots []Lot
	// Sales dated after On, one per symbol and date, ordered by date then symbol.
	Sales []Sale
}

// Open returns the lots open on b.On.
func (b *Balance) Open() []Lot {
	var open []Lot
	for _, l := range b.Lots {
		if !l.OpenDate.After(b.On) {
			open = append(open, l)
		}
	}
	return open
}

// Reconstruct computes the balance as of asOf (inclusive) from an unordered transaction log.
//
// Sells dated on or before asOf are summed per symbol and matched FIFO against
// the buys of that symbol opened on or before asOf. Later sells are kept,
// aggregated per symbol and date, for Generate to replay.
// Overselling returns an *OversellError.
func Reconstruct(txs []Transaction, asOf date.Date) (*Balance, error) {
	b, _, err := ReconstructWith(txs, asOf, OversellFail)
	return b, err
}

// ReconstructWith is like Reconstruct with a configurable oversell policy.
// With OversellWarn the excess is dropped and reported in the returned slice.
func ReconstructWith(txs []Transaction, asOf date.Date, policy OversellPolicy) (*Balance, []*OversellError, error) {
	var lots []Lot
	prior := make(map[string]Quantity)
	future := make(map[saleKey]Quantity)

	for i, tx := range txs {
		if err := tx.Validate(); err != nil {
			return nil, nil, fmt.Errorf("transaction #%d: %w", i+1, err)
		}
		switch {
		case tx.Type == Buy:
			lots = append(lots, Lot{
				Symbol:       tx.Symbol,
				OpenDate:     tx.OpenDate,
				Quantity:     tx.Quantity,
				CostPerShare: tx.CostPerShare,
				seq:          i,
			})
		case !tx.OpenDate.After(asOf):
			prior[tx.Symbol] = prior[tx.Symbol].Add(tx.Quantity)
		default:
			key := saleKey{tx.Symbol, tx.OpenDate}
			future[key] = future[key].Add(tx.Quantity)
		}
	}

	book, err := NewBook(lots)
	if err != nil {
		return nil, nil, err
	}
	var warnings []*OversellError
	for _, symbol := range slices.Sorted(maps.Keys(prior)) {
		sale := Sale{Symbol: symbol, Date: asOf, Quantity: prior[symbol]}
		w, err := applyPolicy(book.Sell(sale), policy)
		if err != nil {
			return nil, nil, fmt.Errorf("reconstructing balance on %s: %w", asOf, err)
		}
		if w != nil {
			warnings = append(warnings, w)
		}
	}

	sales := make([]Sale, 0, len(future))
	for key, qty := range future {
		sales = append(sales, Sale{Symbol: key.symbol, Date: key.on, Quantity: qty})
	}
	slices.SortFunc(sales, saleOrder)

	logger.Debug("balance reconstructed",
		zap.Stringer("on", asOf),
		zap.Int("lots", len(book.lots)),
		zap.Int("pending_sales", len(sales)),
	)
	return &Balance{On: asOf, Lots: book.Lots(), Sales: sales}, warnings, nil
}

type saleKey struct {
	symbol string
	on     date.Date
}

// saleOrder sorts sales by date, then symbol.
func saleOrder(a, b Sale) int {
	if c := a.Date.Compare(b.Date); c != 0 {
		return c
	}
	return cmp.Compare(a.Symbol, b.Symbol)
}

// applyPolicy filters an error returned by Book.Sell.
// It returns the oversell to report when the policy tolerates it, or the error to abort with.
func applyPolicy(err error, policy OversellPolicy) (*OversellError, error) {
	if err == nil {
		return nil, nil
	}
	var oe *OversellError
	if policy == OversellWarn && errors.As(err, &oe) {
		logger.Warn("oversell ignored",
			zap.String("symbol", oe.Symbol),
			zap.Stringer("date", oe.Date),
			zap.Stringer("excess", oe.Excess),
		)
		return oe, nil
	}
	return nil, err
}
