package tracker

import (
	"fmt"
	"slices"
	"strings"

	"github.com/etnz/tracker/date"
	"github.com/shopspring/decimal"
)

// TxType is the side of a transaction.
type TxType string

const (
	Buy  TxType = "Buy"
	Sell TxType = "Sell"
)

// ParseTxType parses "Buy" or "Sell", case insensitive.
func ParseTxType(s string) (TxType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy":
		return Buy, nil
	case "sell":
		return Sell, nil
	default:
		return "", fmt.Errorf("invalid transaction type %q want %q or %q", s, Buy, Sell)
	}
}

// Transaction is one row of the transaction log.
type Transaction struct {
	Symbol       string
	Type         TxType
	OpenDate     date.Date       // trade date
	Quantity     Quantity        // always positive, the side is given by Type
	CostPerShare decimal.Decimal // unused for sells
}

// NewBuy returns a buy transaction.
func NewBuy(symbol string, on date.Date, qty Quantity, costPerShare decimal.Decimal) Transaction {
	return Transaction{Symbol: symbol, Type: Buy, OpenDate: on, Quantity: qty, CostPerShare: costPerShare}
}

// NewSell returns a sell transaction.
func NewSell(symbol string, on date.Date, qty Quantity) Transaction {
	return Transaction{Symbol: symbol, Type: Sell, OpenDate: on, Quantity: qty}
}

// Validate checks the transaction can take part in lot matching.
func (tx Transaction) Validate() error {
	switch {
	case tx.Symbol == "":
		return fmt.Errorf("%w: missing symbol", ErrMalformed)
	case tx.Type != Buy && tx.Type != Sell:
		return fmt.Errorf("%w: %s: invalid type %q", ErrMalformed, tx.Symbol, tx.Type)
	case tx.OpenDate.IsZero():
		return fmt.Errorf("%w: %s: missing date", ErrMalformed, tx.Symbol)
	case !tx.Quantity.IsPositive():
		return fmt.Errorf("%w: %s %s on %s: quantity must be positive, got %s", ErrMalformed, tx.Type, tx.Symbol, tx.OpenDate, tx.Quantity)
	case tx.Type == Buy && tx.CostPerShare.IsNegative():
		return fmt.Errorf("%w: %s %s on %s: negative cost per share %s", ErrMalformed, tx.Type, tx.Symbol, tx.OpenDate, tx.CostPerShare)
	}
	return nil
}

// Symbols returns the distinct symbols of txs, sorted.
func Symbols(txs []Transaction) []string {
	seen := make(map[string]bool)
	var symbols []string
	for _, tx := range txs {
		if !seen[tx.Symbol] {
			seen[tx.Symbol] = true
			symbols = append(symbols, tx.Symbol)
		}
	}
	slices.Sort(symbols)
	return symbols
}
