package tracker

import (
	"testing"

	"github.com/etnz/tracker/date"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/shopspring/decimal"
)

// day is a helper for tests to create dates from const.
func day(s string) date.Date { return date.MustParse(s) }

// dec is a helper for tests to create decimals from const.
func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func buy(symbol, on string, qty int, cost string) Transaction {
	return NewBuy(symbol, day(on), Q(qty), dec(cost))
}

func sell(symbol, on string, qty int) Transaction {
	return NewSell(symbol, day(on), Q(qty))
}

func lot(symbol, on string, qty int, cost string) Lot {
	return NewLot(symbol, day(on), Q(qty), dec(cost))
}

// lotDiff compares lots on their exported fields.
func lotDiff(want, got []Lot) string {
	return cmp.Diff(want, got, cmpopts.IgnoreUnexported(Lot{}), cmpopts.EquateEmpty())
}

// checkNull asserts a nullable decimal, want "" meaning null.
func checkNull(t *testing.T, name string, got decimal.NullDecimal, want string) {
	t.Helper()
	if want == "" {
		if got.Valid {
			t.Errorf("%s = %v, want null", name, got.Decimal)
		}
		return
	}
	if !got.Valid {
		t.Errorf("%s = null, want %s", name, want)
		return
	}
	if !got.Decimal.Equal(dec(want)) {
		t.Errorf("%s = %v, want %s", name, got.Decimal, want)
	}
}
