package renderer

import (
	"github.com/etnz/tracker"
	"github.com/shopspring/decimal"
)

const missing = "n/a"

func formatMoney(v decimal.NullDecimal) string {
	if !v.Valid {
		return missing
	}
	return tracker.M(v.Decimal, tracker.DefaultCurrency).String()
}

func formatSigned(v decimal.NullDecimal) string {
	if !v.Valid {
		return missing
	}
	return tracker.M(v.Decimal, tracker.DefaultCurrency).SignedString()
}

// formatPercent formats a ratio, 0.05 is "+5.00%".
func formatPercent(v decimal.NullDecimal) string {
	if !v.Valid {
		return missing
	}
	p := v.Decimal.Shift(2)
	if p.IsPositive() {
		return "+" + p.StringFixed(2) + "%"
	}
	return p.StringFixed(2) + "%"
}
