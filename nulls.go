package tracker

import "github.com/shopspring/decimal"

// Arithmetic over nullable decimals. Any null operand gives null,
// and so does a division by zero.

var null = decimal.NullDecimal{}

func known(d decimal.Decimal) decimal.NullDecimal { return decimal.NewNullDecimal(d) }

func lookup(d decimal.Decimal, ok bool) decimal.NullDecimal {
	if !ok {
		return null
	}
	return known(d)
}

func add(a, b decimal.NullDecimal) decimal.NullDecimal {
	if !a.Valid || !b.Valid {
		return null
	}
	return known(a.Decimal.Add(b.Decimal))
}

func sub(a, b decimal.NullDecimal) decimal.NullDecimal {
	if !a.Valid || !b.Valid {
		return null
	}
	return known(a.Decimal.Sub(b.Decimal))
}

func mul(a, b decimal.NullDecimal) decimal.NullDecimal {
	if !a.Valid || !b.Valid {
		return null
	}
	return known(a.Decimal.Mul(b.Decimal))
}

func div(a, b decimal.NullDecimal) decimal.NullDecimal {
	if !a.Valid || !b.Valid || b.Decimal.IsZero() {
		return null
	}
	return known(a.Decimal.Div(b.Decimal))
}
