package tracker

import (
	"errors"
	"fmt"

	"github.com/etnz/tracker/date"
)

var (
	// ErrOversell matches every *OversellError.
	ErrOversell = errors.New("oversell")
	// ErrMalformed is returned for transaction logs that cannot be used.
	ErrMalformed = errors.New("malformed transaction log")
	// ErrCalendar is returned when a trading calendar is not strictly increasing.
	ErrCalendar = errors.New("invalid trading calendar")
)

// OversellError reports a sale that exceeds the open lots of its symbol.
// The part of the sale that could be matched has been applied.
type OversellError struct {
	Symbol string
	Date   date.Date
	Excess Quantity // unmatched quantity, always positive
}

func (e *OversellError) Error() string {
	return fmt.Sprintf("oversell: %s sold on %s exceeds open lots by %s shares", e.Symbol, e.Date, e.Excess)
}

// Is makes errors.Is(err, ErrOversell) true.
func (e *OversellError) Is(target error) bool { return target == ErrOversell }

// OversellPolicy tells what to do when a sale exceeds the open lots.
type OversellPolicy int

const (
	// OversellFail aborts with the *OversellError.
	OversellFail OversellPolicy = iota
	// OversellWarn drops the excess, logs it and reports it alongside the result.
	OversellWarn
)

// ParseOversellPolicy accepts "fail" or "warn".
func ParseOversellPolicy(s string) (OversellPolicy, error) {
	switch s {
	case "fail", "":
		return OversellFail, nil
	case "warn":
		return OversellWarn, nil
	default:
		return OversellFail, fmt.Errorf("invalid oversell policy %q want \"fail\" or \"warn\"", s)
	}
}

func (p OversellPolicy) String() string {
	if p == OversellWarn {
		return "warn"
	}
	return "fail"
}
