package date

import "iter"

// Range is a closed interval of days, both boundaries included.
type Range struct{ From, To Date }

// Contains reports whether day is within the range, boundaries included.
func (r Range) Contains(day Date) bool { return !day.Before(r.From) && !day.After(r.To) }

// Days iterates over every calendar day of the range, in order.
func (r Range) Days() iter.Seq[Date] {
	return func(yield func(Date) bool) {
		for d := r.From; !d.After(r.To); d = d.Add(1) {
			if !yield(d) {
				return
			}
		}
	}
}

// Len returns the number of days in the range, 0 if To is before From.
func (r Range) Len() int {
	if r.To.Before(r.From) {
		return 0
	}
	return int(r.To.time().Sub(r.From.time()).Hours()/24) + 1
}

// String formats the range as "from..to".
func (r Range) String() string { return r.From.String() + ".." + r.To.String() }
