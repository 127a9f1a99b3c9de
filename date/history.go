package date

import (
	"iter"
	"slices"
)

// History stores a chronological series of values, at most one per day.
// The series is always sorted by day.
type History[T any] struct {
	days   []Date
	values []T
}

// Len returns the number of points in the history.
func (h *History[T]) Len() int { return len(h.days) }

func (h *History[T]) search(day Date) (int, bool) {
	return slices.BinarySearchFunc(h.days, day, Date.Compare)
}

// Append sets the value at day. An existing value at that day is overwritten,
// the last write wins.
func (h *History[T]) Append(on Date, v T) *History[T] {
	i, found := h.search(on)
	if found {
		h.values[i] = v
		return h
	}
	h.days = slices.Insert(h.days, i, on)
	h.values = slices.Insert(h.values, i, v)
	return h
}

// Get returns the value at day and true, or the zero value and false.
func (h *History[T]) Get(day Date) (T, bool) {
	if i, found := h.search(day); found {
		return h.values[i], true
	}
	var zero T
	return zero, false
}

// First returns the earliest day and its value, false when empty.
func (h *History[T]) First() (Date, T, bool) {
	if len(h.days) == 0 {
		var zero T
		return Date{}, zero, false
	}
	return h.days[0], h.values[0], true
}

// Latest returns the latest day and its value, false when empty.
func (h *History[T]) Latest() (Date, T, bool) {
	last := len(h.days) - 1
	if last < 0 {
		var zero T
		return Date{}, zero, false
	}
	return h.days[last], h.values[last], true
}

// Since returns the sub history of points on or after day. Values are shared.
func (h *History[T]) Since(day Date) *History[T] {
	i, _ := h.search(day)
	return &History[T]{days: h.days[i:], values: h.values[i:]}
}

// Days returns the days of the history in chronological order.
func (h *History[T]) Days() []Date { return slices.Clone(h.days) }

// Values iterates over day/value pairs in chronological order.
func (h *History[T]) Values() iter.Seq2[Date, T] {
	return func(yield func(Date, T) bool) {
		for i, on := range h.days {
			if !yield(on, h.values[i]) {
				return
			}
		}
	}
}
