// Package date provides a day-granularity calendar date used to key lots, snapshots and prices.
package date

import (
	"fmt"
	"strings"
	"time"
)

// Permissive read formats, single-digit month and day allowed.
// Times of day are accepted at midnight only, as written by spreadsheet exports.
var readFormats = []string{
	"2006-1-2",
	"2006-1-2 15:04:05",
	"2006-1-2T15:04:05",
	"1/2/2006",
	"1/2/2006 15:04:05",
}

// DateFormat is the format used to write dates, ISO-8601.
const DateFormat = "2006-01-02"

// Date is a calendar day with no time of day and no time zone.
//
// Dates are comparable with == and can be used as map keys.
type Date struct {
	y int
	m time.Month
	d int
}

// New returns a normalized Date for the given year, month, and day.
// Out of range values are normalized the way time.Date does ("2020-1-32" is "2020-2-1").
func New(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.time().Date()
	return d
}

// FromTime returns the calendar day of t in t's location.
func FromTime(t time.Time) Date { return New(t.Date()) }

// Today returns the current date.
func Today() Date { return New(time.Now().Date()) }

// time returns the canonical instant of that day, midnight UTC.
func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time { return d.time() }

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool { return d == Date{} }

func (d Date) Year() int              { return d.y }
func (d Date) Month() time.Month      { return d.m }
func (d Date) Day() int               { return d.d }
func (d Date) Weekday() time.Weekday  { return d.time().Weekday() }
func (d Date) Add(days int) Date      { return New(d.y, d.m, d.d+days) }
func (d Date) Before(x Date) bool     { return d.Compare(x) < 0 }
func (d Date) After(x Date) bool      { return d.Compare(x) > 0 }
func (d Date) String() string         { return d.time().Format(DateFormat) }
func (d Date) Format(l string) string { return d.time().Format(l) }

// Equal reports whether d and x are the same day.
func (d Date) Equal(x Date) bool { return d == x }

// Compare returns -1, 0 or +1 when d is before, equal or after x.
func (d Date) Compare(x Date) int {
	switch {
	case d.y != x.y:
		return cmpInt(d.y, x.y)
	case d.m != x.m:
		return cmpInt(int(d.m), int(x.m))
	default:
		return cmpInt(d.d, x.d)
	}
}

func cmpInt(a, b int) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// Parse parses a Date. It is lenient and accepts "2025-7-1" as well as "2025-07-01",
// US "7/1/2025", and either form followed by a midnight time "00:00:00".
func Parse(str string) (Date, error) {
	for _, layout := range readFormats {
		on, err := time.Parse(layout, str)
		if err != nil {
			continue
		}
		if h, m, s := on.Clock(); h != 0 || m != 0 || s != 0 {
			return Date{}, fmt.Errorf("invalid date %q: time of day %s is not midnight", str, on.Format(time.TimeOnly))
		}
		return New(on.Date()), nil
	}
	return Date{}, fmt.Errorf("invalid date %q want format %q", str, DateFormat)
}

// MustParse is like Parse but panics on error.
func MustParse(str string) Date {
	d, err := Parse(str)
	if err != nil {
		panic(err.Error())
	}
	return d
}

// MarshalCSV writes the date for csv encoders.
func (d Date) MarshalCSV() (string, error) { return d.String(), nil }

// UnmarshalCSV reads the date from a csv cell.
func (d *Date) UnmarshalCSV(cell string) (err error) {
	*d, err = Parse(strings.TrimSpace(cell))
	return err
}
