package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/etnz/tracker/date"
)

// WeekdayCalendar trades Monday to Friday, except on holidays.
type WeekdayCalendar struct {
	Holidays map[date.Date]bool
}

// NewWeekdayCalendar returns a calendar closed on the given holidays.
func NewWeekdayCalendar(holidays ...date.Date) *WeekdayCalendar {
	c := &WeekdayCalendar{Holidays: make(map[date.Date]bool)}
	for _, h := range holidays {
		c.Holidays[h] = true
	}
	return c
}

func (c *WeekdayCalendar) Days(_ context.Context, start, end date.Date) ([]date.Date, error) {
	var days []date.Date
	for day := start; day.Before(end); day = day.Add(1) {
		switch day.Weekday() {
		case time.Saturday, time.Sunday:
			continue
		}
		if c.Holidays[day] {
			continue
		}
		days = append(days, day)
	}
	return days, nil
}

// MarketCalendar uses the days a reference ticker, usually the benchmark, has a close.
// A Pipeline whose benchmark is Ticker derives the days from its own benchmark
// closes instead of calling Prices.
type MarketCalendar struct {
	Prices PriceProvider
	Ticker string
}

func (c *MarketCalendar) Days(ctx context.Context, start, end date.Date) ([]date.Date, error) {
	rows, err := c.Prices.Prices(ctx, []string{c.Ticker}, start, end)
	if err != nil {
		return nil, fmt.Errorf("trading days of %s: %w", c.Ticker, err)
	}
	return NewPriceTable(rows).Series(c.Ticker).Days(), nil
}
