package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/tracker"
	"github.com/etnz/tracker/date"
	"github.com/shopspring/decimal"
)

// PositionsMarkdown lists the open lots of s in FIFO order.
func PositionsMarkdown(s tracker.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Open Lots on %s\n\n", s.On)
	if len(s.Lots) == 0 {
		fmt.Fprintln(&b, "No open position.")
		return b.String()
	}
	fmt.Fprintln(&b, "| Symbol | Open Date | Quantity | Cost per Share | Cost |")
	fmt.Fprintln(&b, "|:---|:---|---:|---:|---:|")
	total := make(map[string]decimal.Decimal)
	for _, l := range s.Lots {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			l.Symbol,
			l.OpenDate,
			l.Quantity,
			tracker.M(l.CostPerShare, tracker.DefaultCurrency),
			tracker.M(l.Cost(), tracker.DefaultCurrency),
		)
		total[l.Symbol] = total[l.Symbol].Add(l.Cost())
	}

	fmt.Fprint(&b, "\n## Per Symbol\n\n")
	fmt.Fprintln(&b, "| Symbol | Quantity | Cost |")
	fmt.Fprintln(&b, "|:---|---:|---:|")
	for _, symbol := range s.Symbols() {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", symbol, s.Position(symbol), tracker.M(total[symbol], tracker.DefaultCurrency))
	}
	return b.String()
}

// CalendarMarkdown lists trading days, one line per day.
func CalendarMarkdown(window date.Range, days []date.Date) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Trading Days from %s to %s\n\n", window.From, window.To)
	fmt.Fprintf(&b, "%d trading days out of %d calendar days.\n\n", len(days), window.Len())
	for _, d := range days {
		fmt.Fprintf(&b, "- %s %s\n", d, d.Weekday())
	}
	return b.String()
}
