package renderer

import (
	"cmp"
	"slices"
	"time"

	"github.com/etnz/tracker"
	"github.com/etnz/tracker/date"
	"github.com/shopspring/decimal"
)

// Summary is the state of the portfolio on the last day of a report.
type Summary struct {
	Window      date.Range
	Benchmark   string
	TradingDays int
	Last        date.Date // last trading day, zero when there is none
	Symbols     []Position
	Total       Position
	Warnings    []string
	Elapsed     time.Duration
}

// Position sums the lots of a symbol.
// Money fields are null as soon as one lot misses a price.
type Position struct {
	Symbol          string
	Lots            int
	Quantity        tracker.Quantity
	Cost            decimal.NullDecimal // adjusted cost
	Value           decimal.NullDecimal
	Gain            decimal.NullDecimal
	BenchmarkGain   decimal.NullDecimal
	Return          decimal.NullDecimal // Gain / Cost
	BenchmarkReturn decimal.NullDecimal // BenchmarkGain / Cost
}

func zero() decimal.NullDecimal { return decimal.NewNullDecimal(decimal.Zero) }

func sum(a, b decimal.NullDecimal) decimal.NullDecimal {
	if !a.Valid || !b.Valid {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(a.Decimal.Add(b.Decimal))
}

func ratio(a, b decimal.NullDecimal) decimal.NullDecimal {
	if !a.Valid || !b.Valid || b.Decimal.IsZero() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(a.Decimal.Div(b.Decimal))
}

func (p *Position) add(v *tracker.Valuation) {
	p.Lots++
	p.Quantity = p.Quantity.Add(v.Quantity)
	p.Cost = sum(p.Cost, v.AdjCost)
	p.Value = sum(p.Value, v.TickerShareValue)
	p.Gain = sum(p.Gain, v.StockGain)
	p.BenchmarkGain = sum(p.BenchmarkGain, v.BenchmarkGain)
}

func (p *Position) merge(q Position) {
	p.Lots += q.Lots
	p.Quantity = p.Quantity.Add(q.Quantity)
	p.Cost = sum(p.Cost, q.Cost)
	p.Value = sum(p.Value, q.Value)
	p.Gain = sum(p.Gain, q.Gain)
	p.BenchmarkGain = sum(p.BenchmarkGain, q.BenchmarkGain)
}

func (p *Position) returns() {
	p.Return = ratio(p.Gain, p.Cost)
	p.BenchmarkReturn = ratio(p.BenchmarkGain, p.Cost)
}

func newPosition(symbol string) Position {
	return Position{Symbol: symbol, Cost: zero(), Value: zero(), Gain: zero(), BenchmarkGain: zero()}
}

// NewSummary summarizes r on its last trading day.
func NewSummary(r *tracker.Report) *Summary {
	s := &Summary{
		Window:      r.Window,
		Benchmark:   r.Benchmark,
		TradingDays: len(r.Calendar),
		Total:       newPosition("Total"),
		Elapsed:     r.Elapsed,
	}
	for _, w := range r.Warnings {
		s.Warnings = append(s.Warnings, w.Error())
	}
	if len(r.Calendar) == 0 {
		s.Total.returns()
		return s
	}
	s.Last = r.Calendar[len(r.Calendar)-1]

	bySymbol := make(map[string]*Position)
	for i := range r.Valuations {
		v := &r.Valuations[i]
		if !v.Date.Equal(s.Last) {
			continue
		}
		p, ok := bySymbol[v.Symbol]
		if !ok {
			p = new(Position)
			*p = newPosition(v.Symbol)
			bySymbol[v.Symbol] = p
		}
		p.add(v)
	}
	for _, p := range bySymbol {
		p.returns()
		s.Symbols = append(s.Symbols, *p)
		s.Total.merge(*p)
	}
	slices.SortFunc(s.Symbols, func(a, b Position) int { return cmp.Compare(a.Symbol, b.Symbol) })
	s.Total.returns()
	return s
}

// RenderSummary renders s as markdown.
func RenderSummary(s *Summary) string {
	partials := map[string]string{
		"summary_positions": "summary_positions.md",
		"summary_warnings":  "",
	}
	if len(s.Warnings) > 0 {
		partials["summary_warnings"] = "summary_warnings.md"
	}
	return renderTemplate("summary", "summary.md", partials, s)
}

// SummaryMarkdown renders the summary of r.
func SummaryMarkdown(r *tracker.Report) string {
	return RenderSummary(NewSummary(r))
}
