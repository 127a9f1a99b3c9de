package tracker

import (
	"github.com/etnz/tracker/date"
	"github.com/shopspring/decimal"
)

// Metric names a valuation column.
type Metric string

const (
	MetricClose                Metric = "Close"
	MetricAdjCostDaily         Metric = "Adj cost daily"
	MetricBenchmarkClose       Metric = "Benchmark Close"
	MetricBenchmarkEndClose    Metric = "Benchmark End Date Close"
	MetricBenchmarkStartClose  Metric = "Benchmark Start Date Close"
	MetricTickerEndClose       Metric = "Ticker End Date Close"
	MetricTickerStartClose     Metric = "Ticker Start Date Close"
	MetricAdjCostPerShare      Metric = "Adj cost per share"
	MetricAdjCost              Metric = "Adj cost"
	MetricEquivBenchmarkShares Metric = "Equiv Benchmark Shares"
	MetricBenchmarkStartCost   Metric = "Benchmark Start Date Cost"
	MetricBenchmarkReturn      Metric = "Benchmark Return"
	MetricTickerReturn         Metric = "Ticker Return"
	MetricTickerShareValue     Metric = "Ticker Share Value"
	MetricBenchmarkShareValue  Metric = "Benchmark Share Value"
	MetricStockGain            Metric = "Stock Gain / (Loss)"
	MetricBenchmarkGain        Metric = "Benchmark Gain / (Loss)"
	MetricAbsValueCompare      Metric = "Abs Value Compare"
	MetricAbsValueReturn       Metric = "Abs Value Return"
	MetricAbsReturnCompare     Metric = "Abs. Return Compare"
)

// Metrics lists every metric in column order.
var Metrics = []Metric{
	MetricClose, MetricAdjCostDaily,
	MetricBenchmarkClose, MetricBenchmarkEndClose, MetricBenchmarkStartClose,
	MetricTickerEndClose, MetricTickerStartClose,
	MetricAdjCostPerShare, MetricAdjCost, MetricEquivBenchmarkShares, MetricBenchmarkStartCost,
	MetricBenchmarkReturn, MetricTickerReturn,
	MetricTickerShareValue, MetricBenchmarkShareValue,
	MetricStockGain, MetricBenchmarkGain,
	MetricAbsValueCompare, MetricAbsValueReturn, MetricAbsReturnCompare,
}

// Valuation is one open lot on one trading day, marked to market and
// compared to a benchmark bought with the same money at the start of the window.
//
// Fields depending on a missing price are null.
type Valuation struct {
	Date         date.Date
	Symbol       string
	OpenDate     date.Date
	Quantity     Quantity
	CostPerShare decimal.Decimal // original purchase price

	Close        decimal.NullDecimal // ticker close on Date
	AdjCostDaily decimal.NullDecimal // Close × Quantity

	BenchmarkClose      decimal.NullDecimal // benchmark close on Date
	BenchmarkEndClose   decimal.NullDecimal // benchmark close on its last day in the window
	BenchmarkStartClose decimal.NullDecimal // benchmark close on its first day in the window
	TickerEndClose      decimal.NullDecimal // ticker close on the last priced day of the window
	TickerStartClose    decimal.NullDecimal // ticker close on the first priced day of the window

	AdjCostPerShare      decimal.NullDecimal // trued-up cost per share
	AdjCost              decimal.NullDecimal
	EquivBenchmarkShares decimal.NullDecimal
	BenchmarkStartCost   decimal.NullDecimal

	BenchmarkReturn     decimal.NullDecimal
	TickerReturn        decimal.NullDecimal
	TickerShareValue    decimal.NullDecimal
	BenchmarkShareValue decimal.NullDecimal
	StockGain           decimal.NullDecimal
	BenchmarkGain       decimal.NullDecimal
	AbsValueCompare     decimal.NullDecimal
	AbsValueReturn      decimal.NullDecimal
	AbsReturnCompare    decimal.NullDecimal
}

// Get returns the value of metric m. Unknown metrics are null.
func (v *Valuation) Get(m Metric) decimal.NullDecimal {
	switch m {
	case MetricClose:
		return v.Close
	case MetricAdjCostDaily:
		return v.AdjCostDaily
	case MetricBenchmarkClose:
		return v.BenchmarkClose
	case MetricBenchmarkEndClose:
		return v.BenchmarkEndClose
	case MetricBenchmarkStartClose:
		return v.BenchmarkStartClose
	case MetricTickerEndClose:
		return v.TickerEndClose
	case MetricTickerStartClose:
		return v.TickerStartClose
	case MetricAdjCostPerShare:
		return v.AdjCostPerShare
	case MetricAdjCost:
		return v.AdjCost
	case MetricEquivBenchmarkShares:
		return v.EquivBenchmarkShares
	case MetricBenchmarkStartCost:
		return v.BenchmarkStartCost
	case MetricBenchmarkReturn:
		return v.BenchmarkReturn
	case MetricTickerReturn:
		return v.TickerReturn
	case MetricTickerShareValue:
		return v.TickerShareValue
	case MetricBenchmarkShareValue:
		return v.BenchmarkShareValue
	case MetricStockGain:
		return v.StockGain
	case MetricBenchmarkGain:
		return v.BenchmarkGain
	case MetricAbsValueCompare:
		return v.AbsValueCompare
	case MetricAbsValueReturn:
		return v.AbsValueReturn
	case MetricAbsReturnCompare:
		return v.AbsReturnCompare
	default:
		return null
	}
}

// reference holds the closes that do not depend on the row's day.
type reference struct {
	firstDay            date.Date
	priced              bool
	benchmarkStartClose decimal.NullDecimal
	benchmarkEndClose   decimal.NullDecimal
	tickerStart         map[string]decimal.NullDecimal
	tickerEnd           map[string]decimal.NullDecimal
}

func newReference(prices *PriceTable, benchmark *date.History[decimal.Decimal], windowStart date.Date) *reference {
	ref := &reference{
		tickerStart: make(map[string]decimal.NullDecimal),
		tickerEnd:   make(map[string]decimal.NullDecimal),
	}
	window := prices.Since(windowStart)
	first, last, ok := window.Bounds()
	ref.firstDay, ref.priced = first, ok
	if ok {
		for _, ticker := range window.Tickers() {
			ref.tickerStart[ticker] = lookup(window.Close(ticker, first))
			ref.tickerEnd[ticker] = lookup(window.Close(ticker, last))
		}
	}

	bench := benchmark.Since(windowStart)
	if _, v, ok := bench.First(); ok {
		ref.benchmarkStartClose = known(v)
	}
	if _, v, ok := bench.Latest(); ok {
		ref.benchmarkEndClose = known(v)
	}
	return ref
}

var one = known(decimal.NewFromInt(1))

// Value marks every lot of every snapshot to market.
//
// Closes are looked up by (day, symbol) without forward fill. Reference closes
// (ticker start and end, benchmark start and end) are taken on the first and
// last priced days on or after windowStart. A lot opened on or before the first
// priced day has its cost per share trued-up to the ticker start close.
//
// Value is a pure function of its inputs: it returns one row per lot per
// snapshot, in snapshot order, and never drops rows for missing data.
// A nil table has no closes.
func Value(snapshots []Snapshot, prices *PriceTable, benchmark *date.History[decimal.Decimal], windowStart date.Date) []Valuation {
	if prices == nil {
		prices = NewPriceTable(nil)
	}
	if benchmark == nil {
		benchmark = new(date.History[decimal.Decimal])
	}
	ref := newReference(prices, benchmark, windowStart)

	var rows []Valuation
	for _, s := range snapshots {
		benchClose := lookup(benchmark.Get(s.On))
		for _, l := range s.Lots {
			rows = append(rows, value(l, s.On, lookup(prices.Close(l.Symbol, s.On)), benchClose, ref))
		}
	}
	return rows
}

func value(l Lot, on date.Date, px, benchClose decimal.NullDecimal, ref *reference) Valuation {
	v := Valuation{
		Date:                on,
		Symbol:              l.Symbol,
		OpenDate:            l.OpenDate,
		Quantity:            l.Quantity,
		CostPerShare:        l.CostPerShare,
		Close:               px,
		BenchmarkClose:      benchClose,
		BenchmarkEndClose:   ref.benchmarkEndClose,
		BenchmarkStartClose: ref.benchmarkStartClose,
		TickerEndClose:      ref.tickerEnd[l.Symbol],
		TickerStartClose:    ref.tickerStart[l.Symbol],
	}
	qty := known(l.Quantity.Decimal())
	v.AdjCostDaily = mul(px, qty)

	v.AdjCostPerShare = known(l.CostPerShare)
	if ref.priced && !l.OpenDate.After(ref.firstDay) {
		v.AdjCostPerShare = v.TickerStartClose
	}
	v.AdjCost = mul(v.AdjCostPerShare, qty)
	v.EquivBenchmarkShares = div(v.AdjCost, v.BenchmarkStartClose)
	v.BenchmarkStartCost = mul(v.EquivBenchmarkShares, v.BenchmarkStartClose)

	v.BenchmarkReturn = sub(div(benchClose, v.BenchmarkStartClose), one)
	v.TickerReturn = sub(div(px, v.AdjCostPerShare), one)
	v.TickerShareValue = mul(qty, px)
	v.BenchmarkShareValue = mul(v.EquivBenchmarkShares, benchClose)
	v.StockGain = sub(v.TickerShareValue, v.AdjCost)
	v.BenchmarkGain = sub(v.BenchmarkShareValue, v.AdjCost)
	v.AbsValueCompare = sub(v.TickerShareValue, v.BenchmarkStartCost)
	v.AbsValueReturn = div(v.AbsValueCompare, v.BenchmarkStartCost)
	v.AbsReturnCompare = sub(v.TickerReturn, v.BenchmarkReturn)
	return v
}
