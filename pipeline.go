package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/etnz/tracker/date"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("github.com/etnz/tracker")

// Pipeline values a transaction log over an analysis window.
type Pipeline struct {
	Prices    PriceProvider
	Calendar  Calendar
	Benchmark string     // ticker of the benchmark, e.g. "SPY"
	Window    date.Range // both boundaries included
	Oversell  OversellPolicy
}

// Report is the outcome of a pipeline run.
type Report struct {
	Window     date.Range
	Benchmark  string
	Calendar   []date.Date
	Balance    *Balance // as of the first day of the window
	Snapshots  []Snapshot
	Prices     *PriceTable
	Bench      *date.History[decimal.Decimal]
	Valuations []Valuation
	Warnings   []*OversellError // oversells tolerated by OversellWarn
	Elapsed    time.Duration
}

// Gains sums, per day, the gain of the portfolio and of the same money put in the benchmark.
func (r *Report) Gains() *Series {
	return AggregateByDay("portfolio", r.Valuations, MetricStockGain, MetricBenchmarkGain)
}

// Returns sums, per day, the returns of every lot and of the benchmark.
func (r *Report) Returns() *Series {
	return AggregateByDay("total return", r.Valuations, MetricTickerReturn, MetricBenchmarkReturn)
}

// BySymbol returns the ticker and benchmark returns of each symbol.
func (r *Report) BySymbol() []*Series {
	return AggregateBySymbol(r.Valuations, MetricTickerReturn, MetricBenchmarkReturn)
}

// Closes returns the closes of the tickers then of the benchmark, as used by the run.
func (r *Report) Closes() []Close {
	prices := r.Prices
	if prices == nil {
		prices = NewPriceTable(nil)
	}
	rows := prices.Rows()
	if r.Bench == nil {
		return rows
	}
	for day, v := range r.Bench.Values() {
		if _, ok := prices.Close(r.Benchmark, day); ok {
			continue
		}
		rows = append(rows, Close{Ticker: r.Benchmark, Date: day, Close: v})
	}
	return rows
}

// Run reconstructs, snapshots and values txs over the window.
//
// Prices and benchmark closes are fetched once each, then the calendar, which
// reuses the benchmark closes when it is the market calendar of the benchmark.
// Providers are called with the end of the window plus one day since they
// exclude the end. Any provider error aborts the run.
func (p *Pipeline) Run(ctx context.Context, txs []Transaction) (report *Report, err error) {
	started := time.Now()
	ctx, span := tracer.Start(ctx, "pipeline.Run", trace.WithAttributes(
		attribute.String("window", p.Window.String()),
		attribute.String("benchmark", p.Benchmark),
		attribute.Int("transactions", len(txs)),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if p.Window.To.Before(p.Window.From) {
		return nil, fmt.Errorf("invalid window %s: end before start", p.Window)
	}
	if p.Benchmark == "" {
		return nil, fmt.Errorf("missing benchmark ticker")
	}
	start, end := p.Window.From, p.Window.To.Add(1)

	r := &Report{Window: p.Window, Benchmark: p.Benchmark}

	if r.Prices, r.Bench, err = p.prices(ctx, Symbols(txs), start, end); err != nil {
		return nil, err
	}
	if r.Calendar, err = p.days(ctx, start, end, r.Bench); err != nil {
		return nil, err
	}

	_, rspan := tracer.Start(ctx, "reconstruct")
	var warnings []*OversellError
	r.Balance, warnings, err = ReconstructWith(txs, start, p.Oversell)
	rspan.End()
	if err != nil {
		return nil, err
	}
	r.Warnings = append(r.Warnings, warnings...)

	_, gspan := tracer.Start(ctx, "generate", trace.WithAttributes(attribute.Int("days", len(r.Calendar))))
	r.Snapshots, warnings, err = GenerateWith(r.Balance, r.Calendar, p.Oversell)
	gspan.End()
	if err != nil {
		return nil, err
	}
	r.Warnings = append(r.Warnings, warnings...)

	_, vspan := tracer.Start(ctx, "value")
	r.Valuations = Value(r.Snapshots, r.Prices, r.Bench, start)
	vspan.SetAttributes(attribute.Int("rows", len(r.Valuations)))
	vspan.End()

	r.Elapsed = time.Since(started)
	logger.Info("pipeline run",
		zap.Stringer("window", p.Window),
		zap.Int("trading_days", len(r.Calendar)),
		zap.Int("valuations", len(r.Valuations)),
		zap.Int("oversells", len(r.Warnings)),
		zap.Duration("elapsed", r.Elapsed),
	)
	return r, nil
}

// days returns the trading days of [start, end). A market calendar on the
// benchmark reads the benchmark closes already fetched.
func (p *Pipeline) days(ctx context.Context, start, end date.Date, bench *date.History[decimal.Decimal]) ([]date.Date, error) {
	ctx, span := tracer.Start(ctx, "calendar")
	defer span.End()
	var days []date.Date
	if mc, ok := p.Calendar.(*MarketCalendar); ok && mc.Ticker == p.Benchmark {
		days = bench.Days()
	} else {
		var err error
		if days, err = p.Calendar.Days(ctx, start, end); err != nil {
			return nil, fmt.Errorf("fetching trading calendar: %w", err)
		}
	}
	if err := CheckCalendar(days); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("days", len(days)))
	return days, nil
}

func (p *Pipeline) prices(ctx context.Context, tickers []string, start, end date.Date) (*PriceTable, *date.History[decimal.Decimal], error) {
	ctx, span := tracer.Start(ctx, "prices", trace.WithAttributes(attribute.StringSlice("tickers", tickers)))
	defer span.End()

	var rows []Close
	if len(tickers) > 0 {
		var err error
		if rows, err = p.Prices.Prices(ctx, tickers, start, end); err != nil {
			return nil, nil, fmt.Errorf("fetching prices: %w", err)
		}
	}
	bench, err := p.Prices.Prices(ctx, []string{p.Benchmark}, start, end)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching benchmark %s: %w", p.Benchmark, err)
	}
	table := NewPriceTable(rows)
	span.SetAttributes(attribute.Int("closes", table.Len()), attribute.Int("benchmark_closes", len(bench)))
	return table, NewPriceTable(bench).Series(p.Benchmark), nil
}
