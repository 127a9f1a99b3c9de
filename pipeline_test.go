package tracker

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/etnz/tracker/date"
)

var spyAndAAPL = StaticPrices{
	{Ticker: "SPY", Date: day("2020-07-24"), Close: dec("320")},
	{Ticker: "SPY", Date: day("2020-07-27"), Close: dec("322")},
	{Ticker: "SPY", Date: day("2020-07-28"), Close: dec("320")},
	{Ticker: "SPY", Date: day("2020-07-29"), Close: dec("324")},
	{Ticker: "SPY", Date: day("2020-07-31"), Close: dec("326")},
	{Ticker: "AAPL", Date: day("2020-07-27"), Close: dec("94")},
	{Ticker: "AAPL", Date: day("2020-07-28"), Close: dec("93")},
	{Ticker: "AAPL", Date: day("2020-07-29"), Close: dec("95")},
	{Ticker: "AAPL", Date: day("2020-07-30"), Close: dec("96")},
	{Ticker: "AAPL", Date: day("2020-07-31"), Close: dec("106")},
}

type failingPrices struct{}

func (failingPrices) Prices(context.Context, []string, date.Date, date.Date) ([]Close, error) {
	return nil, errors.New("service unavailable")
}

func TestPipeline_Run(t *testing.T) {
	p := &Pipeline{
		Prices:    spyAndAAPL,
		Calendar:  &MarketCalendar{Prices: spyAndAAPL, Ticker: "SPY"},
		Benchmark: "SPY",
		Window:    date.Range{From: day("2020-07-27"), To: day("2020-07-31")},
	}
	txs := []Transaction{
		buy("AAPL", "2020-01-02", 10, "75"),
		sell("AAPL", "2020-07-29", 4),
	}

	r, err := p.Run(context.Background(), txs)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	// the calendar has no 2020-07-30 and includes the last day of the window
	if len(r.Snapshots) != 4 || r.Snapshots[3].On != day("2020-07-31") {
		t.Fatalf("Run() snapshots = %d ending %v, want 4 ending 2020-07-31", len(r.Snapshots), r.Snapshots[len(r.Snapshots)-1].On)
	}
	if got := r.Snapshots[2].Position("AAPL"); !got.Equal(Q(6)) {
		t.Errorf("Position(AAPL) on 2020-07-29 = %v, want 6", got)
	}
	if len(r.Valuations) != 4 {
		t.Fatalf("Run() valuations = %d, want 4", len(r.Valuations))
	}
	last := r.Valuations[3]
	checkNull(t, "Adj cost per share", last.AdjCostPerShare, "94")
	checkNull(t, "Benchmark Start Date Close", last.BenchmarkStartClose, "322")
	checkNull(t, "Ticker Share Value", last.TickerShareValue, "636")

	gains := r.Gains()
	if len(gains.Days) != 4 {
		t.Errorf("Gains() has %d days, want 4", len(gains.Days))
	}
	checkNull(t, "final stock gain", gains.Last(MetricStockGain), "72") // 6 × (106 - 94)
}

// recordingPrices records the tickers of every request.
type recordingPrices struct {
	PriceProvider
	requests []string
}

func (r *recordingPrices) Prices(ctx context.Context, tickers []string, start, end date.Date) ([]Close, error) {
	r.requests = append(r.requests, tickers...)
	return r.PriceProvider.Prices(ctx, tickers, start, end)
}

func TestPipeline_BenchmarkFetchedOnce(t *testing.T) {
	prices := &recordingPrices{PriceProvider: spyAndAAPL}
	p := &Pipeline{
		Prices:    prices,
		Calendar:  &MarketCalendar{Prices: prices, Ticker: "SPY"},
		Benchmark: "SPY",
		Window:    date.Range{From: day("2020-07-27"), To: day("2020-07-31")},
	}
	r, err := p.Run(context.Background(), []Transaction{buy("AAPL", "2020-01-02", 10, "75")})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	n := 0
	for _, ticker := range prices.requests {
		if ticker == "SPY" {
			n++
		}
	}
	if n != 1 {
		t.Errorf("SPY requested %d times, want 1: %v", n, prices.requests)
	}
	want := []date.Date{day("2020-07-27"), day("2020-07-28"), day("2020-07-29"), day("2020-07-31")}
	if !slices.Equal(r.Calendar, want) {
		t.Errorf("Run() calendar = %v, want %v", r.Calendar, want)
	}
}

func TestPipeline_ProviderFailure(t *testing.T) {
	p := &Pipeline{
		Prices:    failingPrices{},
		Calendar:  NewWeekdayCalendar(),
		Benchmark: "SPY",
		Window:    date.Range{From: day("2020-07-27"), To: day("2020-07-31")},
	}
	if _, err := p.Run(context.Background(), []Transaction{buy("AAPL", "2020-01-02", 1, "1")}); err == nil {
		t.Errorf("Run() error = nil, want provider failure")
	}
	p.Calendar = &MarketCalendar{Prices: failingPrices{}, Ticker: "SPY"}
	if _, err := p.Run(context.Background(), nil); err == nil {
		t.Errorf("Run() error = nil, want calendar failure")
	}
}

func TestPipeline_Oversell(t *testing.T) {
	p := &Pipeline{
		Prices:    spyAndAAPL,
		Calendar:  NewWeekdayCalendar(),
		Benchmark: "SPY",
		Window:    date.Range{From: day("2020-07-27"), To: day("2020-07-31")},
	}
	txs := []Transaction{
		buy("AAPL", "2020-01-02", 10, "75"),
		sell("AAPL", "2020-07-28", 15),
	}
	if _, err := p.Run(context.Background(), txs); !errors.Is(err, ErrOversell) {
		t.Errorf("Run() error = %v, want ErrOversell", err)
	}

	p.Oversell = OversellWarn
	r, err := p.Run(context.Background(), txs)
	if err != nil {
		t.Fatalf("Run(warn) error = %v", err)
	}
	if len(r.Warnings) != 1 {
		t.Errorf("Run(warn) warnings = %v, want 1", r.Warnings)
	}
}

func TestWeekdayCalendar(t *testing.T) {
	c := NewWeekdayCalendar(day("2020-07-03"))
	days, err := c.Days(context.Background(), day("2020-06-30"), day("2020-07-07"))
	if err != nil {
		t.Fatalf("Days() error = %v", err)
	}
	want := []date.Date{day("2020-06-30"), day("2020-07-01"), day("2020-07-02"), day("2020-07-06")}
	if len(days) != len(want) {
		t.Fatalf("Days() = %v, want %v", days, want)
	}
	for i := range want {
		if days[i] != want[i] {
			t.Errorf("Days()[%d] = %v, want %v", i, days[i], want[i])
		}
	}
}
