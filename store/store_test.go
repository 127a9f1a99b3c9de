package store

import (
	"context"
	"testing"
	"time"

	"github.com/etnz/tracker"
	"github.com/etnz/tracker/date"
	"github.com/shopspring/decimal"
)

// openTestDB opens an in-memory database (for testing only).
func openTestDB(t *testing.T) *DB {
	t.Helper()
	d, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) error = %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func closeOf(ticker string, day date.Date, px string) tracker.Close {
	return tracker.Close{Ticker: ticker, Date: day, Close: decimal.RequireFromString(px)}
}

// countingSource serves static closes and counts calls.
type countingSource struct {
	closes tracker.StaticPrices
	calls  int
}

func (s *countingSource) Prices(ctx context.Context, tickers []string, start, end date.Date) ([]tracker.Close, error) {
	s.calls++
	return s.closes.Prices(ctx, tickers, start, end)
}

func TestCloses(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	err := d.SaveCloses(ctx, []tracker.Close{
		closeOf("AAPL", date.New(2020, 1, 3), "297.43"),
		closeOf("AAPL", date.New(2020, 1, 2), "300.35"),
		closeOf("SPY", date.New(2020, 1, 2), "324.87"),
	})
	if err != nil {
		t.Fatalf("SaveCloses() error = %v", err)
	}
	// upsert
	if err := d.SaveCloses(ctx, []tracker.Close{closeOf("AAPL", date.New(2020, 1, 3), "297.5")}); err != nil {
		t.Fatalf("SaveCloses() error = %v", err)
	}

	got, err := d.Closes(ctx, "AAPL", date.New(2020, 1, 1), date.New(2020, 1, 10))
	if err != nil {
		t.Fatalf("Closes() error = %v", err)
	}
	want := []tracker.Close{
		closeOf("AAPL", date.New(2020, 1, 2), "300.35"),
		closeOf("AAPL", date.New(2020, 1, 3), "297.5"),
	}
	if len(got) != len(want) {
		t.Fatalf("Closes() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i].Date != want[i].Date || !got[i].Close.Equal(want[i].Close) {
			t.Errorf("Closes()[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	// end is exclusive
	got, err = d.Closes(ctx, "AAPL", date.New(2020, 1, 1), date.New(2020, 1, 3))
	if err != nil {
		t.Fatalf("Closes() error = %v", err)
	}
	if len(got) != 1 {
		t.Errorf("Closes(..2020-01-03) returned %d closes, want 1", len(got))
	}
}

func TestCache(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	src := &countingSource{closes: tracker.StaticPrices{
		closeOf("AAPL", date.New(2020, 1, 2), "300.35"),
		closeOf("AAPL", date.New(2020, 1, 3), "297.43"),
		closeOf("SPY", date.New(2020, 1, 2), "324.87"),
	}}
	cache := NewCache(d, src)
	cache.Today = func() date.Date { return date.New(2024, 1, 1) }

	for range 2 {
		got, err := cache.Prices(ctx, []string{"AAPL", "SPY"}, date.New(2020, 1, 1), date.New(2020, 1, 6))
		if err != nil {
			t.Fatalf("Prices() error = %v", err)
		}
		if len(got) != 3 {
			t.Errorf("Prices() returned %d closes, want 3", len(got))
		}
	}
	if src.calls != 2 {
		t.Errorf("source called %d times, want 2 (one per ticker)", src.calls)
	}

	// a sub range is covered
	if _, err := cache.Prices(ctx, []string{"AAPL"}, date.New(2020, 1, 2), date.New(2020, 1, 3)); err != nil {
		t.Fatalf("Prices() error = %v", err)
	}
	if src.calls != 2 {
		t.Errorf("source called %d times for a covered range, want 2", src.calls)
	}

	// ranges reaching past today are never covered
	cache.Today = func() date.Date { return date.New(2020, 1, 3) }
	for range 2 {
		if _, err := cache.Prices(ctx, []string{"SPY"}, date.New(2020, 1, 6), date.New(2020, 1, 10)); err != nil {
			t.Fatalf("Prices() error = %v", err)
		}
	}
	if src.calls != 4 {
		t.Errorf("source called %d times, want 4", src.calls)
	}
}

func TestSaveRun(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	report := &tracker.Report{
		Window:    date.Range{From: date.New(2020, 1, 2), To: date.New(2020, 1, 3)},
		Benchmark: "SPY",
		Elapsed:   3 * time.Millisecond,
		Valuations: []tracker.Valuation{
			{Date: date.New(2020, 1, 2), Symbol: "AAPL", OpenDate: date.New(2019, 6, 3), StockGain: decimal.NewNullDecimal(decimal.NewFromInt(10))},
			{Date: date.New(2020, 1, 2), Symbol: "MSFT", OpenDate: date.New(2019, 6, 3), StockGain: decimal.NewNullDecimal(decimal.NewFromInt(-4))},
			{Date: date.New(2020, 1, 3), Symbol: "AAPL", OpenDate: date.New(2019, 6, 3)},
		},
	}
	id, err := d.SaveRun(ctx, report)
	if err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}

	runs, err := d.Runs(ctx)
	if err != nil {
		t.Fatalf("Runs() error = %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("Runs() returned %d runs, want 1", len(runs))
	}
	if r := runs[0]; r.ID != id || r.Benchmark != "SPY" || r.Window != report.Window || r.Elapsed != report.Elapsed {
		t.Errorf("Runs()[0] = %+v, want id %s SPY %v %v", r, id, report.Window, report.Elapsed)
	}

	days, sums, err := d.Series(ctx, id, tracker.MetricStockGain)
	if err != nil {
		t.Fatalf("Series() error = %v", err)
	}
	if len(days) != 2 || len(sums) != 2 {
		t.Fatalf("Series() = %v %v, want two days", days, sums)
	}
	if !sums[0].Valid || sums[0].Decimal.String() != "6" {
		t.Errorf("Series() on %s = %v, want 6", days[0], sums[0])
	}
	if sums[1].Valid {
		t.Errorf("Series() on %s = %v, want null", days[1], sums[1])
	}
}
