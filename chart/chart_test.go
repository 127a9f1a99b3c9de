package chart

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/etnz/tracker"
	"github.com/etnz/tracker/date"
	"github.com/shopspring/decimal"
	"github.com/vicanso/go-charts/v2"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n")

func known(v int64) decimal.NullDecimal { return decimal.NewNullDecimal(decimal.NewFromInt(v)) }

func TestLine(t *testing.T) {
	s := &tracker.Series{
		Name:    "portfolio",
		Metrics: []tracker.Metric{tracker.MetricStockGain, tracker.MetricBenchmarkGain},
		Days:    []date.Date{date.New(2020, 1, 2), date.New(2020, 1, 3), date.New(2020, 1, 6)},
		Values: [][]decimal.NullDecimal{
			{known(0), {}, known(12)},
			{known(0), known(3), known(5)},
		},
	}
	buf, err := Line("Gain / (Loss)", s)
	if err != nil {
		t.Fatalf("Line() error = %v", err)
	}
	if !bytes.HasPrefix(buf, pngHeader) {
		t.Errorf("Line() did not return a PNG")
	}

	if _, err := Line("empty", &tracker.Series{Name: "empty"}); err == nil {
		t.Errorf("Line() on an empty series should fail")
	}
}

func TestPoints_NullsAreGaps(t *testing.T) {
	s := &tracker.Series{
		Metrics: []tracker.Metric{tracker.MetricStockGain},
		Days:    []date.Date{date.New(2020, 1, 2), date.New(2020, 1, 3), date.New(2020, 1, 6)},
		Values:  [][]decimal.NullDecimal{{known(4), {}, known(-2)}},
	}
	values, yMin, yMax := points(s)
	want := []float64{4, charts.GetNullValue(), -2}
	if !slices.Equal(values[0], want) {
		t.Errorf("points() = %v, want %v", values[0], want)
	}
	if yMin != -2 || yMax != 4 {
		t.Errorf("points() range = %v..%v, want -2..4", yMin, yMax)
	}

	s.Values = [][]decimal.NullDecimal{{{}, {}, {}}}
	if _, yMin, yMax := points(s); yMin != 0 || yMax != 0 {
		t.Errorf("points(all null) range = %v..%v, want 0..0", yMin, yMax)
	}
	if _, err := Line("missing prices", s); err != nil {
		t.Errorf("Line(all null) error = %v", err)
	}
}

func TestWriteReport(t *testing.T) {
	day := date.New(2020, 1, 2)
	r := &tracker.Report{
		Benchmark: "SPY",
		Valuations: []tracker.Valuation{
			{Date: day, Symbol: "AAPL", StockGain: known(10), BenchmarkGain: known(4), TickerReturn: known(1), BenchmarkReturn: known(1)},
			{Date: day, Symbol: "BRK/B", StockGain: known(-2), BenchmarkGain: known(1), TickerReturn: known(0), BenchmarkReturn: known(1)},
			{Date: day.Add(1), Symbol: "AAPL", StockGain: known(11), BenchmarkGain: known(5), TickerReturn: known(1), BenchmarkReturn: known(1)},
			{Date: day.Add(1), Symbol: "BRK/B", StockGain: known(-1), BenchmarkGain: known(2), TickerReturn: known(0), BenchmarkReturn: known(1)},
		},
	}
	dir := t.TempDir()
	written, err := WriteReport(dir, r)
	if err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}
	want := []string{"gains.png", "returns.png", "returns-AAPL.png", "returns-BRK_B.png"}
	if len(written) != len(want) {
		t.Fatalf("WriteReport() wrote %v, want %v", written, want)
	}
	for i, name := range want {
		if written[i] != filepath.Join(dir, name) {
			t.Errorf("WriteReport()[%d] = %s, want %s", i, written[i], name)
		}
		buf, err := os.ReadFile(written[i])
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.HasPrefix(buf, pngHeader) {
			t.Errorf("%s is not a PNG", name)
		}
	}
}
