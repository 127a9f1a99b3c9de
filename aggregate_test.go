package tracker

import (
	"testing"

	"github.com/etnz/tracker/date"
)

func TestAggregateByDay(t *testing.T) {
	snapshots, prices, bench := valuationFixture()
	rows := Value(snapshots, prices, bench, day("2020-07-27"))

	s := AggregateByDay("portfolio", rows, MetricStockGain, MetricBenchmarkGain)
	wantDays := []date.Date{day("2020-07-27"), day("2020-07-28"), day("2020-07-29")}
	if len(s.Days) != len(wantDays) {
		t.Fatalf("AggregateByDay().Days = %v, want %v", s.Days, wantDays)
	}
	for i := range wantDays {
		if s.Days[i] != wantDays[i] {
			t.Errorf("AggregateByDay().Days[%d] = %v, want %v", i, s.Days[i], wantDays[i])
		}
	}

	gains := s.Column(MetricStockGain)
	checkNull(t, "gain on 2020-07-27", gains[0], "0")
	checkNull(t, "gain on 2020-07-28", gains[1], "212") // 200 + 12
	checkNull(t, "gain on 2020-07-29", gains[2], "6")   // AAPL unpriced, MSFT 126 - 120

	checkNull(t, "last benchmark gain", s.Last(MetricBenchmarkGain), "56") // 50 + 6
	if s.Column(MetricTickerReturn) != nil {
		t.Errorf("Column(not aggregated) != nil")
	}
}

func TestAggregateByDay_AllNull(t *testing.T) {
	rows := []Valuation{{Date: day("2020-07-29"), Symbol: "AAPL"}, {Date: day("2020-07-28"), Symbol: "AAPL"}}
	s := AggregateByDay("x", rows, MetricStockGain)
	if len(s.Days) != 2 || s.Days[0] != day("2020-07-28") {
		t.Fatalf("AggregateByDay().Days = %v, want sorted 2 days", s.Days)
	}
	checkNull(t, "gain", s.Values[0][0], "")
}

func TestAggregateBySymbol(t *testing.T) {
	snapshots, prices, bench := valuationFixture()
	rows := Value(snapshots, prices, bench, day("2020-07-27"))

	series := AggregateBySymbol(rows, MetricTickerReturn, MetricBenchmarkReturn)
	if len(series) != 2 || series[0].Name != "AAPL" || series[1].Name != "MSFT" {
		t.Fatalf("AggregateBySymbol() = %d series, want AAPL and MSFT", len(series))
	}
	if n := len(series[1].Days); n != 2 {
		t.Errorf("MSFT series has %d days, want 2", n)
	}
	checkNull(t, "MSFT last return", series[1].Last(MetricTickerReturn), "0.05")
}
