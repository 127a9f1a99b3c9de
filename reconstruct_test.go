package tracker

import (
	"errors"
	"testing"
)

// aaplLog is a buy, a second buy and a sell spanning both lots.
var aaplLog = []Transaction{
	buy("AAPL", "2020-01-01", 10, "100"),
	buy("AAPL", "2020-02-01", 5, "110"),
	sell("AAPL", "2020-03-01", 12),
}

func TestReconstruct(t *testing.T) {
	testCases := []struct {
		name      string
		txs       []Transaction
		asOf      string
		wantOpen  []Lot
		wantLots  []Lot
		wantSales []Sale
	}{
		{
			name:     "after the sell the first lot is dropped",
			txs:      aaplLog,
			asOf:     "2020-03-01",
			wantOpen: []Lot{lot("AAPL", "2020-02-01", 3, "110")},
			wantLots: []Lot{lot("AAPL", "2020-02-01", 3, "110")},
		},
		{
			name:     "before the sell it is kept for replay",
			txs:      aaplLog,
			asOf:     "2020-01-15",
			wantOpen: []Lot{lot("AAPL", "2020-01-01", 10, "100")},
			wantLots: []Lot{
				lot("AAPL", "2020-01-01", 10, "100"),
				lot("AAPL", "2020-02-01", 5, "110"),
			},
			wantSales: []Sale{{Symbol: "AAPL", Date: day("2020-03-01"), Quantity: Q(12)}},
		},
		{
			name: "sells on the same day are summed",
			txs: []Transaction{
				buy("AAPL", "2020-01-01", 10, "100"),
				sell("AAPL", "2020-01-02", 2),
				sell("AAPL", "2020-01-02", 3),
				sell("AAPL", "2020-02-02", 1),
				sell("AAPL", "2020-02-02", 1),
			},
			asOf:      "2020-01-02",
			wantOpen:  []Lot{lot("AAPL", "2020-01-01", 5, "100")},
			wantLots:  []Lot{lot("AAPL", "2020-01-01", 5, "100")},
			wantSales: []Sale{{Symbol: "AAPL", Date: day("2020-02-02"), Quantity: Q(2)}},
		},
		{
			name: "symbols without sells pass through",
			txs: []Transaction{
				buy("MSFT", "2019-06-01", 4, "130"),
				buy("AAPL", "2020-01-01", 10, "100"),
				sell("AAPL", "2020-01-05", 10),
			},
			asOf:     "2020-01-15",
			wantOpen: []Lot{lot("MSFT", "2019-06-01", 4, "130")},
			wantLots: []Lot{lot("MSFT", "2019-06-01", 4, "130")},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := Reconstruct(tc.txs, day(tc.asOf))
			if err != nil {
				t.Fatalf("Reconstruct() error = %v", err)
			}
			if diff := lotDiff(tc.wantOpen, b.Open()); diff != "" {
				t.Errorf("Reconstruct().Open() mismatch (-want +got):\n%s", diff)
			}
			if diff := lotDiff(tc.wantLots, b.Lots); diff != "" {
				t.Errorf("Reconstruct().Lots mismatch (-want +got):\n%s", diff)
			}
			if len(b.Sales) != len(tc.wantSales) {
				t.Fatalf("Reconstruct().Sales = %v, want %v", b.Sales, tc.wantSales)
			}
			for i, s := range b.Sales {
				w := tc.wantSales[i]
				if s.Symbol != w.Symbol || s.Date != w.Date || !s.Quantity.Equal(w.Quantity) {
					t.Errorf("Reconstruct().Sales[%d] = %v, want %v", i, s, w)
				}
			}
		})
	}
}

func TestReconstruct_Oversell(t *testing.T) {
	txs := []Transaction{
		buy("AAPL", "2020-01-01", 100, "100"),
		sell("AAPL", "2020-01-10", 150),
	}

	if _, err := Reconstruct(txs, day("2020-01-15")); !errors.Is(err, ErrOversell) {
		t.Fatalf("Reconstruct() error = %v, want ErrOversell", err)
	}

	b, warnings, err := ReconstructWith(txs, day("2020-01-15"), OversellWarn)
	if err != nil {
		t.Fatalf("ReconstructWith(warn) error = %v", err)
	}
	if len(warnings) != 1 || !warnings[0].Excess.Equal(Q(50)) {
		t.Errorf("ReconstructWith(warn) warnings = %v, want one with excess 50", warnings)
	}
	if len(b.Lots) != 0 {
		t.Errorf("ReconstructWith(warn).Lots = %v, want none", b.Lots)
	}
}

func TestReconstruct_Malformed(t *testing.T) {
	testCases := []struct {
		name string
		tx   Transaction
	}{
		{"zero quantity", buy("AAPL", "2020-01-01", 0, "100")},
		{"negative cost", buy("AAPL", "2020-01-01", 1, "-1")},
		{"missing symbol", buy("", "2020-01-01", 1, "100")},
		{"unknown type", Transaction{Symbol: "AAPL", Type: "Short", OpenDate: day("2020-01-01"), Quantity: Q(1)}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Reconstruct([]Transaction{tc.tx}, day("2020-02-01")); !errors.Is(err, ErrMalformed) {
				t.Errorf("Reconstruct() error = %v, want ErrMalformed", err)
			}
		})
	}
}
