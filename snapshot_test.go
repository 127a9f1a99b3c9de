package tracker

import (
	"context"
	"errors"
	"testing"

	"github.com/etnz/tracker/date"
)

func weekdays(t *testing.T, from, to string) []date.Date {
	t.Helper()
	days, err := NewWeekdayCalendar().Days(context.Background(), day(from), day(to).Add(1))
	if err != nil {
		t.Fatalf("WeekdayCalendar.Days() error = %v", err)
	}
	return days
}

func TestGenerate_AAPL(t *testing.T) {
	b, err := Reconstruct(aaplLog, day("2020-01-15"))
	if err != nil {
		t.Fatalf("Reconstruct() error = %v", err)
	}
	calendar := weekdays(t, "2020-01-15", "2020-03-31")

	snapshots, err := Generate(b, calendar)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(snapshots) != len(calendar) {
		t.Fatalf("Generate() returned %d snapshots, want %d", len(snapshots), len(calendar))
	}

	byDay := make(map[date.Date]Snapshot)
	for i, s := range snapshots {
		if s.On != calendar[i] {
			t.Errorf("snapshot[%d].On = %v, want %v", i, s.On, calendar[i])
		}
		byDay[s.On] = s
	}

	testCases := []struct {
		on   string
		want []Lot
	}{
		{"2020-01-15", []Lot{lot("AAPL", "2020-01-01", 10, "100")}},
		{"2020-01-31", []Lot{lot("AAPL", "2020-01-01", 10, "100")}},
		{"2020-02-03", []Lot{lot("AAPL", "2020-01-01", 10, "100"), lot("AAPL", "2020-02-01", 5, "110")}},
		{"2020-02-28", []Lot{lot("AAPL", "2020-01-01", 10, "100"), lot("AAPL", "2020-02-01", 5, "110")}},
		// the sell of Sunday 2020-03-01 is applied on Monday
		{"2020-03-02", []Lot{lot("AAPL", "2020-02-01", 3, "110")}},
		{"2020-03-31", []Lot{lot("AAPL", "2020-02-01", 3, "110")}},
	}
	for _, tc := range testCases {
		s, ok := byDay[day(tc.on)]
		if !ok {
			t.Errorf("no snapshot on %s", tc.on)
			continue
		}
		if diff := lotDiff(tc.want, s.Lots); diff != "" {
			t.Errorf("snapshot on %s mismatch (-want +got):\n%s", tc.on, diff)
		}
	}

	// the balance is left untouched
	if len(b.Lots) != 2 || !b.Lots[0].Quantity.Equal(Q(10)) {
		t.Errorf("Generate() modified the balance: %v", b.Lots)
	}
}

func TestGenerate_Conservation(t *testing.T) {
	txs := []Transaction{
		buy("AAPL", "2020-01-02", 10, "300"),
		buy("MSFT", "2020-01-03", 20, "160"),
		sell("AAPL", "2020-01-06", 4),
		buy("AAPL", "2020-01-08", 6, "305"),
		sell("MSFT", "2020-01-11", 5), // Saturday
		sell("AAPL", "2020-01-14", 8),
		buy("MSFT", "2020-01-14", 1, "162"),
		sell("MSFT", "2020-01-20", 16),
		sell("AAPL", "2020-01-24", 4),
	}
	start := "2020-01-07"
	b, err := Reconstruct(txs, day(start))
	if err != nil {
		t.Fatalf("Reconstruct() error = %v", err)
	}
	calendar := weekdays(t, start, "2020-01-31")
	snapshots, err := Generate(b, calendar)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	for _, s := range snapshots {
		for _, symbol := range []string{"AAPL", "MSFT"} {
			var want Quantity
			for _, tx := range txs {
				if tx.Symbol != symbol || tx.OpenDate.After(s.On) {
					continue
				}
				if tx.Type == Buy {
					want = want.Add(tx.Quantity)
				} else {
					want = want.Sub(tx.Quantity)
				}
			}
			if got := s.Position(symbol); !got.Equal(want) {
				t.Errorf("Position(%s) on %s = %v, want %v", symbol, s.On, got, want)
			}
		}
		for _, l := range s.Lots {
			if !l.Quantity.IsPositive() || l.OpenDate.After(s.On) {
				t.Errorf("snapshot on %s holds %v", s.On, l)
			}
		}
	}
}

func TestGenerate_EmptyDays(t *testing.T) {
	b, err := Reconstruct([]Transaction{buy("AAPL", "2020-01-10", 1, "100")}, day("2020-01-06"))
	if err != nil {
		t.Fatalf("Reconstruct() error = %v", err)
	}
	snapshots, err := Generate(b, weekdays(t, "2020-01-06", "2020-01-10"))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(snapshots) != 5 {
		t.Fatalf("Generate() returned %d snapshots, want 5", len(snapshots))
	}
	for _, s := range snapshots[:4] {
		if len(s.Lots) != 0 {
			t.Errorf("snapshot on %s = %v, want empty", s.On, s.Lots)
		}
	}
	if got := snapshots[4].Position("AAPL"); !got.Equal(Q(1)) {
		t.Errorf("Position(AAPL) on %s = %v, want 1", snapshots[4].On, got)
	}
}

func TestGenerate_Errors(t *testing.T) {
	b, err := Reconstruct([]Transaction{
		buy("AAPL", "2020-01-02", 10, "100"),
		sell("AAPL", "2020-01-08", 15),
	}, day("2020-01-06"))
	if err != nil {
		t.Fatalf("Reconstruct() error = %v", err)
	}

	if _, err := Generate(b, []date.Date{day("2020-01-07"), day("2020-01-06")}); !errors.Is(err, ErrCalendar) {
		t.Errorf("Generate(decreasing calendar) error = %v, want ErrCalendar", err)
	}
	if _, err := Generate(b, []date.Date{day("2020-01-07"), day("2020-01-07")}); !errors.Is(err, ErrCalendar) {
		t.Errorf("Generate(duplicate day) error = %v, want ErrCalendar", err)
	}

	calendar := weekdays(t, "2020-01-06", "2020-01-10")
	if _, err := Generate(b, calendar); !errors.Is(err, ErrOversell) {
		t.Errorf("Generate() error = %v, want ErrOversell", err)
	}

	snapshots, warnings, err := GenerateWith(b, calendar, OversellWarn)
	if err != nil {
		t.Fatalf("GenerateWith(warn) error = %v", err)
	}
	if len(warnings) != 1 || !warnings[0].Excess.Equal(Q(5)) || warnings[0].Date != day("2020-01-08") {
		t.Errorf("GenerateWith(warn) warnings = %v, want excess 5 on 2020-01-08", warnings)
	}
	if len(snapshots) != len(calendar) || len(snapshots[len(snapshots)-1].Lots) != 0 {
		t.Errorf("GenerateWith(warn) = %v, want %d snapshots ending empty", snapshots, len(calendar))
	}
}
