package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/etnz/tracker/date"
)

// chart builds a v8 chart body for New York days at 9:30 local time.
func chart(days []date.Date, closes, adj []string) string {
	var stamps []string
	for _, d := range days {
		stamps = append(stamps, fmt.Sprint(d.Time().Add(13*time.Hour+30*time.Minute).Unix()))
	}
	return fmt.Sprintf(`{"chart":{"result":[{"meta":{"symbol":"AAPL","gmtoffset":-18000},"timestamp":[%s],`+
		`"indicators":{"quote":[{"close":[%s]}],"adjclose":[{"adjclose":[%s]}]}}],"error":null}}`,
		strings.Join(stamps, ","), strings.Join(closes, ","), strings.Join(adj, ","))
}

func testClient(hosts ...string) *Client {
	return &Client{HTTP: http.DefaultClient, Hosts: hosts, Backoffs: []time.Duration{time.Millisecond}, Adjusted: true}
}

func TestDaily(t *testing.T) {
	days := []date.Date{date.New(2020, 1, 2), date.New(2020, 1, 3), date.New(2020, 1, 6)}
	body := chart(days, []string{"300.35", "297.43", "299.8"}, []string{"75.09", "null", "74.95"})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v8/finance/chart/AAPL" {
			t.Errorf("path = %q, want /v8/finance/chart/AAPL", r.URL.Path)
		}
		if got := r.URL.Query().Get("interval"); got != "1d" {
			t.Errorf("interval = %q, want 1d", got)
		}
		fmt.Fprint(w, body)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	got, err := c.Daily(context.Background(), "AAPL", date.New(2020, 1, 1), date.New(2020, 1, 7))
	if err != nil {
		t.Fatalf("Daily() error = %v", err)
	}
	want := []struct {
		day   date.Date
		close string
	}{
		{date.New(2020, 1, 2), "75.09"},
		{date.New(2020, 1, 6), "74.95"},
	}
	if len(got) != len(want) {
		t.Fatalf("Daily() returned %d closes, want %d: %v", len(got), len(want), got)
	}
	for i, w := range want {
		if got[i].Ticker != "AAPL" || got[i].Date != w.day || got[i].Close.String() != w.close {
			t.Errorf("Daily()[%d] = %v %v %v, want AAPL %v %v", i, got[i].Ticker, got[i].Date, got[i].Close, w.day, w.close)
		}
	}

	c.Adjusted = false
	got, err = c.Daily(context.Background(), "AAPL", date.New(2020, 1, 3), date.New(2020, 1, 6))
	if err != nil {
		t.Fatalf("Daily() error = %v", err)
	}
	if len(got) != 1 || got[0].Date != date.New(2020, 1, 3) || got[0].Close.String() != "297.43" {
		t.Errorf("Daily(raw, 2020-01-03..2020-01-06) = %v, want one close 297.43 on 2020-01-03", got)
	}
}

func TestFailover(t *testing.T) {
	var limited atomic.Int32
	busy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limited.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, "Edge: Too Many Requests")
	}))
	defer busy.Close()
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chart([]date.Date{date.New(2020, 1, 2)}, []string{"300.35"}, []string{"75.09"}))
	}))
	defer ok.Close()

	got, err := testClient(busy.URL, ok.URL).Prices(context.Background(), []string{"AAPL"}, date.New(2020, 1, 1), date.New(2020, 1, 3))
	if err != nil {
		t.Fatalf("Prices() error = %v", err)
	}
	if len(got) != 1 {
		t.Errorf("Prices() returned %d closes, want 1", len(got))
	}
	if limited.Load() != 1 {
		t.Errorf("rate limited host called %d times, want 1", limited.Load())
	}

	_, err = testClient(busy.URL).Daily(context.Background(), "AAPL", date.New(2020, 1, 1), date.New(2020, 1, 3))
	if !errors.Is(err, ErrTooManyRequests) {
		t.Errorf("Daily() on a rate limited host error = %v, want ErrTooManyRequests", err)
	}
	// one first attempt plus one per backoff
	if limited.Load() != 3 {
		t.Errorf("rate limited host called %d times, want 3", limited.Load())
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"unknown symbol", http.StatusNotFound, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`, "symbol may be delisted"},
		{"html", http.StatusOK, `<html>consent</html>`, "non json body"},
		{"server error", http.StatusInternalServerError, `oops`, "500"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			_, err := testClient(srv.URL).Daily(context.Background(), "XXXX", date.New(2020, 1, 1), date.New(2020, 1, 3))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Daily() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := testClient(srv.URL)
	c.Backoffs = []time.Duration{time.Hour}
	if _, err := c.Daily(ctx, "AAPL", date.New(2020, 1, 1), date.New(2020, 1, 3)); !errors.Is(err, context.Canceled) {
		t.Errorf("Daily() with a canceled context error = %v, want context.Canceled", err)
	}
}
