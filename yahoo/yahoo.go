// Package yahoo fetches daily closes from the Yahoo Finance chart API.
package yahoo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/tracker"
	"github.com/etnz/tracker/date"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultHosts are tried in order on every attempt.
var DefaultHosts = []string{"https://query1.finance.yahoo.com", "https://query2.finance.yahoo.com"}

// DefaultBackoffs are the pauses between attempts. One attempt is made per
// backoff, plus a first one.
var DefaultBackoffs = []time.Duration{200 * time.Millisecond, 500 * time.Millisecond, 1 * time.Second}

// ErrTooManyRequests is returned when every host kept rate limiting.
var ErrTooManyRequests = errors.New("yahoo: too many requests")

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15"

// Client is a tracker.PriceProvider backed by Yahoo Finance.
type Client struct {
	HTTP     *http.Client
	Hosts    []string
	Backoffs []time.Duration
	// Adjusted selects closes adjusted for splits and dividends.
	Adjusted bool
}

var _ tracker.PriceProvider = (*Client)(nil)

// New returns a client on the default hosts, with a daily disk cache in cacheDir.
func New(cacheDir string) *Client {
	return &Client{
		HTTP:     Daily(cacheDir),
		Hosts:    DefaultHosts,
		Backoffs: DefaultBackoffs,
		Adjusted: true,
	}
}

// Prices fetches the closes of every ticker in [start, end).
func (c *Client) Prices(ctx context.Context, tickers []string, start, end date.Date) ([]tracker.Close, error) {
	var rows []tracker.Close
	for _, ticker := range tickers {
		closes, err := c.Daily(ctx, ticker, start, end)
		if err != nil {
			return nil, err
		}
		rows = append(rows, closes...)
	}
	return rows, nil
}

// Daily fetches the daily closes of ticker in [start, end).
// Days where Yahoo has no close are absent.
func (c *Client) Daily(ctx context.Context, ticker string, start, end date.Date) ([]tracker.Close, error) {
	query := url.Values{}
	query.Set("period1", fmt.Sprint(start.Time().Unix()))
	query.Set("period2", fmt.Sprint(end.Time().Unix()))
	query.Set("interval", "1d")
	query.Set("events", "div,splits")
	path := "/v8/finance/chart/" + url.PathEscape(ticker) + "?" + query.Encode()

	body, err := c.get(ctx, ticker, path)
	if err != nil {
		return nil, fmt.Errorf("yahoo %s: %w", ticker, err)
	}
	closes, err := parseChart(ticker, body, c.Adjusted)
	if err != nil {
		return nil, fmt.Errorf("yahoo %s: %w", ticker, err)
	}

	// Yahoo is loose with period boundaries.
	kept := closes[:0]
	for _, cl := range closes {
		if !cl.Date.Before(start) && cl.Date.Before(end) {
			kept = append(kept, cl)
		}
	}
	logger.Debug("yahoo closes", zap.String("ticker", ticker), zap.Int("closes", len(kept)))
	return kept, nil
}

// get tries every host, then waits for the next backoff, until one returns a JSON body.
func (c *Client) get(ctx context.Context, ticker, path string) ([]byte, error) {
	hosts := c.Hosts
	if len(hosts) == 0 {
		hosts = DefaultHosts
	}
	var lastErr error
	for attempt := 0; attempt <= len(c.Backoffs); attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.Backoffs[attempt-1]):
			}
		}
		for _, host := range hosts {
			body, err := c.try(ctx, ticker, strings.TrimSuffix(host, "/")+path)
			if err == nil {
				return body, nil
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Debug("yahoo attempt failed", zap.String("host", host), zap.Int("attempt", attempt), zap.Error(err))
			lastErr = err
		}
	}
	return nil, lastErr
}

func (c *Client) try(ctx context.Context, ticker, addr string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json, text/javascript, */*; q=0.01")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Referer", fmt.Sprintf("https://finance.yahoo.com/quote/%s/chart", strings.ToUpper(ticker)))

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || bytes.HasPrefix(body, []byte("Edge: Too Many Requests")):
		return nil, fmt.Errorf("%w from %s", ErrTooManyRequests, req.URL.Host)
	case resp.StatusCode == http.StatusNotFound:
		// the chart API answers 404 with a JSON error for unknown symbols
		if msg := chartError(body); msg != "" {
			return nil, errors.New(msg)
		}
		return nil, fmt.Errorf("%s returned %s", req.URL.Host, resp.Status)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%s returned %s: %s", req.URL.Host, resp.Status, preview(body))
	case !json.Valid(body):
		return nil, fmt.Errorf("%s returned a non json body: %s", req.URL.Host, preview(body))
	}
	return body, nil
}

func preview(body []byte) string {
	if len(body) > 120 {
		body = body[:120]
	}
	return string(body)
}

// first unwraps jsonpath results, that can be a list of one answer or the answer itself.
func first(v any) any {
	if list, ok := v.([]any); ok && len(list) == 1 {
		if _, nested := list[0].([]any); nested {
			return list[0]
		}
	}
	return v
}

func chartError(body []byte) string {
	var jobj any
	if err := json.Unmarshal(body, &jobj); err != nil {
		return ""
	}
	v, err := jsonpath.Get("$.chart.error.description", jobj)
	if err != nil {
		return ""
	}
	msg, _ := first(v).(string)
	return msg
}

// parseChart extracts the daily closes of a v8 chart response.
// Timestamps are converted to exchange days using the exchange GMT offset.
func parseChart(ticker string, body []byte, adjusted bool) ([]tracker.Close, error) {
	var jobj any
	if err := json.Unmarshal(body, &jobj); err != nil {
		return nil, fmt.Errorf("parsing chart: %w", err)
	}
	if msg := chartError(body); msg != "" {
		return nil, errors.New(msg)
	}

	stamps, err := jsonpath.Get("$.chart.result[0].timestamp", jobj)
	if err != nil {
		// a range without any trading day has no timestamp
		return nil, nil
	}
	timestamps, ok := first(stamps).([]any)
	if !ok {
		return nil, fmt.Errorf("unexpected timestamps %T", stamps)
	}

	path := "$.chart.result[0].indicators.quote[0].close"
	if adjusted {
		path = "$.chart.result[0].indicators.adjclose[0].adjclose"
	}
	values, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, fmt.Errorf("parsing %q: %w", path, err)
	}
	closes, ok := first(values).([]any)
	if !ok || len(closes) != len(timestamps) {
		return nil, fmt.Errorf("parsing %q: got %d values for %d timestamps", path, len(closes), len(timestamps))
	}

	offset := 0.0
	if v, err := jsonpath.Get("$.chart.result[0].meta.gmtoffset", jobj); err == nil {
		offset, _ = first(v).(float64)
	}
	zone := time.FixedZone(ticker, int(offset))

	rows := make([]tracker.Close, 0, len(timestamps))
	for i, ts := range timestamps {
		sec, ok := ts.(float64)
		if !ok {
			continue
		}
		px, ok := closes[i].(float64)
		if !ok {
			continue // null close, no data on that day
		}
		rows = append(rows, tracker.Close{
			Ticker: ticker,
			Date:   date.FromTime(time.Unix(int64(sec), 0).In(zone)),
			Close:  decimal.NewFromFloat(px),
		})
	}
	return rows, nil
}
