package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/etnz/tracker"
	"github.com/etnz/tracker/store"
	"github.com/etnz/tracker/yahoo"
)

// workspace holds what subcommands share: the configuration and the opened price cache.
type workspace struct {
	cfg *Config
	db  *store.DB // nil without a price cache
}

// openWorkspace loads the configuration from the global -config flag.
func openWorkspace() (*workspace, error) {
	cfg, err := LoadConfig(*configFile)
	if err != nil {
		return nil, err
	}
	return &workspace{cfg: cfg}, nil
}

// Close closes the price cache, if opened.
func (w *workspace) Close() error {
	if w.db == nil {
		return nil
	}
	return w.db.Close()
}

// transactions decodes the configured transaction log.
func (w *workspace) transactions() ([]tracker.Transaction, error) {
	f, err := os.Open(w.cfg.Transactions)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	txs, err := tracker.DecodeTransactions(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", w.cfg.Transactions, err)
	}
	return txs, nil
}

// prices returns the configured price provider, behind the sqlite cache when configured.
func (w *workspace) prices() (tracker.PriceProvider, error) {
	var provider tracker.PriceProvider
	switch w.cfg.Prices.Source {
	case "yahoo":
		client := yahoo.New(w.cfg.Prices.HTTP)
		client.Adjusted = w.cfg.Prices.Adjusted
		provider = client
	case "csv":
		f, err := os.Open(w.cfg.Prices.CSV)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		closes, err := tracker.DecodePrices(f)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", w.cfg.Prices.CSV, err)
		}
		// a local file needs no cache
		return tracker.StaticPrices(closes), nil
	default:
		return nil, fmt.Errorf("unknown price source %q, want yahoo or csv", w.cfg.Prices.Source)
	}

	if w.cfg.Prices.Cache == "" {
		return provider, nil
	}
	if w.db == nil {
		db, err := store.Open(w.cfg.Prices.Cache)
		if err != nil {
			return nil, err
		}
		w.db = db
	}
	return store.NewCache(w.db, provider), nil
}

// calendar returns the configured trading calendar.
func (w *workspace) calendar(prices tracker.PriceProvider) (tracker.Calendar, error) {
	switch w.cfg.Calendar {
	case "market":
		return &tracker.MarketCalendar{Prices: prices, Ticker: w.cfg.Benchmark}, nil
	case "weekday":
		holidays, err := w.cfg.holidays()
		if err != nil {
			return nil, err
		}
		return tracker.NewWeekdayCalendar(holidays...), nil
	default:
		return nil, fmt.Errorf("unknown calendar %q, want market or weekday", w.cfg.Calendar)
	}
}

// pipeline assembles the configured pipeline.
func (w *workspace) pipeline() (*tracker.Pipeline, error) {
	window, err := w.cfg.Window()
	if err != nil {
		return nil, err
	}
	policy, err := tracker.ParseOversellPolicy(w.cfg.Oversell)
	if err != nil {
		return nil, err
	}
	prices, err := w.prices()
	if err != nil {
		return nil, err
	}
	calendar, err := w.calendar(prices)
	if err != nil {
		return nil, err
	}
	return &tracker.Pipeline{
		Prices:    prices,
		Calendar:  calendar,
		Benchmark: w.cfg.Benchmark,
		Window:    window,
		Oversell:  policy,
	}, nil
}

// run values the configured transaction log.
func (w *workspace) run(ctx context.Context) (*tracker.Report, error) {
	txs, err := w.transactions()
	if err != nil {
		return nil, err
	}
	p, err := w.pipeline()
	if err != nil {
		return nil, err
	}
	return p.Run(ctx, txs)
}
