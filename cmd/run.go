package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/tracker"
	"github.com/etnz/tracker/chart"
	"github.com/etnz/tracker/renderer"
	"github.com/etnz/tracker/store"
	"github.com/google/subcommands"
)

// runCmd values the transaction log over the window and writes the outputs.
type runCmd struct {
	transactions string
	benchmark    string
	start        string
	end          string
	oversell     string
	csv          string
	series       string
	prices       string
	charts       string
	html         string
	archive      string
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "value open lots against a benchmark over a window" }
func (*runCmd) Usage() string {
	return `ptrack run [-t <transactions.csv>] [-b <ticker>] [-s <start>] [-e <end>]

  Reconstructs the open lots at the start of the window, replays later sales
  day by day, and values every lot against the benchmark bought with the same
  money at the start of the window.

  Flags override the configuration file.

Usage Examples:
$ ptrack run -s 2024-01-01 -b SPY
$ ptrack run -s 2024-01-01 -e 2024-06-30 -charts charts -html report.html

`
}

func (c *runCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.transactions, "t", "", "Transaction log (CSV).")
	f.StringVar(&c.benchmark, "b", "", "Benchmark ticker.")
	f.StringVar(&c.start, "s", "", "First day of the window (YYYY-MM-DD).")
	f.StringVar(&c.end, "e", "", "Last day of the window (YYYY-MM-DD), defaults to today.")
	f.StringVar(&c.oversell, "oversell", "", "What to do with sales exceeding open lots: fail or warn.")
	f.StringVar(&c.csv, "csv", "", "Write the valuation of every lot on every day to this CSV file.")
	f.StringVar(&c.series, "series", "", "Write the daily aggregated series to this CSV file.")
	f.StringVar(&c.prices, "prices", "", "Write the closes of the tickers and the benchmark to this CSV file.")
	f.StringVar(&c.charts, "charts", "", "Write PNG charts into this directory.")
	f.StringVar(&c.html, "html", "", "Write the summary as an HTML page.")
	f.StringVar(&c.archive, "archive", "", "Save the run into this sqlite database.")
}

// override replaces the configuration with the flags that were set.
func (c *runCmd) override(cfg *Config) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.Transactions, c.transactions)
	set(&cfg.Benchmark, c.benchmark)
	set(&cfg.Start, c.start)
	set(&cfg.End, c.end)
	set(&cfg.Oversell, c.oversell)
	set(&cfg.Output.CSV, c.csv)
	set(&cfg.Output.Series, c.series)
	set(&cfg.Output.Prices, c.prices)
	set(&cfg.Output.Charts, c.charts)
	set(&cfg.Output.HTML, c.html)
	set(&cfg.Output.Archive, c.archive)
}

func (c *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	w, err := openWorkspace()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	defer w.Close()
	c.override(w.cfg)

	report, err := w.run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	for _, warning := range report.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", warning)
	}

	md := renderer.SummaryMarkdown(report)
	if err := writeOutputs(ctx, w.cfg.Output, report, md); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(md)
	return subcommands.ExitSuccess
}

// writeOutputs writes every configured output of report.
func writeOutputs(ctx context.Context, out OutputConfig, report *tracker.Report, md string) error {
	if out.CSV != "" {
		if err := writeFile(out.CSV, func(f *os.File) error { return tracker.EncodeValuations(f, report.Valuations) }); err != nil {
			return err
		}
	}
	if out.Series != "" {
		series := append([]*tracker.Series{report.Gains(), report.Returns()}, report.BySymbol()...)
		if err := writeFile(out.Series, func(f *os.File) error { return tracker.EncodeSeries(f, series...) }); err != nil {
			return err
		}
	}
	if out.Prices != "" {
		if err := writeFile(out.Prices, func(f *os.File) error { return tracker.EncodePrices(f, report.Closes()) }); err != nil {
			return err
		}
	}
	if out.Charts != "" {
		written, err := chart.WriteReport(out.Charts, report)
		if err != nil {
			return fmt.Errorf("writing charts: %w", err)
		}
		for _, path := range written {
			fmt.Fprintf(os.Stderr, "Wrote %s\n", path)
		}
	}
	if out.HTML != "" {
		page, err := renderer.HTML(fmt.Sprintf("Portfolio vs %s", report.Benchmark), md)
		if err != nil {
			return err
		}
		err = writeFile(out.HTML, func(f *os.File) error {
			_, err := f.WriteString(page)
			return err
		})
		if err != nil {
			return err
		}
	}
	if out.Archive != "" {
		db, err := store.Open(out.Archive)
		if err != nil {
			return err
		}
		defer db.Close()
		id, err := db.SaveRun(ctx, report)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved run %s into %s\n", id, out.Archive)
	}
	return nil
}

// writeFile creates path and writes it with write.
func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Wrote %s\n", path)
	return nil
}
