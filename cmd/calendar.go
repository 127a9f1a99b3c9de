package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/tracker"
	"github.com/etnz/tracker/renderer"
	"github.com/google/subcommands"
)

// calendarCmd prints the trading days of the window.
type calendarCmd struct {
	start string
	end   string
}

func (*calendarCmd) Name() string     { return "calendar" }
func (*calendarCmd) Synopsis() string { return "display the trading days of the window" }
func (*calendarCmd) Usage() string {
	return `ptrack calendar [-s <start>] [-e <end>]

  Displays the trading days of the configured calendar between start and end,
  both included.
`
}

func (c *calendarCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.start, "s", "", "First day (YYYY-MM-DD). Overrides the configuration file.")
	f.StringVar(&c.end, "e", "", "Last day (YYYY-MM-DD). Overrides the configuration file.")
}

func (c *calendarCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	w, err := openWorkspace()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	defer w.Close()
	if c.start != "" {
		w.cfg.Start = c.start
	}
	if c.end != "" {
		w.cfg.End = c.end
	}

	window, err := w.cfg.Window()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	prices, err := w.prices()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	calendar, err := w.calendar(prices)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	days, err := calendar.Days(ctx, window.From, window.To.Add(1))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := tracker.CheckCalendar(days); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.CalendarMarkdown(window, days))
	return subcommands.ExitSuccess
}
