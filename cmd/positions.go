package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/tracker"
	"github.com/etnz/tracker/date"
	"github.com/etnz/tracker/renderer"
	"github.com/google/subcommands"
)

// positionsCmd prints the lots open on a day.
type positionsCmd struct {
	date         string
	transactions string
}

func (*positionsCmd) Name() string     { return "positions" }
func (*positionsCmd) Synopsis() string { return "display the lots open on a day" }
func (*positionsCmd) Usage() string {
	return `ptrack positions [-d <date>] [-t <transactions.csv>]

  Displays the lots still open on a day, in FIFO order, after matching every
  sale dated on or before that day.
`
}

func (c *positionsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", date.Today().String(), "Day of the positions (YYYY-MM-DD).")
	f.StringVar(&c.transactions, "t", "", "Transaction log (CSV). Overrides the configuration file.")
}

func (c *positionsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := date.Parse(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	w, err := openWorkspace()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	defer w.Close()
	if c.transactions != "" {
		w.cfg.Transactions = c.transactions
	}
	policy, err := tracker.ParseOversellPolicy(w.cfg.Oversell)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	txs, err := w.transactions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	balance, warnings, err := tracker.ReconstructWith(txs, on, policy)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	for _, warning := range warnings {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", warning)
	}
	printMarkdown(renderer.PositionsMarkdown(tracker.Snapshot{On: on, Lots: balance.Open()}))
	return subcommands.ExitSuccess
}
