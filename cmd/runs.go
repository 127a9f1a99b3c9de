package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/tracker"
	"github.com/etnz/tracker/store"
	"github.com/google/subcommands"
)

// runsCmd lists archived runs, or the daily series of one of them.
type runsCmd struct {
	archive string
	id      string
	metric  string
}

func (*runsCmd) Name() string     { return "runs" }
func (*runsCmd) Synopsis() string { return "list archived runs" }
func (*runsCmd) Usage() string {
	return `ptrack runs [-archive <db>] [-id <run> [-m <metric>]]

  Lists the runs saved with "ptrack run -archive". With -id, displays the
  daily sum of a metric over all lots of that run.
`
}

func (c *runsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.archive, "archive", "", "sqlite database of saved runs. Overrides the configuration file.")
	f.StringVar(&c.id, "id", "", "Run to display.")
	f.StringVar(&c.metric, "m", string(tracker.MetricStockGain), "Metric to sum per day.")
}

func (c *runsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	w, err := openWorkspace()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	defer w.Close()
	if c.archive != "" {
		w.cfg.Output.Archive = c.archive
	}
	if w.cfg.Output.Archive == "" {
		fmt.Fprintln(os.Stderr, "Error: no archive configured, use -archive")
		return subcommands.ExitUsageError
	}

	db, err := store.Open(w.cfg.Output.Archive)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer db.Close()

	var md string
	if c.id == "" {
		md, err = runsMarkdown(ctx, db)
	} else {
		md, err = seriesMarkdown(ctx, db, c.id, tracker.Metric(c.metric))
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(md)
	return subcommands.ExitSuccess
}

func runsMarkdown(ctx context.Context, db *store.DB) (string, error) {
	runs, err := db.Runs(ctx)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprint(&b, "# Archived Runs\n\n")
	fmt.Fprintln(&b, "| Run | Created | Window | Benchmark | Elapsed |")
	fmt.Fprintln(&b, "|:---|:---|:---|:---|---:|")
	for _, r := range runs {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n", r.ID, r.Created.Format("2006-01-02 15:04"), r.Window, r.Benchmark, r.Elapsed)
	}
	return b.String(), nil
}

func seriesMarkdown(ctx context.Context, db *store.DB, id string, metric tracker.Metric) (string, error) {
	days, values, err := db.Series(ctx, id, metric)
	if err != nil {
		return "", err
	}
	if len(days) == 0 {
		return "", fmt.Errorf("no %q value in run %s", metric, id)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# %s of run %s\n\n", metric, id)
	fmt.Fprintf(&b, "| Date | %s |\n", metric)
	fmt.Fprintln(&b, "|:---|---:|")
	for i, d := range days {
		v := "n/a"
		if values[i].Valid {
			v = values[i].Decimal.StringFixed(2)
		}
		fmt.Fprintf(&b, "| %s | %s |\n", d, v)
	}
	return b.String(), nil
}
