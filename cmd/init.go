package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/google/subcommands"
	"gopkg.in/yaml.v3"
)

// initCmd writes a default configuration file.
type initCmd struct {
	output string
	force  bool
}

func (*initCmd) Name() string     { return "init" }
func (*initCmd) Synopsis() string { return "write a default configuration file" }
func (*initCmd) Usage() string {
	return `ptrack init [-o <file>] [-f]

  Writes a commented configuration file with the default settings.
`
}

func (c *initCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "ptrack.yaml", "File to write.")
	f.BoolVar(&c.force, "f", false, "Overwrite an existing file.")
}

func (c *initCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if c.force {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	out, err := os.OpenFile(c.output, flags, 0o644)
	if errors.Is(err, fs.ErrExist) {
		fmt.Fprintf(os.Stderr, "Error: %s already exists, use -f to overwrite it\n", c.output)
		return subcommands.ExitFailure
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer out.Close()

	if err := WriteConfig(out, DefaultConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", c.output, err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(os.Stderr, "Wrote %s\n", c.output)
	return subcommands.ExitSuccess
}

// comments documents configuration keys, by yaml path.
var comments = map[string]string{
	"transactions":    "Transaction log: Symbol, Type (Buy or Sell), Open Date, Qty, Adj Cost per Share.",
	"benchmark":       "Ticker the portfolio is compared to.",
	"start":           "First day of the analysis window (YYYY-MM-DD).",
	"end":             "Last day of the analysis window, today when empty.",
	"calendar":        "Trading days: market (days the benchmark has a close) or weekday (Monday to Friday).",
	"holidays":        "Days the weekday calendar is closed.",
	"oversell":        "Sales exceeding open lots: fail, or warn and drop the excess.",
	"prices":          "Where closes come from.",
	"prices.source":   "yahoo or csv (Ticker, Date, Close).",
	"prices.cache":    "sqlite database caching closes, disabled when empty.",
	"prices.http":     "Folder caching Yahoo responses for the day, a temporary folder when empty.",
	"prices.adjusted": "Use closes adjusted for splits and dividends.",
	"output":          "Files written by ptrack run, skipped when empty.",
	"output.csv":      "Valuation of every lot on every day.",
	"output.series":   "Daily sums: portfolio vs benchmark gains, returns, and per symbol.",
	"output.prices":   "Closes used by the run, readable back with prices.source csv.",
	"output.charts":   "Folder of PNG charts.",
	"output.html":     "Summary as an HTML page.",
	"output.archive":  "sqlite database where runs are saved.",
}

// WriteConfig writes cfg as commented yaml.
func WriteConfig(w io.Writer, cfg *Config) error {
	var doc yaml.Node
	if err := doc.Encode(cfg); err != nil {
		return err
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	root.HeadComment = "# ptrack configuration. Every key can be overridden with a PTRACK_ environment variable,\n# e.g. PTRACK_PRICES_SOURCE for prices.source."
	comment(root, "")

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return err
	}
	return enc.Close()
}

// comment sets the comments of the keys of a mapping node, recursively.
func comment(n *yaml.Node, prefix string) {
	if n.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], n.Content[i+1]
		path := prefix + key.Value
		if c, ok := comments[path]; ok {
			key.HeadComment = "# " + c
		}
		comment(value, path+".")
	}
}
