// Package cmd implements the ptrack command line: valuing a transaction log against a benchmark.
package cmd

import (
	"flag"

	"github.com/google/subcommands"
)

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	configFile = flag.String("config", "", "Path to the configuration file. Defaults to ptrack.yaml in the current directory.")
	// Verbose switches logs to debug level.
	Verbose   = flag.Bool("v", false, "Log debug messages on stderr.")
	traceRuns = flag.Bool("trace", false, "Print OpenTelemetry spans on stderr.")
)

// Commands lists every subcommand, with its group.
var Commands = []struct {
	Cmd   subcommands.Command
	Group string
}{
	{&runCmd{}, "valuation"},
	{&positionsCmd{}, "valuation"},
	{&calendarCmd{}, "valuation"},
	{&runsCmd{}, "valuation"},
	{&assistCmd{}, "valuation"},
	{&initCmd{}, "configuration"},
	{&topicCmd{}, "help"},
}

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for _, cmd := range Commands {
		c.Register(cmd.Cmd, cmd.Group)
	}
}
