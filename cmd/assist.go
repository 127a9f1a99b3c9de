package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/tracker/agent"
	"github.com/google/subcommands"
	"google.golang.org/genai"
)

// assistCmd is the subcommand for the AI assistant.
type assistCmd struct {
	start string
	end   string
}

func (*assistCmd) Name() string     { return "assist" }
func (*assistCmd) Synopsis() string { return "discuss the valuation with an AI assistant" }
func (*assistCmd) Usage() string {
	return `ptrack assist [-s <start>] [-e <end>] [question...]

  Values the portfolio like "ptrack run", then starts an interactive session
  with a Gemini assistant that can read the report and search the news.
  Requires GEMINI_API_KEY, possibly set in a .env file.
`
}

func (c *assistCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.start, "s", "", "First day of the window. Overrides the configuration file.")
	f.StringVar(&c.end, "e", "", "Last day of the window. Overrides the configuration file.")
}

func (c *assistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	report, err := w.run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}

	session := agent.New(os.Stdout, os.Stdin, agent.NewAnalyst(report), agent.NewResearcher())
	session.Render = renderMarkdown
	var prompts []string
	if f.NArg() > 0 {
		prompts = append(prompts, strings.Join(f.Args(), " "))
	}
	if err := session.Run(ctx, client, prompts...); err != nil {
		fmt.Fprintln(os.Stderr, "Assistant failed:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
