package agent

import (
	"context"
	"fmt"
	"slices"

	"github.com/etnz/tracker"
	"github.com/etnz/tracker/date"
	"github.com/etnz/tracker/docs"
	"github.com/etnz/tracker/renderer"
	"google.golang.org/genai"
)

// Model used by every expert.
var Model = "gemini-2.5-pro"

func instruction(text string) *genai.Content {
	return &genai.Content{Parts: []*genai.Part{{Text: text}}}
}

// NewFacilitator returns the expert talking to the user, that delegates to experts.
func NewFacilitator(experts ...*Expert) *Expert {
	return &Expert{
		Name:  "Facilitator",
		Model: Model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{{FunctionDeclarations: Declarations(experts)}},
			SystemInstruction: instruction(`
			You are in charge of the conversation and of answering the user's request.
			The experts available as tools are dedicated to you and remember your previous questions.

			The user holds a portfolio of stocks and compares it to a benchmark index:
			every lot is valued as if the same money had been invested in the benchmark instead.
			Devise a plan of questions to ask the experts, then answer in markdown.`),
		},
		Tools: NewToolbox(experts),
	}
}

// NewResearcher returns an expert grounded on Google Search, for news about tickers.
func NewResearcher() *Expert {
	return &Expert{
		Name: "Researcher",
		Description: `Knows financial markets, companies and funds, and searches the latest news.
		Ask the Researcher for recent or grounding information about a ticker or the benchmark.`,
		Model: Model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
			SystemInstruction: instruction(`
			You are an equity researcher. Use Google Search to ground your assertions.
			Relate the news you find to the question asked.`),
		},
	}
}

// NewAnalyst returns an expert reading r.
func NewAnalyst(r *tracker.Report) *Expert {
	tools := ReportTools(r)
	return &Expert{
		Name: "Analyst",
		Description: fmt.Sprintf(`Reads the valuation of the user's portfolio against %s from %s to %s.
		Ask the Analyst about open lots, costs, gains and returns compared to the benchmark.`,
			r.Benchmark, r.Window.From, r.Window.To),
		Model: Model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{{FunctionDeclarations: Declarations(tools)}},
			SystemInstruction: instruction(`
			You are a portfolio analyst. Use the tools to read the valuation report,
			never guess a figure. Gains are in the portfolio currency, returns are ratios.`),
		},
		Tools: NewToolbox(tools),
	}
}

// ReportTools are the functions the analyst can call on r.
func ReportTools(r *tracker.Report) []*Func {
	return []*Func{
		{
			Decl: &genai.FunctionDeclaration{
				Name:        "Summary",
				Description: "Summary of the portfolio on the last trading day: cost, value, gains and returns per symbol, against the benchmark.",
				Response:    &genai.Schema{Type: genai.TypeString, Description: "A markdown report."},
			},
			Func: func(context.Context, map[string]any) (string, error) {
				return renderer.SummaryMarkdown(r), nil
			},
		},
		{
			Decl: &genai.FunctionDeclaration{
				Name:        "Positions",
				Description: "Open lots on a trading day of the window, in FIFO order.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"date": {Type: genai.TypeString, Description: "Day formatted as YYYY-MM-DD. Defaults to the last trading day."},
					},
				},
				Response: &genai.Schema{Type: genai.TypeString, Description: "A markdown table of open lots."},
			},
			Func: func(_ context.Context, args map[string]any) (string, error) {
				s, err := snapshotOn(r, args)
				if err != nil {
					return "", err
				}
				return renderer.PositionsMarkdown(s), nil
			},
		},
		{
			Decl: &genai.FunctionDeclaration{
				Name:        "TradingDays",
				Description: "Trading days of the analysis window.",
				Response:    &genai.Schema{Type: genai.TypeString, Description: "A markdown list of days."},
			},
			Func: func(context.Context, map[string]any) (string, error) {
				return renderer.CalendarMarkdown(r.Window, r.Calendar), nil
			},
		},
		{
			Decl: &genai.FunctionDeclaration{
				Name:        "Documentation",
				Description: "The user manual: how lots are matched and what each metric means.\n" + docs.Index(),
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"topic": {Type: genai.TypeString, Description: "Topic to read, or '*' for every topic."},
					},
					Required: []string{"topic"},
				},
				Response: &genai.Schema{Type: genai.TypeString, Description: "The topic, in markdown."},
			},
			Func: func(_ context.Context, args map[string]any) (string, error) {
				topic, ok := args["topic"].(string)
				if !ok {
					return "", fmt.Errorf("argument 'topic' must be a string, got %T", args["topic"])
				}
				return docs.GetTopic(topic)
			},
		},
	}
}

// snapshotOn returns the snapshot of the last trading day on or before args["date"].
func snapshotOn(r *tracker.Report, args map[string]any) (tracker.Snapshot, error) {
	if len(r.Snapshots) == 0 {
		return tracker.Snapshot{}, fmt.Errorf("no trading day between %s and %s", r.Window.From, r.Window.To)
	}
	last := r.Snapshots[len(r.Snapshots)-1]
	arg, ok := args["date"]
	if !ok {
		return last, nil
	}
	s, ok := arg.(string)
	if !ok {
		return tracker.Snapshot{}, fmt.Errorf("argument 'date' must be a string, got %T", arg)
	}
	on, err := date.Parse(s)
	if err != nil {
		return tracker.Snapshot{}, fmt.Errorf("argument 'date' must be formatted as YYYY-MM-DD, got %q", s)
	}
	i, found := slices.BinarySearchFunc(r.Snapshots, on, func(s tracker.Snapshot, d date.Date) int { return s.On.Compare(d) })
	if !found {
		i--
	}
	if i < 0 {
		return tracker.Snapshot{}, fmt.Errorf("%s is before the first trading day %s", on, r.Snapshots[0].On)
	}
	return r.Snapshots[i], nil
}
