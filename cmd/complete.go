package cmd

import (
	"flag"

	"github.com/etnz/tracker"
	"github.com/etnz/tracker/docs"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// predictors of flag values, by flag name. Others take anything.
var predictors = map[string]complete.Predictor{
	"config":   predict.Files("*.yaml"),
	"t":        predict.Files("*.csv"),
	"csv":      predict.Files("*.csv"),
	"series":   predict.Files("*.csv"),
	"prices":   predict.Files("*.csv"),
	"html":     predict.Files("*.html"),
	"archive":  predict.Files("*.db"),
	"charts":   predict.Dirs("*"),
	"o":        predict.Files("*.yaml"),
	"oversell": predict.Set{tracker.OversellFail.String(), tracker.OversellWarn.String()},
	"m":        metricNames(),
}

func metricNames() predict.Set {
	names := make(predict.Set, len(tracker.Metrics))
	for i, m := range tracker.Metrics {
		names[i] = string(m)
	}
	return names
}

// flagPredictors predicts the values of every flag of fs.
func flagPredictors(fs *flag.FlagSet) map[string]complete.Predictor {
	flags := make(map[string]complete.Predictor)
	fs.VisitAll(func(f *flag.Flag) {
		if b, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
			flags[f.Name] = predict.Nothing
			return
		}
		if p, ok := predictors[f.Name]; ok {
			flags[f.Name] = p
			return
		}
		flags[f.Name] = predict.Something
	})
	return flags
}

// Completion describes the command line for shell completion.
func Completion() *complete.Command {
	c := &complete.Command{
		Sub:   make(map[string]*complete.Command),
		Flags: flagPredictors(flag.CommandLine),
	}
	for _, cmd := range Commands {
		fs := flag.NewFlagSet(cmd.Cmd.Name(), flag.ContinueOnError)
		cmd.Cmd.SetFlags(fs)
		c.Sub[cmd.Cmd.Name()] = &complete.Command{Flags: flagPredictors(fs)}
	}
	if topics, err := docs.Topics(); err == nil {
		c.Sub["topic"].Args = predict.Set(topics)
	}
	return c
}
