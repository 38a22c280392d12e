package cmd

import (
	"context"
	"flag"

	"github.com/etnz/cryptofolio/docs"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// argPredictors completes the positional arguments of some commands.
var argPredictors = map[string]complete.Predictor{
	"remove": complete.PredictFunc(predictTrackedIDs),
	"hold":   complete.PredictFunc(predictTrackedIDs),
	"topic":  complete.PredictFunc(predictTopics),
}

// flagPredictors completes flag values by flag name.
var flagPredictors = map[string]complete.Predictor{
	"store":    predict.Dirs("*"),
	"currency": predict.Set{"usd", "eur", "gbp", "jpy", "chf", "btc", "eth"},
}

// Completion returns the shell completion of the commander's commands and
// flags.
func Completion(c *subcommands.Commander) *complete.Command {
	root := &complete.Command{
		Sub:   map[string]*complete.Command{},
		Flags: flagsOf(c.VisitAll),
	}
	c.VisitCommands(func(_ *subcommands.CommandGroup, cmd subcommands.Command) {
		fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
		cmd.SetFlags(fs)
		sub := &complete.Command{Flags: flagsOf(fs.VisitAll)}
		if p, ok := argPredictors[cmd.Name()]; ok {
			sub.Args = p
		}
		root.Sub[cmd.Name()] = sub
	})
	return root
}

// flagsOf returns the predictors of the flags visited by visit.
func flagsOf(visit func(func(*flag.Flag))) map[string]complete.Predictor {
	flags := map[string]complete.Predictor{}
	visit(func(f *flag.Flag) {
		switch {
		case flagPredictors[f.Name] != nil:
			flags[f.Name] = flagPredictors[f.Name]
		case isBool(f):
			flags[f.Name] = predict.Nothing
		default:
			flags[f.Name] = predict.Something
		}
	})
	return flags
}

func isBool(f *flag.Flag) bool {
	b, ok := f.Value.(interface{ IsBoolFlag() bool })
	return ok && b.IsBoolFlag()
}

// predictTrackedIDs returns the identifiers in the watchlist.
func predictTrackedIDs(prefix string) []string {
	w, closeStore, err := OpenWatchlist(context.Background())
	if err != nil {
		return nil
	}
	defer closeStore()
	var ids []string
	for _, t := range w.Tokens() {
		ids = append(ids, t.ID)
	}
	return ids
}

func predictTopics(prefix string) []string {
	topics, err := docs.Topics()
	if err != nil {
		return nil
	}
	names := []string{"*"}
	for _, t := range topics {
		names = append(names, t.Name)
	}
	return names
}
