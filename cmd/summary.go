package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/cryptofolio/renderer"
	"github.com/google/subcommands"
)

// summaryCmd holds the flags for the 'summary' subcommand.
type summaryCmd struct {
	update bool
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display the portfolio value and allocation" }
func (*summaryCmd) Usage() string {
	return `folio summary [-u]

  Displays the total value of the held tokens and the share of each one.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.update, "u", false, "Refresh prices before computing the summary.")
}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	w, closeStore, err := OpenWatchlist(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading watchlist: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeStore()

	if c.update {
		if _, err := refresh(ctx, newClient(), w); err != nil {
			fmt.Fprintf(os.Stderr, "Error refreshing prices: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	printMarkdown(renderer.SummaryMarkdown(w.Snapshot(*currency)))
	return subcommands.ExitSuccess
}
