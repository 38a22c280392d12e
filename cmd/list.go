package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/cryptofolio"
	"github.com/etnz/cryptofolio/renderer"
	"github.com/google/subcommands"
)

// listCmd holds the flags for the 'list' subcommand.
type listCmd struct {
	page int
	size int
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "display the watchlist, one page at a time" }
func (*listCmd) Usage() string {
	return `folio list [-p <page>] [-n <size>]

  Displays the tracked tokens with their last refreshed price, 24h change,
  7 days sparkline, holdings and value.
`
}

func (c *listCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.page, "p", 1, "Page to display. Out of range pages are clamped.")
	f.IntVar(&c.size, "n", cryptofolio.DefaultWatchlistPageSize, "Number of tokens per page.")
}

func (c *listCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	w, closeStore, err := OpenWatchlist(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading watchlist: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeStore()

	page := cryptofolio.NewPager(w, c.size).Goto(c.page)
	printMarkdown(renderer.WatchlistMarkdown(page, *currency))
	return subcommands.ExitSuccess
}
