package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type addCmd struct{}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "track tokens by catalog identifier" }
func (*addCmd) Usage() string {
	return `folio add <id>...

  Adds tokens to the watchlist, with their current market data. Identifiers
  are catalog identifiers such as "bitcoin" or "ethereum". Tokens already
  tracked are left untouched.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {}

func (c *addCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ids := f.Args()
	if len(ids) == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one token identifier is required")
		return subcommands.ExitUsageError
	}

	w, closeStore, err := OpenWatchlist(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading watchlist: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeStore()

	tokens, err := newClient().Coins(ctx, ids...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error fetching tokens: %v\n", err)
		return subcommands.ExitFailure
	}

	found := make(map[string]bool)
	for _, t := range tokens {
		found[t.ID] = true
	}
	status := subcommands.ExitSuccess
	for _, id := range ids {
		if !found[id] {
			fmt.Fprintf(os.Stderr, "Error: unknown token %q\n", id)
			status = subcommands.ExitFailure
		}
	}

	if err := w.Add(ctx, tokens...); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving watchlist: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "%d tokens tracked\n", w.Len())
	return status
}
