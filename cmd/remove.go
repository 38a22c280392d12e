package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type removeCmd struct{}

func (*removeCmd) Name() string     { return "remove" }
func (*removeCmd) Synopsis() string { return "stop tracking tokens" }
func (*removeCmd) Usage() string {
	return `folio remove <id>...

  Removes tokens from the watchlist, holdings included. Unknown identifiers
  are ignored.
`
}

func (c *removeCmd) SetFlags(f *flag.FlagSet) {}

func (c *removeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one token identifier is required")
		return subcommands.ExitUsageError
	}

	w, closeStore, err := OpenWatchlist(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading watchlist: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeStore()

	for _, id := range f.Args() {
		if err := w.Remove(ctx, id); err != nil {
			fmt.Fprintf(os.Stderr, "Error removing %q: %v\n", id, err)
			return subcommands.ExitFailure
		}
	}
	fmt.Fprintf(stdout, "%d tokens tracked\n", w.Len())
	return subcommands.ExitSuccess
}
