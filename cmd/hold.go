package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/cryptofolio"
	"github.com/google/subcommands"
)

type holdCmd struct{}

func (*holdCmd) Name() string     { return "hold" }
func (*holdCmd) Synopsis() string { return "set the quantity held of a token" }
func (*holdCmd) Usage() string {
	return `folio hold <id> <quantity>

  Sets the holdings of a tracked token. The quantity is a non negative
  decimal number, fractions allowed.
`
}

func (c *holdCmd) SetFlags(f *flag.FlagSet) {}

func (c *holdCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "Error: expecting a token identifier and a quantity")
		return subcommands.ExitUsageError
	}
	id := f.Arg(0)
	q, err := cryptofolio.ParseHoldings(f.Arg(1))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	w, closeStore, err := OpenWatchlist(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading watchlist: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeStore()

	if _, ok := w.Get(id); !ok {
		fmt.Fprintf(os.Stderr, "Warning: %q is not tracked, nothing changed\n", id)
		return subcommands.ExitSuccess
	}
	if err := w.UpdateHoldings(ctx, id, q); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving holdings: %v\n", err)
		return subcommands.ExitFailure
	}
	t, _ := w.Get(id)
	fmt.Fprintf(stdout, "%s: %s worth %s\n", id, q, t.Value(*currency))
	return subcommands.ExitSuccess
}
