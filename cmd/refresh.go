package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/cryptofolio"
	"github.com/etnz/cryptofolio/coingecko"
	"github.com/google/subcommands"
)

type refreshCmd struct{}

func (*refreshCmd) Name() string     { return "refresh" }
func (*refreshCmd) Synopsis() string { return "update the market data of tracked tokens" }
func (*refreshCmd) Usage() string {
	return `folio refresh

  Fetches the current price, 24h change, sparkline, market cap and volume of
  every tracked token. Holdings are never changed.
`
}

func (c *refreshCmd) SetFlags(f *flag.FlagSet) {}

func (c *refreshCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	w, closeStore, err := OpenWatchlist(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading watchlist: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeStore()

	n, err := refresh(ctx, newClient(), w)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error refreshing prices: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "%d of %d tokens refreshed\n", n, w.Len())
	return subcommands.ExitSuccess
}

// refresh updates the market data of the tokens in w and returns the number
// of tokens the provider knew.
func refresh(ctx context.Context, client *coingecko.Client, w *cryptofolio.Watchlist) (int, error) {
	tokens := w.Tokens()
	if len(tokens) == 0 {
		return 0, nil
	}
	ids := make([]string, len(tokens))
	for i, t := range tokens {
		ids[i] = t.ID
	}
	updates, err := client.Prices(ctx, ids...)
	if err != nil {
		return 0, err
	}
	return len(updates), w.UpdatePrices(ctx, updates...)
}
