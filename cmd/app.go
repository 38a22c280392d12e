// Package cmd implements the CLI application to manage a crypto watchlist.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/cryptofolio"
	"github.com/etnz/cryptofolio/coingecko"
	"github.com/etnz/cryptofolio/config"
	"github.com/etnz/cryptofolio/storage"
	"github.com/etnz/cryptofolio/storage/postgres"
	"github.com/google/subcommands"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&listCmd{}, "watchlist")
	c.Register(&addCmd{}, "watchlist")
	c.Register(&removeCmd{}, "watchlist")
	c.Register(&holdCmd{}, "watchlist")
	c.Register(&browseCmd{}, "watchlist")

	c.Register(&refreshCmd{}, "market")
	c.Register(&summaryCmd{}, "market")
	c.Register(&watchCmd{}, "market")

	c.Register(&topicCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var defaults = config.Load()

var storeDir = flag.String("store", defaults.StoreDir, "Path to the watchlist store folder")
var postgresDSN = flag.String("postgres", defaults.PostgresDSN, "PostgreSQL connection string; when set the watchlist is stored in the database instead of the store folder")
var currency = flag.String("currency", defaults.Currency, "Quote currency of prices and values")
var apiKey = flag.String("coingecko-api-key", defaults.CoinGeckoAPIKey, "CoinGecko API key (COINGECKO_API_KEY)")
var baseURL = flag.String("coingecko-url", defaults.CoinGeckoBaseURL, "CoinGecko compatible API base URL")

// Verbose enables provider traffic and warning logs.
var Verbose = flag.Bool("verbose", false, "Log provider requests and recoverable errors")

// stdout is where commands print their reports.
var stdout io.Writer = os.Stdout

// SetupLogging applies the -verbose flag. It must be called after flag parsing.
func SetupLogging() {
	log.SetFlags(0)
	log.SetPrefix("folio: ")
	if !*Verbose {
		log.SetOutput(io.Discard)
	}
}

// OpenStore opens the store selected by the global flags. closeStore must be
// called when done.
func OpenStore(ctx context.Context) (store storage.Store, closeStore func(), err error) {
	if *postgresDSN != "" {
		s, err := postgres.New(ctx, *postgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}
	d, err := storage.NewDir(*storeDir)
	if err != nil {
		return nil, nil, err
	}
	d.PollInterval = defaults.PollInterval
	return d, func() {}, nil
}

// OpenWatchlist is the central function to open the watchlist.
func OpenWatchlist(ctx context.Context) (w *cryptofolio.Watchlist, closeStore func(), err error) {
	store, closeStore, err := OpenStore(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open store: %w", err)
	}
	w, err = cryptofolio.OpenWatchlist(ctx, store)
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	return w, closeStore, nil
}

// newClient returns the market-data client selected by the global flags.
func newClient() *coingecko.Client {
	return coingecko.NewClient(*baseURL, *apiKey, *currency, defaults.CacheTTL)
}

// renderMarkdown renders markdown for the terminal. The markdown itself is
// returned when it cannot be rendered.
func renderMarkdown(md string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(120),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}

// printMu serializes the prints of concurrent goroutines, 'watch' has two.
var printMu sync.Mutex

// printMarkdown prints markdown to stdout, rendered for the terminal.
func printMarkdown(md string) {
	out := renderMarkdown(md)
	printMu.Lock()
	defer printMu.Unlock()
	fmt.Fprint(stdout, out)
}
