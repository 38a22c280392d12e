package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/etnz/cryptofolio"
	"github.com/etnz/cryptofolio/metrics"
	"github.com/etnz/cryptofolio/renderer"
	"github.com/google/subcommands"
)

// watchCmd holds the flags for the 'watch' subcommand.
type watchCmd struct {
	metricsAddr string
	every       time.Duration
}

func (*watchCmd) Name() string     { return "watch" }
func (*watchCmd) Synopsis() string { return "follow the watchlist and display the summary on changes" }
func (*watchCmd) Usage() string {
	return `folio watch [-metrics-addr <addr>] [-refresh <duration>]

  Displays the portfolio summary, and displays it again every time another
  process changes the watchlist. Stops on interrupt.
`
}

func (c *watchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. ':9090'.")
	f.DurationVar(&c.every, "refresh", 0, "Refresh prices at this interval; 0 never refreshes.")
}

func (c *watchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, closeStore, err := OpenWatchlist(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading watchlist: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeStore()

	if c.metricsAddr != "" {
		srv := &http.Server{Addr: c.metricsAddr, Handler: metricsMux()}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("metrics server stopped: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
	}

	if c.every > 0 {
		go c.refreshLoop(ctx, w)
	}

	printMarkdown(renderer.SummaryMarkdown(w.Snapshot(*currency)))
	err = w.Follow(ctx, func(tokens []cryptofolio.TrackedToken) {
		printMarkdown(renderer.SummaryMarkdown(cryptofolio.NewSnapshot(*currency, tokens)))
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error following watchlist: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// refreshLoop refreshes prices every c.every until ctx is done.
func (c *watchCmd) refreshLoop(ctx context.Context, w *cryptofolio.Watchlist) {
	client := newClient()
	ticker := time.NewTicker(c.every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := refresh(ctx, client, w); err != nil {
				log.Printf("cannot refresh prices (ignored): %v", err)
				continue
			}
			printMarkdown(renderer.SummaryMarkdown(w.Snapshot(*currency)))
		}
	}
}

func metricsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	return mux
}
