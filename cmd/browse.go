package cmd

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/etnz/cryptofolio"
	"github.com/etnz/cryptofolio/renderer"
	"github.com/google/subcommands"
)

// browseCmd holds the flags for the 'browse' subcommand.
type browseCmd struct {
	size int

	in  io.Reader // os.Stdin when nil
	out io.Writer // stdout when nil
}

func (*browseCmd) Name() string     { return "browse" }
func (*browseCmd) Synopsis() string { return "pick the tokens to track from the market catalog" }
func (*browseCmd) Usage() string {
	return `folio browse [-n <size>]

  Opens the market catalog, by decreasing market cap, with the tracked tokens
  selected. Type 'help' for the list of commands. 'commit' makes the watchlist
  match the selection.
`
}

func (c *browseCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.size, "n", defaults.PageSize, "Number of catalog tokens loaded at a time.")
}

func (c *browseCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	w, closeStore, err := OpenWatchlist(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading watchlist: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeStore()

	in, out := c.in, c.out
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = stdout
	}

	b := &browser{
		s:   cryptofolio.NewSession(newClient(), w, c.size),
		w:   out,
		r:   bufio.NewReader(in),
		cur: *currency,
	}
	if err := b.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

const browsePrompt = "browse> "

const browseHelp = `Commands:
  next              load more tokens
  filter <text>     only show tokens whose name or symbol contains text
  clear             remove the filter
  toggle <id>...    select or deselect tokens
  show              print the tokens again
  commit            save the selection and leave
  quit              leave without saving
`

// browser is the interactive loop over a session.
type browser struct {
	s   *cryptofolio.Session
	w   io.Writer
	r   *bufio.Reader
	cur string
}

func (b *browser) show() {
	fmt.Fprint(b.w, renderMarkdown(renderer.SessionMarkdown(b.s, b.cur)))
}

// Run reads commands until commit, quit or end of input.
func (b *browser) Run(ctx context.Context) error {
	defer b.s.Close()

	if err := b.s.Open(ctx); err != nil {
		fmt.Fprintf(b.w, "%v\n", err)
	}
	b.show()

	for {
		fmt.Fprint(b.w, browsePrompt)
		input, err := b.r.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && input != "") {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(b.w)
				return nil // Clean exit on Ctrl+D
			}
			return err
		}

		fields := strings.Fields(input)
		if len(fields) == 0 {
			continue
		}
		switch cmd, args := fields[0], fields[1:]; cmd {
		case "next", "more":
			if err := b.s.NextPage(ctx); err != nil {
				fmt.Fprintf(b.w, "%v\n", err)
			}
			b.show()
		case "filter":
			b.s.SetFilter(strings.Join(args, " "))
			b.show()
		case "clear":
			b.s.SetFilter("")
			b.show()
		case "toggle":
			for _, id := range args {
				if b.s.Toggle(id) {
					fmt.Fprintf(b.w, "%s selected\n", id)
				} else {
					fmt.Fprintf(b.w, "%s not selected\n", id)
				}
			}
		case "show":
			b.show()
		case "commit":
			err := b.s.Commit(ctx)
			if errors.Is(err, cryptofolio.ErrEmptySelection) {
				fmt.Fprintln(b.w, "Nothing selected, select at least one token to commit.")
				continue
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(b.w, "Watchlist saved.")
			return nil
		case "quit", "bye", "exit":
			return nil
		case "help":
			fmt.Fprint(b.w, browseHelp)
		default:
			fmt.Fprintf(b.w, "unknown command %q\n%s", cmd, browseHelp)
		}
	}
}
