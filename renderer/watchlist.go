package renderer

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/etnz/cryptofolio"
	md "github.com/nao1215/markdown"
)

// nameWidth is the longest name displayed in full.
const nameWidth = 9

// symbol returns the ticker symbol as displayed.
func symbol(t cryptofolio.TrackedToken) string { return strings.ToUpper(t.Symbol) }

// shortName truncates long names.
func shortName(name string) string {
	r := []rune(name)
	if len(r) > nameWidth {
		return string(r[:nameWidth]) + "..."
	}
	return name
}

// WatchlistMarkdown renders one page of the watchlist, prices and values in
// currency.
func WatchlistMarkdown(page cryptofolio.Page, currency string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Watchlist")
	if page.Count == 0 {
		doc.PlainText("The watchlist is empty, use `folio add` or `folio browse` to track tokens.")
		return doc.String()
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
		},
		Header: []string{"Token", "Price", "24h %", "Sparkline (7d)", "Holdings", "Value"},
	}
	for _, t := range page.Tokens {
		spark := "No data"
		if len(t.Sparkline) > 0 {
			spark = Sparkline(t.Sparkline)
		}
		table.Rows = append(table.Rows, []string{
			fmt.Sprintf("%s (%s)", shortName(t.Name), symbol(t)),
			cryptofolio.M(t.CurrentPrice, currency).String(),
			t.PriceChange24h.SignedString(),
			spark,
			t.Holdings.String(),
			t.Value(currency).String(),
		})
	}
	doc.Table(table)

	doc.PlainText(fmt.Sprintf("%d — %d of %d results", page.From, page.To, page.Count))
	doc.PlainText(fmt.Sprintf("Page %d of %d", page.Number, page.Total))
	return doc.String()
}
