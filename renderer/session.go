package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/etnz/cryptofolio"
)

// SessionMarkdown renders the visible catalog entries of a browsing session.
// Selected entries are starred.
func SessionMarkdown(s *cryptofolio.Session, currency string) string {
	var b strings.Builder
	fmt.Fprintln(&b, "# Add tokens")
	fmt.Fprintln(&b)
	if f := s.Filter(); f != "" {
		fmt.Fprintf(&b, "Filter: `%s`\n\n", f)
	}

	visible := s.Visible()
	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprintln(w, "| | Token | ID | Price | 24h % |")
		fmt.Fprintln(w, "|:-|:------|:---|------:|------:|")
		for _, t := range visible {
			mark := "☆"
			if s.IsSelected(t.ID) {
				mark = "★"
			}
			fmt.Fprintf(w, "| %s | %s (%s) | `%s` | %s | %s |\n", mark, t.Name, symbol(t), t.ID,
				cryptofolio.M(t.CurrentPrice, currency), t.PriceChange24h.SignedString())
		}
		fmt.Fprintln(w)
		return len(visible) > 0
	})

	switch {
	case s.Status() == cryptofolio.Loading:
		fmt.Fprintln(&b, "Loading more tokens...")
	case s.Status() == cryptofolio.Failed:
		fmt.Fprintf(&b, "Failed to load tokens: %v\n", s.Err())
	case len(visible) == 0:
		fmt.Fprintln(&b, "No tokens found")
	case s.Status() == cryptofolio.Exhausted:
		fmt.Fprintln(&b, "No more tokens to load")
	}

	fmt.Fprintf(&b, "\n%d selected\n", len(s.Selected()))
	return b.String()
}
