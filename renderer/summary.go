package renderer

import (
	"time"

	"github.com/etnz/cryptofolio"
)

// summary is the template view of a snapshot.
type summary struct {
	Total       string
	LastUpdated string
	Positions   []position
}

type position struct {
	Name       string
	Symbol     string
	Holdings   string
	Value      string
	Allocation string
	Color      string
}

// SummaryMarkdown renders the portfolio total and its allocation.
func SummaryMarkdown(s cryptofolio.Snapshot) string {
	view := summary{Total: s.Total.String(), LastUpdated: "-"}
	if !s.LastUpdated.IsZero() {
		view.LastUpdated = s.LastUpdated.Local().Format(time.DateTime)
	}
	for _, p := range s.Positions {
		view.Positions = append(view.Positions, position{
			Name:       p.Token.Name,
			Symbol:     symbol(p.Token),
			Holdings:   p.Token.Holdings.String(),
			Value:      p.Value.String(),
			Allocation: p.Allocation.String(),
			Color:      p.Color,
		})
	}

	partials := map[string]string{
		"summary_positions": "summary_positions.md",
	}
	if s.IsEmpty() {
		partials["summary_positions"] = "summary_empty.md"
	}
	return renderTemplate("summary", "summary.md", partials, view)
}
