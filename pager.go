package cryptofolio

// DefaultWatchlistPageSize is the number of tokens on a watchlist page.
const DefaultWatchlistPageSize = 10

// Page is one page of the watchlist.
type Page struct {
	Tokens []TrackedToken
	Number int // 1-based
	Total  int // number of pages, at least 1
	From   int // 1-based position of the first token, 0 when empty
	To     int // 1-based position of the last token, 0 when empty
	Count  int // number of tokens in the whole watchlist
}

// Pager reads a watchlist page by page.
//
// The current page goes back to the first one whenever tokens were added or
// removed since the last read. Holdings and price updates keep it.
type Pager struct {
	w       *Watchlist
	size    int
	number  int
	version uint64
}

// NewPager returns a pager over w. A size below 1 selects
// DefaultWatchlistPageSize.
func NewPager(w *Watchlist, size int) *Pager {
	if size < 1 {
		size = DefaultWatchlistPageSize
	}
	return &Pager{w: w, size: size, number: 1, version: w.Version()}
}

// sync resets the page when the membership changed.
func (p *Pager) sync() {
	if v := p.w.Version(); v != p.version {
		p.version = v
		p.number = 1
	}
}

// Current returns the current page.
func (p *Pager) Current() Page {
	p.sync()
	tokens := p.w.Tokens()
	total := (len(tokens) + p.size - 1) / p.size
	if total < 1 {
		total = 1
	}
	p.number = min(max(p.number, 1), total)

	page := Page{Number: p.number, Total: total, Count: len(tokens)}
	start := (p.number - 1) * p.size
	end := min(start+p.size, len(tokens))
	if start < end {
		page.Tokens = tokens[start:end]
		page.From = start + 1
		page.To = end
	}
	return page
}

// Next moves to the next page, if any, and returns it.
func (p *Pager) Next() Page {
	p.sync()
	p.number++
	return p.Current()
}

// Prev moves to the previous page, if any, and returns it.
func (p *Pager) Prev() Page {
	p.sync()
	p.number--
	return p.Current()
}

// Goto moves to page n, clamped to the existing pages, and returns it.
func (p *Pager) Goto(n int) Page {
	p.sync()
	p.number = n
	return p.Current()
}
