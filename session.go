package cryptofolio

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/etnz/cryptofolio/metrics"
	"github.com/google/uuid"
)

const (
	// DefaultCatalogPageSize is the number of catalog entries fetched at once.
	DefaultCatalogPageSize = 15
	// ScrollThreshold is the distance to the end of the list, in pixels or
	// lines, under which the next page is requested.
	ScrollThreshold = 100
)

var (
	// ErrEmptySelection is returned by Commit when nothing is selected.
	ErrEmptySelection = errors.New("empty selection")
	// ErrSessionClosed is returned when a closed session is asked for a page.
	ErrSessionClosed = errors.New("session is closed")
)

// Catalog is the paginated list of tokens offered by a market-data provider.
type Catalog interface {
	// Markets returns the page-th page (1-based) of perPage tokens. A page
	// shorter than perPage is the last one.
	Markets(ctx context.Context, page, perPage int) ([]TrackedToken, error)
}

// Status is the state of a session fetch cycle.
type Status int

const (
	Idle Status = iota
	Loading
	Loaded
	Exhausted
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Exhausted:
		return "exhausted"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Session browses the catalog to pick the tokens to track.
//
// The selection starts as the current watchlist; Commit makes the watchlist
// match the selection. Only one page is fetched at a time, and a page
// arriving after the session was closed or reopened is dropped.
type Session struct {
	catalog  Catalog
	w        *Watchlist
	pageSize int

	mu       sync.Mutex
	token    uuid.UUID // uuid.Nil when closed
	buffer   []TrackedToken
	filter   string
	selected map[string]bool
	page     int // last loaded page
	status   Status
	err      error
}

// NewSession returns a closed session over catalog that commits to w. A
// pageSize below 1 selects DefaultCatalogPageSize.
func NewSession(catalog Catalog, w *Watchlist, pageSize int) *Session {
	if pageSize < 1 {
		pageSize = DefaultCatalogPageSize
	}
	return &Session{catalog: catalog, w: w, pageSize: pageSize, selected: map[string]bool{}}
}

// Open starts a new session and loads the first page.
func (s *Session) Open(ctx context.Context) error {
	s.mu.Lock()
	s.token = uuid.New()
	s.buffer = nil
	s.filter = ""
	s.selected = s.w.IDs()
	s.page = 0
	s.status = Idle
	s.err = nil
	s.mu.Unlock()

	return s.RequestPage(ctx, 1)
}

// Close discards the session. A fetch still running is ignored when it
// completes.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = uuid.Nil
	s.buffer = nil
	s.filter = ""
	s.selected = map[string]bool{}
	s.page = 0
	s.status = Idle
	s.err = nil
}

// IsOpen reports whether the session is open.
func (s *Session) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != uuid.Nil
}

// RequestPage fetches page n. The call does nothing while a fetch is in
// flight, after the last page, or after a failure. Page 1 replaces the
// buffer, other pages are appended.
func (s *Session) RequestPage(ctx context.Context, n int) error {
	if n < 1 {
		return fmt.Errorf("invalid page %d", n)
	}
	s.mu.Lock()
	if s.token == uuid.Nil {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	switch s.status {
	case Loading, Exhausted, Failed:
		s.mu.Unlock()
		return nil
	}
	s.status = Loading
	token := s.token
	s.mu.Unlock()

	tokens, err := s.catalog.Markets(ctx, n, s.pageSize)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token != token {
		metrics.RecordSessionFetch("stale")
		return nil
	}
	if err != nil {
		s.status = Failed
		s.err = err
		metrics.RecordSessionFetch("failed")
		return fmt.Errorf("cannot load catalog page %d: %w", n, err)
	}

	if n == 1 {
		s.buffer = nil
	}
	for _, t := range tokens {
		if index(s.buffer, t.ID) < 0 {
			s.buffer = append(s.buffer, t)
		}
	}
	s.page = n
	if len(tokens) < s.pageSize {
		s.status = Exhausted
		metrics.RecordSessionFetch("exhausted")
	} else {
		s.status = Loaded
		metrics.RecordSessionFetch("loaded")
	}
	return nil
}

// NextPage fetches the page after the last loaded one.
func (s *Session) NextPage(ctx context.Context) error {
	s.mu.Lock()
	n := s.page + 1
	s.mu.Unlock()
	return s.RequestPage(ctx, n)
}

// Scrolled is called when the list is scrolled and remaining is the
// distance left to its end. It fetches the next page when the end is near.
func (s *Session) Scrolled(ctx context.Context, remaining int) error {
	if remaining >= ScrollThreshold {
		return nil
	}
	return s.NextPage(ctx)
}

// SetFilter sets the text the visible entries must contain.
func (s *Session) SetFilter(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = text
}

// Filter returns the current filter.
func (s *Session) Filter() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// Visible returns the loaded entries whose name or symbol contains the
// filter, ignoring case.
func (s *Session) Visible() []TrackedToken {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := strings.ToLower(strings.TrimSpace(s.filter))
	var visible []TrackedToken
	for _, t := range s.buffer {
		if f == "" || strings.Contains(strings.ToLower(t.Name), f) || strings.Contains(strings.ToLower(t.Symbol), f) {
			visible = append(visible, t.clone())
		}
	}
	return visible
}

// Toggle flips the selection of id and returns whether it is now selected.
// Only loaded entries can be selected; any selected id can be deselected.
func (s *Session) Toggle(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected[id] {
		delete(s.selected, id)
		return false
	}
	if index(s.buffer, id) < 0 {
		return false
	}
	s.selected[id] = true
	return true
}

// Selected returns the selected identifiers, sorted.
func (s *Session) Selected() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.selected))
	for id := range s.selected {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// IsSelected reports whether id is selected.
func (s *Session) IsSelected(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected[id]
}

// Status returns the fetch status.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Err returns the error of the failed fetch, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// CanCommit reports whether Commit would do anything.
func (s *Session) CanCommit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != uuid.Nil && len(s.selected) > 0
}

// Commit adds the selected loaded entries to the watchlist, removes the
// tracked tokens that were deselected, and closes the session.
func (s *Session) Commit(ctx context.Context) error {
	s.mu.Lock()
	if s.token == uuid.Nil {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if len(s.selected) == 0 {
		s.mu.Unlock()
		return ErrEmptySelection
	}
	var added []TrackedToken
	for _, t := range s.buffer {
		if s.selected[t.ID] {
			added = append(added, t)
		}
	}
	selected := make(map[string]bool, len(s.selected))
	for id := range s.selected {
		selected[id] = true
	}
	s.mu.Unlock()

	if err := s.w.Merge(ctx, added, selected); err != nil {
		return err
	}
	s.Close()
	return nil
}
