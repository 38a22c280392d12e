package cryptofolio

import "time"

// palette holds the display colours of the positions, in allocation order.
var palette = []string{"#16a34a", "#7c3aed", "#f97316", "#06b6d4", "#ef4444", "#22c55e", "#3b82f6"}

// Position is the valuation of one held token.
type Position struct {
	Token      TrackedToken
	Value      Money
	Allocation Percent
	Color      string
}

// Snapshot is the valuation of a watchlist at a point in time.
//
// Only tokens with positive holdings take part: the others are still listed
// in the watchlist but are worth nothing here.
type Snapshot struct {
	Currency    string
	Total       Money
	Positions   []Position // in watchlist order
	LastUpdated time.Time  // most recent price among the positions, zero if unknown
}

// NewSnapshot values tokens in currency.
func NewSnapshot(currency string, tokens []TrackedToken) Snapshot {
	s := Snapshot{Currency: currency, Total: M(0, currency)}
	for _, t := range tokens {
		if !t.Holdings.IsPositive() {
			continue
		}
		v := t.Value(currency)
		s.Total = s.Total.Add(v)
		s.Positions = append(s.Positions, Position{Token: t.clone(), Value: v})
		if t.LastUpdated.After(s.LastUpdated) {
			s.LastUpdated = t.LastUpdated
		}
	}

	for i := range s.Positions {
		s.Positions[i].Allocation = s.Positions[i].Value.Share(s.Total)
		s.Positions[i].Color = palette[i%len(palette)]
	}
	return s
}

// IsEmpty reports whether nothing is held.
func (s Snapshot) IsEmpty() bool { return len(s.Positions) == 0 }

// Allocation returns the share of the token id in the total, 0 if not held.
func (s Snapshot) Allocation(id string) Percent {
	for _, p := range s.Positions {
		if p.Token.ID == id {
			return p.Allocation
		}
	}
	return 0
}
