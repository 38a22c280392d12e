package cryptofolio

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// newDecimal is a convenient factory for decimal.Decimal
func newDecimal[T float64 | int | int64 | decimal.Decimal](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return v
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	default:
		panic("unsupported type")
	}
}

// Quantity is an exact amount of a token, as entered by the user.
type Quantity struct {
	value decimal.Decimal
}

// Q returns the Quantity for value.
func Q[T float64 | int | int64 | decimal.Decimal](value T) Quantity {
	return Quantity{value: newDecimal(value)}
}

func (q Quantity) Equal(p Quantity) bool { return q.value.Equal(p.value) }
func (q Quantity) IsNegative() bool      { return q.value.IsNegative() }
func (q Quantity) IsPositive() bool      { return q.value.IsPositive() }
func (q Quantity) IsZero() bool          { return q.value.IsZero() }
func (q Quantity) String() string        { return q.value.String() }

// MarshalJSON writes the quantity as a JSON number, the format the
// watchlist has always been persisted with.
func (q Quantity) MarshalJSON() ([]byte, error) {
	return []byte(q.value.String()), nil
}

// UnmarshalJSON accepts numbers, quoted numbers and null (zero).
func (q *Quantity) UnmarshalJSON(b []byte) error {
	q.value = decimal.Zero
	return q.value.UnmarshalJSON(b)
}

// ErrInvalidHoldings is returned when a holdings quantity is not a
// non-negative number.
var ErrInvalidHoldings = errors.New("invalid holdings")

// ParseHoldings parses a user-entered holdings quantity.
//
// Only plain decimal numbers (optionally in exponent notation) are accepted,
// and they must not be negative. Nothing else ever reaches the watchlist.
func ParseHoldings(s string) (Quantity, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Quantity{}, fmt.Errorf("%w: empty value", ErrInvalidHoldings)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Quantity{}, fmt.Errorf("%w: %q is not a number", ErrInvalidHoldings, s)
	}
	if d.IsNegative() {
		return Quantity{}, fmt.Errorf("%w: %q is negative", ErrInvalidHoldings, s)
	}
	return Quantity{value: d}, nil
}
