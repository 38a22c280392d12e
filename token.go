package cryptofolio

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// TrackedToken is a token of the provider's catalog, possibly held by the user.
//
// Its JSON form uses the provider's field names, so that a catalog entry can
// be decoded directly, and a persisted watchlist stays readable by any tool
// that knows the provider's format.
type TrackedToken struct {
	ID             string          // catalog identifier, unique within a watchlist
	Name           string          // display name
	Symbol         string          // ticker symbol, as the provider spells it (usually lower case)
	Image          string          // image URL
	CurrentPrice   decimal.Decimal // in the quote currency
	PriceChange24h Percent
	Sparkline      []float64 // 7 days of price samples, oldest first
	MarketCap      decimal.Decimal
	TotalVolume    decimal.Decimal
	Holdings       Quantity
	LastUpdated    time.Time // zero when unknown
}

// Value returns the market value of the holdings in currency.
func (t TrackedToken) Value(currency string) Money {
	return M(t.CurrentPrice, currency).Mul(t.Holdings)
}

// clone returns a copy that does not share the sparkline.
func (t TrackedToken) clone() TrackedToken {
	t.Sparkline = slices.Clone(t.Sparkline)
	return t
}

// withMarketData returns t with all market fields taken from u. Identity
// and holdings are kept.
func (t TrackedToken) withMarketData(u TrackedToken) TrackedToken {
	t.Name = u.Name
	t.Symbol = u.Symbol
	t.Image = u.Image
	t.CurrentPrice = u.CurrentPrice
	t.PriceChange24h = u.PriceChange24h
	t.Sparkline = slices.Clone(u.Sparkline)
	t.MarketCap = u.MarketCap
	t.TotalVolume = u.TotalVolume
	if !u.LastUpdated.IsZero() {
		t.LastUpdated = u.LastUpdated
	}
	return t
}

// jsparkline is the nested object holding the sparkline samples.
type jsparkline struct {
	Price []float64 `json:"price"`
}

func (t TrackedToken) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", t.ID)
	w.Append("name", t.Name)
	w.Append("symbol", t.Symbol)
	w.Optional("image", t.Image)
	w.Append("current_price", json.Number(t.CurrentPrice.String()))
	w.Append("price_change_percentage_24h", float64(t.PriceChange24h))
	if len(t.Sparkline) > 0 {
		w.Append("sparkline_in_7d", jsparkline{Price: t.Sparkline})
	}
	w.Append("market_cap", json.Number(t.MarketCap.String()))
	w.Append("total_volume", json.Number(t.TotalVolume.String()))
	w.Append("holdings", t.Holdings)
	if !t.LastUpdated.IsZero() {
		w.Append("last_updated", t.LastUpdated.UTC().Format(time.RFC3339Nano))
	}
	return w.MarshalJSON()
}

func (t *TrackedToken) UnmarshalJSON(data []byte) error {
	// The provider sends null for unknown numbers, decimal.Decimal and
	// Quantity read null as zero.
	var j struct {
		ID             string          `json:"id"`
		Name           string          `json:"name"`
		Symbol         string          `json:"symbol"`
		Image          string          `json:"image"`
		CurrentPrice   decimal.Decimal `json:"current_price"`
		PriceChange24h *float64        `json:"price_change_percentage_24h"`
		Sparkline      *jsparkline     `json:"sparkline_in_7d"`
		MarketCap      decimal.Decimal `json:"market_cap"`
		TotalVolume    decimal.Decimal `json:"total_volume"`
		Holdings       Quantity        `json:"holdings"`
		LastUpdated    *time.Time      `json:"last_updated"`
	}
	if err := json.Unmarshal(data, &j); err != nil {
		return fmt.Errorf("invalid token: %w", err)
	}

	*t = TrackedToken{
		ID:           j.ID,
		Name:         j.Name,
		Symbol:       j.Symbol,
		Image:        j.Image,
		CurrentPrice: j.CurrentPrice,
		MarketCap:    j.MarketCap,
		TotalVolume:  j.TotalVolume,
		Holdings:     j.Holdings,
	}
	if j.PriceChange24h != nil {
		t.PriceChange24h = Percent(*j.PriceChange24h)
	}
	if j.Sparkline != nil && len(j.Sparkline.Price) > 0 {
		t.Sparkline = j.Sparkline.Price
	}
	if j.LastUpdated != nil {
		t.LastUpdated = *j.LastUpdated
	}
	return nil
}
