package cryptofolio

import (
	"encoding/json"
	"slices"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// providerEntry is a catalog entry as the market-data provider sends it.
const providerEntry = `{
	"id": "bitcoin",
	"symbol": "btc",
	"name": "Bitcoin",
	"image": "https://assets.example.com/bitcoin.png",
	"current_price": 64250.12,
	"market_cap": 1265000000000,
	"market_cap_rank": 1,
	"total_volume": 31000000000,
	"price_change_percentage_24h": -1.2345,
	"last_updated": "2025-03-01T12:00:00.000Z",
	"sparkline_in_7d": {"price": [63000.5, 63500, 64250.12]}
}`

func TestTrackedToken_UnmarshalProvider(t *testing.T) {
	var tk TrackedToken
	if err := json.Unmarshal([]byte(providerEntry), &tk); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if tk.ID != "bitcoin" || tk.Symbol != "btc" || tk.Name != "Bitcoin" {
		t.Errorf("identity = %q %q %q", tk.ID, tk.Symbol, tk.Name)
	}
	if want := decimal.RequireFromString("64250.12"); !tk.CurrentPrice.Equal(want) {
		t.Errorf("CurrentPrice = %v, want %v", tk.CurrentPrice, want)
	}
	if !tk.PriceChange24h.Equal(-1.2345) {
		t.Errorf("PriceChange24h = %v, want -1.2345", tk.PriceChange24h)
	}
	if !slices.Equal(tk.Sparkline, []float64{63000.5, 63500, 64250.12}) {
		t.Errorf("Sparkline = %v", tk.Sparkline)
	}
	if want := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC); !tk.LastUpdated.Equal(want) {
		t.Errorf("LastUpdated = %v, want %v", tk.LastUpdated, want)
	}
	if !tk.Holdings.IsZero() {
		t.Errorf("Holdings = %v, want 0", tk.Holdings)
	}
}

func TestTrackedToken_UnmarshalNulls(t *testing.T) {
	var tk TrackedToken
	err := json.Unmarshal([]byte(`{"id":"x","current_price":null,"price_change_percentage_24h":null,"sparkline_in_7d":null,"holdings":null}`), &tk)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !tk.CurrentPrice.IsZero() || tk.PriceChange24h != 0 || tk.Sparkline != nil || !tk.Holdings.IsZero() {
		t.Errorf("Unmarshal() = %+v, want zero values", tk)
	}
}

func TestTrackedToken_MarshalJSON(t *testing.T) {
	tk := TrackedToken{
		ID:             "solana",
		Name:           "Solana",
		Symbol:         "sol",
		CurrentPrice:   decimal.RequireFromString("142.5"),
		PriceChange24h: 2.5,
		Sparkline:      []float64{140, 142.5},
		MarketCap:      decimal.NewFromInt(1000),
		TotalVolume:    decimal.NewFromInt(20),
		Holdings:       Q(0.75),
	}

	got, err := json.Marshal(tk)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"id":"solana","name":"Solana","symbol":"sol","current_price":142.5,"price_change_percentage_24h":2.5,` +
		`"sparkline_in_7d":{"price":[140,142.5]},"market_cap":1000,"total_volume":20,"holdings":0.75}`
	if string(got) != want {
		t.Errorf("Marshal() =\n%s\nwant\n%s", got, want)
	}
}

func TestTrackedToken_Value(t *testing.T) {
	if got, want := tok("a", 1.5, 4).Value("usd"), USD(6); !got.Equal(want) {
		t.Errorf("Value() = %v, want %v", got, want)
	}
}

func TestParseHoldings(t *testing.T) {
	tests := []struct {
		in      string
		want    Quantity
		wantErr bool
	}{
		{"0", Q(0), false},
		{" 1.5 ", Q(1.5), false},
		{"0.00000001", Q(0.00000001), false},
		{"1e3", Q(1000), false},
		{"", Quantity{}, true},
		{"abc", Quantity{}, true},
		{"1,5", Quantity{}, true},
		{"-2", Quantity{}, true},
	}
	for _, tt := range tests {
		got, err := ParseHoldings(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseHoldings(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && !got.Equal(tt.want) {
			t.Errorf("ParseHoldings(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDecodeTokens(t *testing.T) {
	got, err := DecodeTokens([]byte(`[{"id":"a","holdings":1},{"id":""},{"id":"b"},{"id":"a","holdings":9}]`))
	if err != nil {
		t.Fatalf("DecodeTokens() error = %v", err)
	}
	if !slices.Equal(ids(got), []string{"a", "b"}) {
		t.Errorf("DecodeTokens() = %v, want [a b]", ids(got))
	}
	if !got[0].Holdings.Equal(Q(1)) {
		t.Errorf("DecodeTokens()[0].Holdings = %v, want 1", got[0].Holdings)
	}

	if _, err := DecodeTokens([]byte(`{"id":"a"}`)); err == nil {
		t.Errorf("DecodeTokens(object) error = nil")
	}
}
