// Package coingecko reads market data from a CoinGecko compatible API.
//
// Catalog pages are cached on disk for a short time; price refreshes are
// always live.
package coingecko

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/etnz/cryptofolio"
)

const (
	// DefaultBaseURL is the public API.
	DefaultBaseURL = "https://api.coingecko.com/api/v3"

	demoKeyHeader = "x-cg-demo-api-key"
	proKeyHeader  = "x-cg-pro-api-key"

	// maxIDs is the largest page the markets endpoint serves.
	maxIDs = 250
)

// Client queries the /coins/markets endpoint.
type Client struct {
	baseURL  string
	apiKey   string
	currency string

	cached *http.Client // catalog pages
	live   *http.Client // prices
}

// NewClient returns a client for the API at baseURL (DefaultBaseURL if empty)
// quoting prices in currency. apiKey may be empty. Catalog pages are cached
// for cacheTTL, a cacheTTL <= 0 disables the cache.
func NewClient(baseURL, apiKey, currency string, cacheTTL time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		apiKey:   apiKey,
		currency: strings.ToLower(currency),
		cached:   newCachingClient(cacheTTL, ""),
		live:     new(http.Client),
	}
}

// Currency returns the quote currency.
func (c *Client) Currency() string { return c.currency }

// request builds a GET on /coins/markets with the common parameters.
func (c *Client) request(params url.Values) (*http.Request, error) {
	params.Set("vs_currency", c.currency)
	params.Set("order", "market_cap_desc")
	params.Set("sparkline", "true")
	req, err := http.NewRequest(http.MethodGet, c.baseURL+"/coins/markets?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		header := demoKeyHeader
		if strings.Contains(c.baseURL, "pro-api.") {
			header = proKeyHeader
		}
		req.Header.Set(header, c.apiKey)
	}
	return req, nil
}

// Markets returns the page-th page of perPage tokens, by decreasing market
// capitalization.
func (c *Client) Markets(ctx context.Context, page, perPage int) ([]cryptofolio.TrackedToken, error) {
	params := url.Values{}
	params.Set("per_page", strconv.Itoa(perPage))
	params.Set("page", strconv.Itoa(page))
	req, err := c.request(params)
	if err != nil {
		return nil, err
	}

	var tokens []cryptofolio.TrackedToken
	if err := jwget(ctx, c.cached, "markets", req, &tokens); err != nil {
		return nil, fmt.Errorf("cannot fetch catalog page %d: %w", page, err)
	}
	return tokens, nil
}

// Prices returns the current market data of the tokens ids. Unknown ids are
// absent from the result.
func (c *Client) Prices(ctx context.Context, ids ...string) ([]cryptofolio.TrackedToken, error) {
	return c.byIDs(ctx, "prices", ids)
}

// Coins returns the catalog entries of the tokens ids.
func (c *Client) Coins(ctx context.Context, ids ...string) ([]cryptofolio.TrackedToken, error) {
	return c.byIDs(ctx, "coins", ids)
}

func (c *Client) byIDs(ctx context.Context, endpoint string, ids []string) ([]cryptofolio.TrackedToken, error) {
	var tokens []cryptofolio.TrackedToken
	for start := 0; start < len(ids); start += maxIDs {
		chunk := ids[start:min(start+maxIDs, len(ids))]
		params := url.Values{}
		params.Set("ids", strings.Join(chunk, ","))
		params.Set("per_page", strconv.Itoa(maxIDs))
		params.Set("page", "1")
		req, err := c.request(params)
		if err != nil {
			return nil, err
		}

		var page []cryptofolio.TrackedToken
		if err := jwget(ctx, c.live, endpoint, req, &page); err != nil {
			return nil, fmt.Errorf("cannot fetch market data: %w", err)
		}
		tokens = append(tokens, page...)
	}
	return tokens, nil
}

var _ cryptofolio.Catalog = (*Client)(nil)
