// Package cryptofolio provides the state and the computations of a personal
// crypto-currency watchlist. It is designed to be local-first: the watchlist
// lives in a key-value store that the user owns, and every change is written
// there before it is visible in memory.
//
// The core functionalities include:
//   - Watchlist: an ordered list of tracked tokens with the quantity the user
//     holds, mutated only through a small set of operations (SetAll, Add,
//     Remove, UpdateHoldings, UpdatePrices, Merge). Changes made by another
//     process sharing the same store are followed and re-hydrated.
//   - Session: a transient browsing session over the paginated catalog of a
//     market-data provider, with a free-text filter and a pending selection
//     that is merged into the watchlist on commit.
//   - Snapshot: a stateless valuation of the watchlist (total value and
//     allocation per token), recomputed on every call.
//
// This package serves as the foundational logic for the `folio` command-line
// tool. Market data comes from the coingecko package, persistence from the
// storage package.
package cryptofolio
