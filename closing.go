package optfolio

import (
	"iter"
	"maps"
	"slices"
	"strings"
)

// ContractKey is the canonical identity of one option contract, used to key
// resolved closing prices.
func ContractKey(ticker string, expiration Date, strike Money, optionType OptionType) string {
	return strings.Join([]string{ticker, expiration.String(), strike.Dec().String(), string(optionType)}, "|")
}

// ClosingPrices maps contract keys to the realized price per closed leg.
// A zero price means the leg expired worthless.
type ClosingPrices map[string]Money

// Sorted iterates over resolved prices in stable key order.
func (c ClosingPrices) Sorted() iter.Seq2[string, Money] {
	keys := slices.Collect(maps.Keys(c))
	slices.Sort(keys)
	return func(yield func(string, Money) bool) {
		for _, key := range keys {
			if !yield(key, c[key]) {
				return
			}
		}
	}
}

// ResolveClosingPrices computes a realized price per leg from the full
// transaction history, in three fallback tiers:
//
//  1. explicit close transactions, blended into a quantity-weighted average
//     close price;
//  2. exercise or assignment, valued at the intrinsic value against the
//     maximum stock price traded the same day;
//  3. worthless expiry, a zero price for legs with an explicit expiry record
//     or opened legs whose expiration is strictly before today.
//
// A leg resolved at an earlier tier is never overwritten by a later tier.
// The map is computed once per reconciliation run and handed to the external
// writer that annotates output rows; it is not persisted.
func ResolveClosingPrices(txs []Transaction, stocks []StockTransaction, today Date) ClosingPrices {
	prices := make(ClosingPrices)

	// Tier 1: explicit close transactions, quantity-weighted.
	type blend struct {
		sum Money
		qty Quantity
	}
	blends := make(map[string]*blend)
	for _, t := range txs {
		if !t.Type.IsClosed() {
			continue
		}
		key := ContractKey(t.Ticker, t.Expiration, t.Strike, t.OptionType)
		b, ok := blends[key]
		if !ok {
			b = &blend{}
			blends[key] = b
		}
		b.sum = b.sum.Add(t.Price.Mul(t.Quantity))
		b.qty = b.qty.Add(t.Quantity)
	}
	for key, b := range blends {
		if b.qty.IsZero() {
			prices[key] = M(0, b.sum.Currency())
			continue
		}
		prices[key] = b.sum.Div(b.qty)
	}

	// Tier 2: exercise and assignment, valued intrinsically against the
	// highest stock price observed the same day.
	for _, t := range txs {
		if !t.Type.IsExercised() && !t.Type.IsAssigned() {
			continue
		}
		key := ContractKey(t.Ticker, t.Expiration, t.Strike, t.OptionType)
		if _, done := prices[key]; done {
			continue
		}
		market, ok := maxStockPrice(stocks, t.Ticker, t.Date)
		if !ok {
			continue
		}
		prices[key] = intrinsic(t.OptionType, t.Strike, market)
	}

	// Tier 3: worthless expiry. An explicit expiry record settles the leg at
	// zero outright; an opened, unresolved leg past its expiration is inferred
	// to have expired the same way.
	for _, t := range txs {
		if !t.Type.IsExpired() && !t.Type.IsOpen() {
			continue
		}
		key := ContractKey(t.Ticker, t.Expiration, t.Strike, t.OptionType)
		if _, done := prices[key]; done {
			continue
		}
		if t.Type.IsExpired() || t.Expiration.Before(today) {
			prices[key] = M(0, t.Price.Currency())
		}
	}

	return prices
}

// maxStockPrice returns the maximum stock price traded for ticker on day.
func maxStockPrice(stocks []StockTransaction, ticker string, day Date) (Money, bool) {
	var best Money
	found := false
	for _, s := range stocks {
		if s.Ticker != ticker || s.Date != day {
			continue
		}
		if !found || s.Price.GreaterThan(best) {
			best = s.Price
			found = true
		}
	}
	return best, found
}

// intrinsic computes the in-the-money value of an option at the given
// underlying price, floored at zero.
func intrinsic(optionType OptionType, strike, market Money) Money {
	var value Money
	if optionType == Call {
		value = market.Sub(strike)
	} else {
		value = strike.Sub(market)
	}
	if value.IsNegative() {
		return M(0, value.Currency())
	}
	return value
}
