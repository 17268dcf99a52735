package optfolio

import (
	"slices"
	"strings"
)

// AggregateStocks collapses stock transactions into one position per ticker.
//
// The cutoff map carries, per ticker, the date of the last transaction
// already applied to the store; transactions at or before the cutoff are
// excluded entirely, which is what makes "only since last run" incremental
// imports work. The emitted quantity is the signed net of the surviving
// transactions and the reference price is taken from the transaction with
// the latest date. Tickers with no surviving transactions are not emitted.
func AggregateStocks(stocks []StockTransaction, cutoffs map[string]Date) []Spread {
	type agg struct {
		quantity Quantity
		last     StockTransaction
	}
	byTicker := make(map[string]*agg)
	for _, t := range stocks {
		if cutoff, ok := cutoffs[t.Ticker]; ok && !t.Date.After(cutoff) {
			continue
		}
		a, ok := byTicker[t.Ticker]
		if !ok {
			a = &agg{last: t}
			byTicker[t.Ticker] = a
		}
		a.quantity = a.quantity.Add(t.Quantity)
		if t.Date.After(a.last.Date) {
			a.last = t
		}
	}

	tickers := make([]string, 0, len(byTicker))
	for ticker := range byTicker {
		tickers = append(tickers, ticker)
	}
	slices.SortFunc(tickers, strings.Compare)

	out := make([]Spread, 0, len(tickers))
	for _, ticker := range tickers {
		a := byTicker[ticker]
		out = append(out, Spread{
			Strategy: Stock,
			Ticker:   ticker,
			Quantity: a.quantity,
			Price:    a.last.Price,
			Date:     a.last.Date,
		})
	}
	return out
}
