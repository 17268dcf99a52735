package optfolio

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// CashKey is the sentinel key of the single cash position.
const CashKey = "CASH"

// StockKey returns the canonical key of an equity position.
func StockKey(ticker string) string { return ticker + "|STOCK" }

// Key computes the canonical, collision-free identity of a spread.
//
// Two spread instances with the same ticker, expiration, strike set and
// strategy classification always collide to the same key regardless of leg
// ordering: strikes are sorted before being folded into the key, and the
// expiration is folded in as its canonical day string.
func (s Spread) Key() string {
	switch s.Strategy {
	case Cash:
		return CashKey
	case Stock:
		return StockKey(s.Ticker)
	}
	return legKey(s.Ticker, s.Expiration, s.Legs)
}

// legKey derives the identity of a multi-leg position from its legs.
func legKey(ticker string, expiration Date, legs []Leg) string {
	strikes := make([]decimal.Decimal, 0, len(legs))
	hasCall, hasPut := false, false
	for _, leg := range legs {
		strikes = append(strikes, leg.Strike.Dec())
		switch leg.OptionType {
		case Call:
			hasCall = true
		case Put:
			hasPut = true
		}
	}
	slices.SortFunc(strikes, decimal.Decimal.Cmp)

	parts := make([]string, 0, len(strikes))
	for _, strike := range strikes {
		parts = append(parts, strike.String())
	}

	var code string
	switch {
	case hasCall && hasPut && len(legs) == 4:
		code = "IC"
	case hasCall && hasPut:
		// straddle or strangle; same strikes mean the same position either way.
		code = string(Call) + "-" + string(Put)
	case hasPut:
		code = string(Put)
	default:
		code = string(Call)
	}

	return strings.Join([]string{ticker, expiration.String(), strings.Join(parts, "-"), code}, "|")
}
