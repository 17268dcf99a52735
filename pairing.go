package optfolio

import (
	"slices"
	"strings"
)

// groupKey identifies the set of same-day opens eligible to pair. Only opens
// executed on the same day are combined: in-day ratio'd strategies are far
// more common than cross-day ones, and cross-day partial entries stay naked
// until a later run happens to close them together.
type groupKey struct {
	date       Date
	ticker     string
	expiration Date
}

// openLeg is the mutable working copy of one opening transaction while a
// group is being classified. Quantity is the remaining unconsumed quantity,
// signed.
type openLeg struct {
	strike     Money
	optionType OptionType
	quantity   Quantity
	price      Money
}

func (l *openLeg) leg(quantity Quantity) Leg {
	return Leg{Strike: l.strike, OptionType: l.optionType, Quantity: quantity, Price: l.price}
}

// Pair groups opening option transactions by (date, ticker, expiration) and
// classifies each group into iron condors, straddles/strangles, vertical
// spreads, or naked legs.
//
// Classification is tiered, first match wins, and any quantity not consumed
// by one tier falls through to normal vertical pairing at the last tier. The
// output order is deterministic but not significant: it is immediately
// key-merged by PreMerge.
func Pair(txs []Transaction) []Spread {
	groups := make(map[groupKey][]*openLeg)
	for _, t := range txs {
		if !t.Type.IsOpen() {
			continue
		}
		k := groupKey{date: t.Date, ticker: t.Ticker, expiration: t.Expiration}
		groups[k] = append(groups[k], &openLeg{
			strike:     t.Strike,
			optionType: t.OptionType,
			quantity:   t.Quantity,
			price:      t.Price,
		})
	}

	keys := make([]groupKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b groupKey) int {
		if c := strings.Compare(a.date.String(), b.date.String()); c != 0 {
			return c
		}
		if c := strings.Compare(a.ticker, b.ticker); c != 0 {
			return c
		}
		return strings.Compare(a.expiration.String(), b.expiration.String())
	})

	var out []Spread
	for _, k := range keys {
		out = append(out, classify(k, groups[k])...)
	}
	return out
}

// classify applies the tiered classification to one same-day group.
func classify(k groupKey, legs []*openLeg) []Spread {
	if condor, ok := ironCondor(k, legs); ok {
		return []Spread{condor}
	}

	var out []Spread
	longs, shorts := 0, 0
	for _, l := range legs {
		if l.quantity.IsPositive() {
			longs++
		} else if l.quantity.IsNegative() {
			shorts++
		}
	}
	// Straddle and strangle pairing only applies to single-direction groups;
	// mixed groups go straight to vertical pairing.
	if shorts == 0 {
		out = append(out, pairStraddles(k, legs, true)...)
	} else if longs == 0 {
		out = append(out, pairStraddles(k, legs, false)...)
	}

	out = append(out, pairVerticals(k, legs, Call)...)
	out = append(out, pairVerticals(k, legs, Put)...)
	return out
}

// ironCondor matches a group of exactly one long call, one short call, one
// long put and one short put, all with identical absolute quantity, into a
// single 4-leg instance with legs sorted by ascending strike.
func ironCondor(k groupKey, legs []*openLeg) (Spread, bool) {
	var longCall, shortCall, longPut, shortPut *openLeg
	for _, l := range legs {
		var slot **openLeg
		switch {
		case l.optionType == Call && l.quantity.IsPositive():
			slot = &longCall
		case l.optionType == Call && l.quantity.IsNegative():
			slot = &shortCall
		case l.optionType == Put && l.quantity.IsPositive():
			slot = &longPut
		case l.optionType == Put && l.quantity.IsNegative():
			slot = &shortPut
		default:
			return Spread{}, false // zero-quantity record, cannot classify
		}
		if *slot != nil {
			return Spread{}, false // more than one leg in a slot
		}
		*slot = l
	}
	if longCall == nil || shortCall == nil || longPut == nil || shortPut == nil {
		return Spread{}, false
	}

	qty := longCall.quantity.Abs()
	for _, l := range []*openLeg{shortCall, longPut, shortPut} {
		if !l.quantity.Abs().Equal(qty) {
			return Spread{}, false
		}
	}

	condorLegs := []Leg{
		longCall.leg(longCall.quantity),
		shortCall.leg(shortCall.quantity),
		longPut.leg(longPut.quantity),
		shortPut.leg(shortPut.quantity),
	}
	slices.SortFunc(condorLegs, func(a, b Leg) int { return a.Strike.Dec().Cmp(b.Strike.Dec()) })

	for _, l := range legs {
		l.quantity = Q(0)
	}
	return Spread{
		Strategy:   IronCondor,
		Ticker:     k.ticker,
		Expiration: k.expiration,
		Quantity:   qty,
		Legs:       condorLegs,
		Date:       k.date,
	}, true
}

// pairStraddles pairs calls with puts of the same direction, in transaction
// order, at min(callQty, putQty) units per pair. Equal strikes classify as a
// straddle, distinct strikes as a strangle. Leftover single-sided quantity is
// left on the legs and falls through to vertical pairing.
func pairStraddles(k groupKey, legs []*openLeg, long bool) []Spread {
	side := func(l *openLeg) bool {
		if long {
			return l.quantity.IsPositive()
		}
		return l.quantity.IsNegative()
	}
	var calls, puts []*openLeg
	for _, l := range legs {
		if !side(l) {
			continue
		}
		if l.optionType == Call {
			calls = append(calls, l)
		} else {
			puts = append(puts, l)
		}
	}

	var out []Spread
	for len(calls) > 0 && len(puts) > 0 {
		call, put := calls[0], puts[0]
		qty := Min(call.quantity.Abs(), put.quantity.Abs())

		strategy := LongStrangle
		if call.strike.Dec().Equal(put.strike.Dec()) {
			strategy = LongStraddle
		}
		legQty := qty
		if !long {
			legQty = qty.Neg()
			if strategy == LongStrangle {
				strategy = ShortStrangle
			} else {
				strategy = ShortStraddle
			}
		}

		pairLegs := []Leg{call.leg(legQty), put.leg(legQty)}
		slices.SortFunc(pairLegs, func(a, b Leg) int { return a.Strike.Dec().Cmp(b.Strike.Dec()) })
		out = append(out, Spread{
			Strategy:   strategy,
			Ticker:     k.ticker,
			Expiration: k.expiration,
			Quantity:   qty,
			Legs:       pairLegs,
			Date:       k.date,
		})

		for _, l := range []*openLeg{call, put} {
			if long {
				l.quantity = l.quantity.Sub(qty)
			} else {
				l.quantity = l.quantity.Add(qty)
			}
		}
		if calls[0].quantity.IsZero() {
			calls = calls[1:]
		}
		if puts[0].quantity.IsZero() {
			puts = puts[1:]
		}
	}
	return out
}

// pairVerticals pairs the remaining legs of one option type into vertical
// spreads: longs and shorts are sorted independently by ascending strike and
// matched FIFO-by-strike, min(long, |short|) units at a time. Residual
// unmatched quantity on either side becomes a naked position.
func pairVerticals(k groupKey, legs []*openLeg, optionType OptionType) []Spread {
	var longs, shorts []*openLeg
	for _, l := range legs {
		if l.optionType != optionType {
			continue
		}
		if l.quantity.IsPositive() {
			longs = append(longs, l)
		} else if l.quantity.IsNegative() {
			shorts = append(shorts, l)
		}
	}
	byStrike := func(a, b *openLeg) int { return a.strike.Dec().Cmp(b.strike.Dec()) }
	slices.SortFunc(longs, byStrike)
	slices.SortFunc(shorts, byStrike)

	var out []Spread
	for len(longs) > 0 && len(shorts) > 0 {
		long, short := longs[0], shorts[0]
		qty := Min(long.quantity, short.quantity.Abs())

		out = append(out, Spread{
			Strategy:   Vertical,
			Ticker:     k.ticker,
			Expiration: k.expiration,
			OptionType: optionType,
			Quantity:   qty,
			Legs:       []Leg{long.leg(qty), short.leg(qty.Neg())},
			Date:       k.date,
		})

		long.quantity = long.quantity.Sub(qty)
		short.quantity = short.quantity.Add(qty)
		if long.quantity.IsZero() {
			longs = longs[1:]
		}
		if short.quantity.IsZero() {
			shorts = shorts[1:]
		}
	}

	for _, l := range append(longs, shorts...) {
		out = append(out, Spread{
			Strategy:   Naked,
			Ticker:     k.ticker,
			Expiration: k.expiration,
			OptionType: optionType,
			Quantity:   l.quantity,
			Legs:       []Leg{l.leg(l.quantity)},
			Date:       k.date,
		})
	}
	return out
}
