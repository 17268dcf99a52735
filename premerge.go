package optfolio

import "slices"

// weightedPrice blends two priced quantities into a quantity-weighted average
// price: (oldQty*oldPrice + newQty*newPrice) / (oldQty+newQty). A zero total
// quantity yields a zero price rather than a division by zero.
func weightedPrice(oldQty Quantity, oldPrice Money, newQty Quantity, newPrice Money) Money {
	total := oldQty.Add(newQty)
	if total.IsZero() {
		return M(0, cur(oldPrice, newPrice))
	}
	return oldPrice.Mul(oldQty).Add(newPrice.Mul(newQty)).Div(total)
}

// blendLegs folds the legs of an incoming spread into the accumulated legs of
// the same position. Legs are matched by (strike, option type, direction),
// which is total for spreads colliding to the same key.
func blendLegs(acc []Leg, in []Leg) []Leg {
	acc = slices.Clone(acc)
	for _, leg := range in {
		for i, have := range acc {
			if have.matches(leg.Strike, leg.OptionType, leg.Quantity) {
				acc[i].Price = weightedPrice(have.Quantity, have.Price, leg.Quantity, leg.Price)
				acc[i].Quantity = have.Quantity.Add(leg.Quantity)
				break
			}
		}
	}
	return acc
}

// PreMerge collapses spread instances from one import batch that resolve to
// the same position key.
//
// Incremental FIFO pairing can split a single strategy across multiple group
// iterations; pre-merging guarantees the incremental merge sees at most one
// candidate per key per run. Colliding quantities are summed and per-leg
// prices are recomputed as quantity-weighted averages; cash amounts are
// simply summed.
func PreMerge(spreads []Spread) []Spread {
	out := make([]Spread, 0, len(spreads))
	index := make(map[string]int, len(spreads))

	for _, s := range spreads {
		key := s.Key()
		i, seen := index[key]
		if !seen {
			index[key] = len(out)
			out = append(out, s)
			continue
		}

		have := out[i]
		switch s.Strategy {
		case Cash:
			have.Price = have.Price.Add(s.Price)
		case Stock:
			have.Price = weightedPrice(have.Quantity, have.Price, s.Quantity, s.Price)
			have.Quantity = have.Quantity.Add(s.Quantity)
		default:
			have.Legs = blendLegs(have.Legs, s.Legs)
			have.Quantity = have.Quantity.Add(s.Quantity)
		}
		have.Date = Latest(have.Date, s.Date)
		out[i] = have
	}
	return out
}
