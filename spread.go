package optfolio

import (
	"fmt"
	"iter"
	"maps"
	"slices"
)

// StrategyType is a typed string identifying the classification of a position.
type StrategyType string

const (
	Vertical      StrategyType = "vertical"
	IronCondor    StrategyType = "iron-condor"
	LongStraddle  StrategyType = "long-straddle"
	ShortStraddle StrategyType = "short-straddle"
	LongStrangle  StrategyType = "long-strangle"
	ShortStrangle StrategyType = "short-strangle"
	Naked         StrategyType = "naked"
	Stock         StrategyType = "stock"
	Cash          StrategyType = "cash"
)

// IsMultiLeg reports whether the strategy is an option strategy subject to
// the dedup-by-date merge discipline (as opposed to stock delta accounting
// and cash overwrite).
func (s StrategyType) IsMultiLeg() bool {
	switch s {
	case Vertical, IronCondor, LongStraddle, ShortStraddle, LongStrangle, ShortStrangle, Naked:
		return true
	}
	return false
}

// Leg is one option contract position within a strategy.
type Leg struct {
	Strike     Money      `json:"strike"`
	OptionType OptionType `json:"optionType"`
	Quantity   Quantity   `json:"quantity"` // signed
	Price      Money      `json:"price"`
}

// matches reports whether the leg occupies the (strike, option type,
// direction) slot identified by the arguments. Strike and option type alone
// are ambiguous for an equal-strike vertical, where both sides share them;
// the quantity sign tells the two sides apart.
func (l Leg) matches(strike Money, optionType OptionType, quantity Quantity) bool {
	return l.Strike.Dec().Equal(strike.Dec()) && l.OptionType == optionType &&
		l.Quantity.IsNegative() == quantity.IsNegative()
}

// Spread is one logical strategy instance produced by pairing, before it is
// merged into the persisted position set.
//
// Condor, straddle and strangle legs are ordered by ascending strike. For a
// vertical the long leg always comes first, irrespective of numeric order;
// the key scheme sorts strikes independently so leg order never affects
// identity.
type Spread struct {
	Strategy   StrategyType `json:"strategy"`
	Ticker     string       `json:"ticker,omitempty"`
	Expiration Date         `json:"expiration,omitzero"`
	OptionType OptionType   `json:"optionType,omitempty"` // vertical and naked only
	Quantity   Quantity     `json:"quantity,omitzero"`    // magnitude for spreads, signed for naked and stock
	Legs       []Leg        `json:"legs,omitempty"`
	Price      Money        `json:"price,omitzero"` // stock reference price, or the cash amount
	Date       Date         `json:"date,omitzero"`  // latest transaction date contributing to this instance
}

func (s Spread) String() string {
	switch s.Strategy {
	case Stock:
		return fmt.Sprintf("%s %s x%s @%s", s.Strategy, s.Ticker, s.Quantity, s.Price.Dec())
	case Cash:
		return fmt.Sprintf("%s %s", s.Strategy, s.Price.Dec())
	default:
		return fmt.Sprintf("%s %s %s x%s", s.Strategy, s.Ticker, s.Expiration, s.Quantity)
	}
}

// Position is one persisted, keyed position from the store snapshot.
//
// LastTxnDate is monotonic: it only ever advances, and a merge that would not
// advance it is treated as already applied.
type Position struct {
	Key         string       `json:"key"`
	Strategy    StrategyType `json:"strategy"`
	Ticker      string       `json:"ticker,omitempty"`
	Expiration  Date         `json:"expiration,omitzero"`
	OptionType  OptionType   `json:"optionType,omitempty"`
	Quantity    Quantity     `json:"quantity,omitzero"`
	Legs        []Leg        `json:"legs,omitempty"`
	Price       Money        `json:"price,omitzero"`
	LastTxnDate Date         `json:"lastTxnDate,omitzero"`
}

// NewPosition builds the persisted form of a freshly created spread.
func NewPosition(s Spread) Position {
	return Position{
		Key:         s.Key(),
		Strategy:    s.Strategy,
		Ticker:      s.Ticker,
		Expiration:  s.Expiration,
		OptionType:  s.OptionType,
		Quantity:    s.Quantity,
		Legs:        slices.Clone(s.Legs),
		Price:       s.Price,
		LastTxnDate: s.Date,
	}
}

// Snapshot is a keyed, read-only view of the persisted position set taken
// before a reconciliation run. The engine never mutates it; Apply returns a
// new Snapshot.
type Snapshot map[string]Position

// NewSnapshot builds a snapshot from a list of positions.
func NewSnapshot(positions ...Position) Snapshot {
	s := make(Snapshot, len(positions))
	for _, p := range positions {
		s[p.Key] = p
	}
	return s
}

// Positions iterates over positions in stable key order.
func (s Snapshot) Positions() iter.Seq[Position] {
	return func(yield func(Position) bool) {
		keys := slices.Collect(maps.Keys(s))
		slices.Sort(keys)
		for _, key := range keys {
			if !yield(s[key]) {
				return
			}
		}
	}
}

// StockCutoffs returns, per ticker, the last transaction date of the
// persisted stock positions. It is the "only since last run" cutoff map fed
// to the stock aggregator on incremental imports.
func (s Snapshot) StockCutoffs() map[string]Date {
	cutoffs := make(map[string]Date)
	for _, p := range s {
		if p.Strategy == Stock && !p.LastTxnDate.IsZero() {
			cutoffs[p.Ticker] = p.LastTxnDate
		}
	}
	return cutoffs
}

// LegUpdate is one leg of an existing position after a merge, to be written
// back by the store.
type LegUpdate struct {
	Key         string       `json:"key"`
	Strategy    StrategyType `json:"strategy"`
	Strike      Money        `json:"strike,omitzero"`
	OptionType  OptionType   `json:"optionType,omitempty"`
	Quantity    Quantity     `json:"quantity,omitzero"`
	Price       Money        `json:"price,omitzero"`
	LastTxnDate Date         `json:"lastTxnDate,omitzero"`
}

// MergeResult is the complete outcome of one incremental merge. Skipped
// counts batch entries discarded as already applied; it is a deliberate
// no-op, not an error.
type MergeResult struct {
	Updated []LegUpdate
	Created []Spread
	Skipped int
}

// multiLegQuantity derives a position's quantity from its legs after an
// update: the signed quantity for a single naked leg, otherwise the number
// of complete strategy units, the smallest absolute leg quantity.
func multiLegQuantity(legs []Leg) Quantity {
	if len(legs) == 0 {
		return Quantity{}
	}
	if len(legs) == 1 {
		return legs[0].Quantity
	}
	q := legs[0].Quantity.Abs()
	for _, l := range legs[1:] {
		q = Min(q, l.Quantity.Abs())
	}
	return q
}

// Apply returns a new snapshot with the merge result applied. The receiver
// is left untouched; committing the result to durable storage is the store's
// responsibility.
func (s Snapshot) Apply(r MergeResult) Snapshot {
	next := make(Snapshot, len(s)+len(r.Created))
	maps.Copy(next, s)
	for _, c := range r.Created {
		p := NewPosition(c)
		next[p.Key] = p
	}
	for _, u := range r.Updated {
		p, ok := next[u.Key]
		if !ok {
			continue
		}
		switch p.Strategy {
		case Stock:
			p.Quantity = u.Quantity
			p.Price = u.Price
		case Cash:
			p.Price = u.Price
		default:
			p.Legs = slices.Clone(p.Legs)
			for i, leg := range p.Legs {
				if leg.matches(u.Strike, u.OptionType, u.Quantity) {
					p.Legs[i].Quantity = u.Quantity
					p.Legs[i].Price = u.Price
				}
			}
			p.Quantity = multiLegQuantity(p.Legs)
		}
		p.LastTxnDate = Latest(p.LastTxnDate, u.LastTxnDate)
		next[u.Key] = p
	}
	return next
}
