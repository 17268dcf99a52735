package optfolio

// Merge reconciles a pre-merged batch against a snapshot of the persisted
// position set.
//
// Batch entries with an unknown key are emitted as created positions. For
// known keys the discipline depends on the strategy:
//
//   - stock: the batch quantity is a net change and is added to the existing
//     quantity (delta accounting); the reference price and LastTxnDate follow
//     the batch entry when it is newer.
//   - cash: the amount is overwritten unconditionally, cash has no history to
//     dedupe against.
//   - multi-leg: a batch entry whose date is not strictly after the existing
//     position's LastTxnDate is discarded as already applied; otherwise every
//     leg is blended by quantity-weighted average price and LastTxnDate
//     advances.
//
// Running Merge twice with the same batch, the second time against the
// applied snapshot, is a no-op: nothing updated, nothing created, every
// multi-leg entry counted as skipped.
//
// Merge never mutates batch or snap; the caller applies the result, atomically
// or not at all.
func Merge(batch []Spread, snap Snapshot) MergeResult {
	var r MergeResult
	for _, s := range batch {
		key := s.Key()
		existing, ok := snap[key]
		if !ok {
			if s.Strategy == Stock && s.Quantity.IsZero() && s.Date.IsZero() {
				// an empty placeholder entry, nothing to create.
				r.Skipped++
				continue
			}
			r.Created = append(r.Created, s)
			continue
		}

		switch s.Strategy {
		case Stock:
			if s.Quantity.IsZero() && s.Date.IsZero() {
				r.Skipped++
				continue
			}
			update := LegUpdate{
				Key:         key,
				Strategy:    Stock,
				Quantity:    existing.Quantity.Add(s.Quantity),
				Price:       existing.Price,
				LastTxnDate: existing.LastTxnDate,
			}
			if s.Date.After(existing.LastTxnDate) {
				update.Price = s.Price
				update.LastTxnDate = s.Date
			}
			r.Updated = append(r.Updated, update)

		case Cash:
			r.Updated = append(r.Updated, LegUpdate{
				Key:         key,
				Strategy:    Cash,
				Price:       s.Price,
				LastTxnDate: Latest(existing.LastTxnDate, s.Date),
			})

		default:
			// Idempotence guard: replaying a transaction file that ends at or
			// before the recorded LastTxnDate produces zero net change.
			if !s.Date.After(existing.LastTxnDate) {
				r.Skipped++
				continue
			}
			for _, leg := range s.Legs {
				for _, have := range existing.Legs {
					if !have.matches(leg.Strike, leg.OptionType, leg.Quantity) {
						continue
					}
					r.Updated = append(r.Updated, LegUpdate{
						Key:         key,
						Strategy:    s.Strategy,
						Strike:      leg.Strike,
						OptionType:  leg.OptionType,
						Quantity:    have.Quantity.Add(leg.Quantity),
						Price:       weightedPrice(have.Quantity, have.Price, leg.Quantity, leg.Price),
						LastTxnDate: s.Date,
					})
					break
				}
			}
		}
	}
	return r
}
