package optfolio

// Batch is one import of normalized brokerage records, the unit of a
// reconciliation run.
type Batch struct {
	Options []Transaction
	Stocks  []StockTransaction
}

// CashPosition sums the signed cash effect of every record in the batch into
// the single sentinel-keyed cash position.
func (b Batch) CashPosition() Spread {
	var total Money
	var last Date
	for _, t := range b.Options {
		total = total.Add(t.Amount)
		last = Latest(last, t.Date)
	}
	for _, t := range b.Stocks {
		total = total.Add(t.Amount)
		last = Latest(last, t.Date)
	}
	return Spread{Strategy: Cash, Price: total, Date: last}
}

// Result is the complete outcome of one reconciliation run: the merge result
// to be applied to the store, and the resolved closing prices for report
// annotation.
type Result struct {
	Merge   MergeResult
	Closing ClosingPrices
}

// Reconcile runs the full pipeline against one batch: pairing, stock
// aggregation with the snapshot's per-ticker cutoffs, cash, pre-merge,
// incremental merge, and closing price resolution.
//
// The run is synchronous and pure: neither the batch nor the snapshot is
// mutated, and all outputs are returned as complete collections. It is the
// caller's responsibility to apply the merge result atomically or not at
// all; an interrupted run commits nothing and the next retry lands on the
// same snapshot.
func Reconcile(b Batch, snap Snapshot, today Date) Result {
	spreads := Pair(b.Options)
	spreads = append(spreads, AggregateStocks(b.Stocks, snap.StockCutoffs())...)
	if cash := b.CashPosition(); !cash.Date.IsZero() {
		spreads = append(spreads, cash)
	}

	return Result{
		Merge:   Merge(PreMerge(spreads), snap),
		Closing: ResolveClosingPrices(b.Options, b.Stocks, today),
	}
}
