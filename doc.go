// Package optfolio reconciles a brokerage's raw transaction history into a
// consolidated set of multi-leg options and equity positions.
//
// The engine turns an unordered stream of buy/sell/exercise/assignment
// records into paired strategies (iron condors, straddles, strangles,
// vertical spreads, naked legs), gives every position a canonical
// collision-free key so repeated imports neither duplicate nor drop
// quantity, and resolves a realized closing price per leg even when the
// closing event is an exercise or assignment rather than a matching order.
//
// A reconciliation run is synchronous and pure: [Reconcile] takes a batch of
// normalized records and a read-only [Snapshot] of the persisted positions,
// and returns a [Result] with the merge outcome and the closing prices.
// Applying the outcome to durable storage is the store's job; replaying the
// same batch against the applied snapshot is a no-op.
package optfolio
