package optfolio

import (
	"slices"
	"strings"
)

// QuantityMismatch reports a per-ticker disagreement between the reconciled
// option contracts and the broker statement.
type QuantityMismatch struct {
	Ticker   string
	Reported Quantity // net contracts per the broker statement
	Held     Quantity // net contracts per the reconciled positions
}

// ValidationReport is the outcome of comparing the reconciled position set
// with a per-ticker "quantity from broker statement" map. Warnings are
// surfaced as data, never as errors: brokerage data is messy and the caller
// decides what to do with the discrepancies.
type ValidationReport struct {
	Missing    []string // tickers reported by the broker with no position in history
	Mismatches []QuantityMismatch
	Extra      []string // tickers with positions absent from the broker statement
}

// CompareWithBroker diffs the snapshot's option positions against the net
// contract quantities reported by the broker statement.
func CompareWithBroker(snap Snapshot, reported map[string]Quantity) ValidationReport {
	held := make(map[string]Quantity)
	for _, p := range snap {
		if !p.Strategy.IsMultiLeg() {
			continue
		}
		net := held[p.Ticker]
		for _, leg := range p.Legs {
			net = net.Add(leg.Quantity)
		}
		held[p.Ticker] = net
	}

	var report ValidationReport
	for ticker, want := range reported {
		have, ok := held[ticker]
		if !ok {
			report.Missing = append(report.Missing, ticker)
			continue
		}
		if !have.Equal(want) {
			report.Mismatches = append(report.Mismatches, QuantityMismatch{
				Ticker:   ticker,
				Reported: want,
				Held:     have,
			})
		}
	}
	for ticker := range held {
		if _, ok := reported[ticker]; !ok {
			report.Extra = append(report.Extra, ticker)
		}
	}

	slices.SortFunc(report.Missing, strings.Compare)
	slices.SortFunc(report.Extra, strings.Compare)
	slices.SortFunc(report.Mismatches, func(a, b QuantityMismatch) int {
		return strings.Compare(a.Ticker, b.Ticker)
	})
	return report
}

// IsClean reports whether the broker statement and the reconciled positions
// fully agree.
func (r ValidationReport) IsClean() bool {
	return len(r.Missing) == 0 && len(r.Mismatches) == 0 && len(r.Extra) == 0
}
