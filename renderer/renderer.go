// Package renderer renders reconciliation results as markdown, ready to be
// printed raw or through a terminal markdown renderer.
package renderer

import (
	"fmt"
	"strings"

	"github.com/optfolio/optfolio"
)

// Positions renders the position set as a markdown table, one row per leg,
// grouped by position key.
func Positions(snap optfolio.Snapshot) string {
	var b strings.Builder
	b.WriteString("# Positions\n\n")
	b.WriteString("| Key | Strategy | Strike | Type | Qty | Price | Last Txn |\n")
	b.WriteString("|---|---|---:|---|---:|---:|---|\n")

	rows := 0
	for p := range snap.Positions() {
		switch p.Strategy {
		case optfolio.Cash:
			fmt.Fprintf(&b, "| %s | %s | | | | %s | %s |\n",
				p.Key, p.Strategy, p.Price.SignedString(), date(p.LastTxnDate))
			rows++
		case optfolio.Stock:
			fmt.Fprintf(&b, "| %s | %s | | | %s | %s | %s |\n",
				p.Key, p.Strategy, p.Quantity, p.Price, date(p.LastTxnDate))
			rows++
		default:
			for i, leg := range p.Legs {
				key := p.Key
				last := date(p.LastTxnDate)
				if i > 0 {
					// continuation rows repeat neither the key nor the date.
					key, last = "", ""
				}
				fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s |\n",
					key, p.Strategy, leg.Strike.Dec(), leg.OptionType, leg.Quantity, leg.Price, last)
				rows++
			}
		}
	}
	if rows == 0 {
		return "# Positions\n\nNo positions.\n"
	}
	return b.String()
}

// ClosingPrices renders the resolved closing prices as a markdown table in
// stable key order.
func ClosingPrices(prices optfolio.ClosingPrices) string {
	if len(prices) == 0 {
		return "# Closing Prices\n\nNo closed legs.\n"
	}
	var b strings.Builder
	b.WriteString("# Closing Prices\n\n")
	b.WriteString("| Contract | Close |\n")
	b.WriteString("|---|---:|\n")
	for key, price := range prices.Sorted() {
		fmt.Fprintf(&b, "| %s | %s |\n", key, price)
	}
	return b.String()
}

// MergeSummary renders the outcome of one reconciliation run.
func MergeSummary(r optfolio.MergeResult) string {
	var b strings.Builder
	b.WriteString("# Reconciliation\n\n")
	fmt.Fprintf(&b, "- new positions: %d\n", len(r.Created))
	fmt.Fprintf(&b, "- updated legs: %d\n", len(r.Updated))
	fmt.Fprintf(&b, "- skipped as already applied: %d\n", r.Skipped)
	if len(r.Created) > 0 {
		b.WriteString("\n## New\n\n")
		for _, s := range r.Created {
			fmt.Fprintf(&b, "- %s\n", s)
		}
	}
	return b.String()
}

// Validation renders a broker statement comparison.
func Validation(report optfolio.ValidationReport) string {
	if report.IsClean() {
		return "# Broker Validation\n\nPositions match the broker statement.\n"
	}
	var b strings.Builder
	b.WriteString("# Broker Validation\n\n")
	if len(report.Missing) > 0 {
		fmt.Fprintf(&b, "- missing from history: %s\n", strings.Join(report.Missing, ", "))
	}
	if len(report.Extra) > 0 {
		fmt.Fprintf(&b, "- absent from statement: %s\n", strings.Join(report.Extra, ", "))
	}
	if len(report.Mismatches) > 0 {
		b.WriteString("\n| Ticker | Statement | History |\n|---|---:|---:|\n")
		for _, m := range report.Mismatches {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", m.Ticker, m.Reported, m.Held)
		}
	}
	return b.String()
}

func date(d optfolio.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}
