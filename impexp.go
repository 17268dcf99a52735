package optfolio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
)

// This file imports raw broker activity CSV exports into normalized records.
//
// The export format is column-oriented:
//
//	Date,Action,Symbol,Expiration,Strike,Type,Quantity,Price,Amount
//
// Continuation rows of a multi-leg order leave Symbol and Expiration blank;
// they inherit the values of the previous row. The carry-forward is resolved
// here so the pairing and merge logic never sees a blank field.

// ImportActivity reads a broker activity CSV export and returns a normalized
// batch. Rows with an unparseable action are skipped with the returned
// warnings; a partial result is more useful than a failed import.
func ImportActivity(r io.Reader) (Batch, []string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 9
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return Batch{}, nil, fmt.Errorf("cannot read activity header: %w", err)
	}
	if !strings.EqualFold(header[0], "Date") || !strings.EqualFold(header[1], "Action") {
		return Batch{}, nil, fmt.Errorf("unexpected activity header: %v", header)
	}

	var b Batch
	var warnings []string
	var lastSymbol string
	var lastExpiration Date

	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Batch{}, nil, fmt.Errorf("cannot read activity line %d: %w", line, err)
		}

		symbol := strings.TrimSpace(row[2])
		if symbol == "" {
			symbol = lastSymbol
		}
		lastSymbol = symbol
		if symbol == "" {
			warnings = append(warnings, fmt.Sprintf("line %d: no symbol to carry forward, row dropped", line))
			continue
		}

		day, err := ParseDate(row[0])
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("line %d: %v, row dropped", line, err))
			continue
		}

		quantity, err := decimal.NewFromString(row[6])
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("line %d: invalid quantity %q, row dropped", line, row[6]))
			continue
		}
		price, err := decimal.NewFromString(strings.TrimPrefix(row[7], "$"))
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("line %d: invalid price %q, row dropped", line, row[7]))
			continue
		}
		amount, err := decimal.NewFromString(strings.TrimPrefix(row[8], "$"))
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("line %d: invalid amount %q, row dropped", line, row[8]))
			continue
		}

		action := strings.TrimSpace(row[1])
		if action == "Buy" || action == "Sell" {
			b.Stocks = append(b.Stocks, StockTransaction{
				Ticker:   symbol,
				Date:     day,
				Quantity: Q(quantity),
				Price:    USD(price),
				Amount:   USD(amount),
			})
			continue
		}

		txnType, err := ParseTxnType(action)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("line %d: %v, row dropped", line, err))
			continue
		}

		expiration := lastExpiration
		if raw := strings.TrimSpace(row[3]); raw != "" {
			expiration, err = ParseDate(raw)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("line %d: %v, row dropped", line, err))
				continue
			}
		}
		lastExpiration = expiration
		if expiration.IsZero() {
			warnings = append(warnings, fmt.Sprintf("line %d: no expiration to carry forward, row dropped", line))
			continue
		}

		strike, err := decimal.NewFromString(strings.TrimPrefix(row[4], "$"))
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("line %d: invalid strike %q, row dropped", line, row[4]))
			continue
		}
		optionType, err := ParseOptionType(strings.TrimSpace(row[5]))
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("line %d: %v, row dropped", line, err))
			continue
		}

		b.Options = append(b.Options, Transaction{
			Ticker:     symbol,
			Expiration: expiration,
			Strike:     USD(strike),
			OptionType: optionType,
			Quantity:   Q(quantity),
			Price:      USD(price),
			Amount:     USD(amount),
			Date:       day,
			Type:       txnType,
		})
	}
	return b, warnings, nil
}
