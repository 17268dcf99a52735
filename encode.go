package optfolio

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// This file implements the normalized records format: a JSONL stream, one
// record per line, the hand-off format between the external broker parser
// and the reconciliation engine. It is meant to stay human readable and easy
// to diff.

// record is the on-disk shape shared by option and stock lines. The "kind"
// property discriminates.
type record struct {
	Kind       string          `json:"kind"`
	Date       Date            `json:"date"`
	Type       TxnType         `json:"type,omitempty"`
	Ticker     string          `json:"ticker"`
	Expiration Date            `json:"expiration,omitzero"`
	Strike     decimal.Decimal `json:"strike"`
	OptionType OptionType      `json:"optionType,omitempty"`
	Quantity   Quantity        `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency,omitempty"`
}

const (
	kindOption = "option"
	kindStock  = "stock"
)

// DecodeRecords decodes a JSONL stream of normalized records into a batch.
func DecodeRecords(r io.Reader) (Batch, error) {
	var b Batch
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue // Skip empty lines
		}
		var rec record
		if err := json.Unmarshal(line, &rec); err != nil {
			return Batch{}, fmt.Errorf("cannot parse record line %q: %w", string(line), err)
		}
		cur := rec.Currency
		if cur == "" {
			cur = "USD"
		}
		switch rec.Kind {
		case kindOption:
			b.Options = append(b.Options, Transaction{
				Ticker:     rec.Ticker,
				Expiration: rec.Expiration,
				Strike:     M(rec.Strike, cur),
				OptionType: rec.OptionType,
				Quantity:   rec.Quantity,
				Price:      M(rec.Price, cur),
				Amount:     M(rec.Amount, cur),
				Date:       rec.Date,
				Type:       rec.Type,
			})
		case kindStock:
			b.Stocks = append(b.Stocks, StockTransaction{
				Ticker:   rec.Ticker,
				Date:     rec.Date,
				Quantity: rec.Quantity,
				Price:    M(rec.Price, cur),
				Amount:   M(rec.Amount, cur),
			})
		default:
			return Batch{}, fmt.Errorf("unknown record kind %q in line %q", rec.Kind, string(line))
		}
	}
	if err := scanner.Err(); err != nil {
		return Batch{}, fmt.Errorf("cannot read records: %w", err)
	}
	return b, nil
}

// EncodeRecords writes the batch as a JSONL stream with a stable field order.
func EncodeRecords(w io.Writer, b Batch) error {
	for _, t := range b.Options {
		var obj jsonObjectWriter
		obj.Append("kind", kindOption)
		obj.Append("date", t.Date)
		obj.Append("type", t.Type)
		obj.Append("ticker", t.Ticker)
		obj.Append("expiration", t.Expiration)
		obj.Append("strike", t.Strike.Dec())
		obj.Append("optionType", t.OptionType)
		obj.Append("quantity", t.Quantity)
		obj.Append("price", t.Price.Dec())
		obj.Append("amount", t.Amount.Dec())
		obj.Optional("currency", t.Price.Currency())
		if err := writeLine(w, &obj); err != nil {
			return err
		}
	}
	for _, t := range b.Stocks {
		var obj jsonObjectWriter
		obj.Append("kind", kindStock)
		obj.Append("date", t.Date)
		obj.Append("ticker", t.Ticker)
		obj.Append("quantity", t.Quantity)
		obj.Append("price", t.Price.Dec())
		obj.Append("amount", t.Amount.Dec())
		obj.Optional("currency", t.Price.Currency())
		if err := writeLine(w, &obj); err != nil {
			return err
		}
	}
	return nil
}

func writeLine(w io.Writer, obj *jsonObjectWriter) error {
	data, err := obj.MarshalJSON()
	if err != nil {
		return fmt.Errorf("cannot encode record: %w", err)
	}
	if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
		return fmt.Errorf("cannot write record: %w", err)
	}
	return nil
}
