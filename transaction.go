package optfolio

import "fmt"

// OptionType distinguishes calls from puts.
type OptionType string

const (
	Call OptionType = "CALL"
	Put  OptionType = "PUT"
)

// ParseOptionType parses a string into an OptionType.
func ParseOptionType(s string) (OptionType, error) {
	switch s {
	case "CALL", "Call", "call", "C":
		return Call, nil
	case "PUT", "Put", "put", "P":
		return Put, nil
	default:
		return "", fmt.Errorf("unknown option type: %q", s)
	}
}

// TxnType is the brokerage category of an option transaction.
type TxnType string

const (
	BoughtToOpen    TxnType = "bought-to-open"
	SoldToOpen      TxnType = "sold-to-open"
	SoldToClose     TxnType = "sold-to-close"
	BoughtToCover   TxnType = "bought-to-cover"
	OptionExercised TxnType = "option-exercised"
	OptionAssigned  TxnType = "option-assigned"
	OptionExpired   TxnType = "option-expired"
)

// IsOpen reports whether the transaction opens a position.
func (t TxnType) IsOpen() bool { return t == BoughtToOpen || t == SoldToOpen }

// IsClosed reports whether the transaction closes a position with an explicit
// market order.
func (t TxnType) IsClosed() bool { return t == SoldToClose || t == BoughtToCover }

// IsExercised reports whether the option was exercised.
func (t TxnType) IsExercised() bool { return t == OptionExercised }

// IsAssigned reports whether the option was assigned.
func (t TxnType) IsAssigned() bool { return t == OptionAssigned }

// IsExpired reports whether the option expired.
func (t TxnType) IsExpired() bool { return t == OptionExpired }

// ParseTxnType parses the action labels used by broker activity exports.
func ParseTxnType(s string) (TxnType, error) {
	switch s {
	case "Bought To Open", "bought-to-open":
		return BoughtToOpen, nil
	case "Sold To Open", "sold-to-open":
		return SoldToOpen, nil
	case "Sold To Close", "sold-to-close":
		return SoldToClose, nil
	case "Bought To Cover", "bought-to-cover":
		return BoughtToCover, nil
	case "Option Exercised", "option-exercised":
		return OptionExercised, nil
	case "Option Assigned", "option-assigned":
		return OptionAssigned, nil
	case "Expired", "option-expired":
		return OptionExpired, nil
	default:
		return "", fmt.Errorf("unknown transaction type: %q", s)
	}
}

// Transaction is one normalized option record from a brokerage history.
//
// It is produced by an external parser: dates resolve to a calendar day, the
// quantity sign already encodes direction (positive long, negative short),
// and the TxnType groups are mutually exclusive. The engine never mutates a
// Transaction.
type Transaction struct {
	Ticker     string
	Expiration Date
	Strike     Money
	OptionType OptionType
	Quantity   Quantity // signed; positive = long, negative = short
	Price      Money    // per contract
	Amount     Money    // signed cash effect
	Date       Date
	Type       TxnType
}

func (t Transaction) String() string {
	return fmt.Sprintf("%s %s %s %s %s x%s @%s", t.Date, t.Type, t.Ticker, t.Strike.Dec(), t.OptionType, t.Quantity, t.Price.Dec())
}

// StockTransaction is one normalized equity record. Stock has no pairing,
// only aggregation.
type StockTransaction struct {
	Ticker   string
	Date     Date
	Quantity Quantity // signed; positive = buy, negative = sell
	Price    Money
	Amount   Money
}

func (t StockTransaction) String() string {
	return fmt.Sprintf("%s %s x%s @%s", t.Date, t.Ticker, t.Quantity, t.Price.Dec())
}
