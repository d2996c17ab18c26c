package ledger

import (
	"github.com/shopspring/decimal"
)

type Direction string

const (
	Inflow  Direction = "inflow"
	Outflow Direction = "outflow"
)

func (d Direction) Valid() bool {
	return d == Inflow || d == Outflow
}

// Amount is the value of a ledger entry. It is either Local or Converted;
// the unexported marker keeps the set closed.
type Amount interface {
	// Face is the amount in the entry's own currency.
	Face() decimal.Decimal
	isAmount()
}

// Local is an amount recorded without any exchange information.
type Local struct {
	Value decimal.Decimal
}

// Converted is a foreign currency amount recorded together with the rate
// used and the resulting base currency equivalent.
type Converted struct {
	Value     decimal.Decimal
	Rate      decimal.Decimal
	BaseValue decimal.Decimal
}

func (l Local) Face() decimal.Decimal     { return l.Value }
func (c Converted) Face() decimal.Decimal { return c.Value }

func (Local) isAmount()     {}
func (Converted) isAmount() {}

// Entry is the projection of a non-deleted transaction used by the
// aggregations.
type Entry struct {
	Direction Direction
	Currency  string
	Amount    Amount
}

func (e Entry) signed(v decimal.Decimal) decimal.Decimal {
	if e.Direction == Outflow {
		return v.Neg()
	}
	return v
}

// NewAmount builds the amount variant from nullable rate and base columns.
// Both must be present, and the currency must differ from the base
// currency, for the entry to count as converted.
func NewAmount(value decimal.Decimal, currency, baseCurrency string, rate, baseValue decimal.NullDecimal) Amount {
	if rate.Valid && baseValue.Valid && currency != baseCurrency {
		return Converted{Value: value, Rate: rate.Decimal, BaseValue: baseValue.Decimal}
	}
	return Local{Value: value}
}
