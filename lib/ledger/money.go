// Package ledger holds the arithmetic of the ledger: invoice line and
// invoice totals, balance aggregation over transaction entries and the
// soft-delete lifecycle. Nothing in here touches the database.
package ledger

import (
	"errors"

	"github.com/shopspring/decimal"
)

// CurrencyPlaces is the precision every stored money value is rounded to.
const CurrencyPlaces = 2

var (
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	ErrInvalidPrice    = errors.New("unit price must not be negative")
	ErrInvalidDiscount = errors.New("discount must be between 0 and 100")
	ErrInvalidVATRate  = errors.New("vat rate must not be negative")
	ErrInvalidVATMode  = errors.New("unknown vat mode")
	ErrInvalidAmount   = errors.New("amount must be greater than zero")
)

var hundred = decimal.NewFromInt(100)

// Round rounds half away from zero to two places, which is round-half-up
// for the non-negative amounts the ledger works with.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(CurrencyPlaces)
}

// Percent returns pct percent of d, unrounded.
func Percent(d, pct decimal.Decimal) decimal.Decimal {
	return d.Mul(pct).Div(hundred)
}
