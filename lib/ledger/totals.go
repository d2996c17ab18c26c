package ledger

import (
	"errors"

	"github.com/shopspring/decimal"
)

type DiscountKind string

const (
	DiscountNone    DiscountKind = ""
	DiscountPercent DiscountKind = "percent"
	DiscountFixed   DiscountKind = "fixed"
)

var ErrDiscountExceedsSubtotal = errors.New("invoice discount exceeds subtotal")

// InvoiceDiscount is the invoice level discount. Value is a percentage for
// DiscountPercent and an amount for DiscountFixed.
type InvoiceDiscount struct {
	Kind  DiscountKind
	Value decimal.Decimal
}

type Totals struct {
	Subtotal   decimal.Decimal
	Discount   decimal.Decimal
	TaxTotal   decimal.Decimal
	GrandTotal decimal.Decimal
}

func (d InvoiceDiscount) amount(subtotal decimal.Decimal) (decimal.Decimal, error) {
	switch d.Kind {
	case DiscountNone:
		return decimal.Zero, nil
	case DiscountPercent:
		if d.Value.IsNegative() || d.Value.GreaterThan(hundred) {
			return decimal.Zero, ErrInvalidDiscount
		}
		return Round(Percent(subtotal, d.Value)), nil
	case DiscountFixed:
		if d.Value.IsNegative() {
			return decimal.Zero, ErrInvalidDiscount
		}
		if d.Value.GreaterThan(subtotal) {
			return decimal.Zero, ErrDiscountExceedsSubtotal
		}
		return Round(d.Value), nil
	}
	return decimal.Zero, ErrInvalidDiscount
}

// CalculateTotals sums the line results of the live lines of an invoice and
// applies the invoice discount. Callers pass only non-deleted lines.
func CalculateTotals(lines []LineResult, discount InvoiceDiscount) (Totals, error) {
	t := Totals{Subtotal: decimal.Zero, TaxTotal: decimal.Zero}
	for _, l := range lines {
		t.Subtotal = t.Subtotal.Add(l.Net)
		t.TaxTotal = t.TaxTotal.Add(l.Tax)
	}
	amount, err := discount.amount(t.Subtotal)
	if err != nil {
		return Totals{}, err
	}
	t.Discount = amount
	t.GrandTotal = t.Subtotal.Sub(t.Discount).Add(t.TaxTotal)
	return t, nil
}
