package ledger

import (
	"github.com/shopspring/decimal"
)

type VATMode string

const (
	// VATInclusive means the stated price already contains the tax.
	VATInclusive VATMode = "inclusive"
	// VATExclusive means the tax is added on top of the stated price.
	VATExclusive VATMode = "exclusive"
)

func (m VATMode) Valid() bool {
	return m == VATInclusive || m == VATExclusive
}

// LineInput carries the inputs of one invoice line.
type LineInput struct {
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	OptionSurcharge decimal.Decimal
	DiscountPercent decimal.Decimal
	VATRate         decimal.Decimal
	VATMode         VATMode
}

// LineResult carries the derived amounts of one invoice line.
type LineResult struct {
	DiscountAmount decimal.Decimal
	Net            decimal.Decimal
	Tax            decimal.Decimal
	Gross          decimal.Decimal
}

func (in LineInput) Validate() error {
	if !in.Quantity.IsPositive() {
		return ErrInvalidQuantity
	}
	if in.UnitPrice.IsNegative() || in.UnitPrice.Add(in.OptionSurcharge).IsNegative() {
		return ErrInvalidPrice
	}
	if in.DiscountPercent.IsNegative() || in.DiscountPercent.GreaterThan(hundred) {
		return ErrInvalidDiscount
	}
	if in.VATRate.IsNegative() {
		return ErrInvalidVATRate
	}
	if !in.VATMode.Valid() {
		return ErrInvalidVATMode
	}
	return nil
}

// CalculateLine derives net, tax and gross for a single line. Intermediate
// values keep full precision; only the outputs are rounded, and the rounded
// outputs always satisfy Net + Tax == Gross.
func CalculateLine(in LineInput) (LineResult, error) {
	if err := in.Validate(); err != nil {
		return LineResult{}, err
	}
	base := in.Quantity.Mul(in.UnitPrice.Add(in.OptionSurcharge))
	discount := Percent(base, in.DiscountPercent)
	discounted := base.Sub(discount)

	res := LineResult{DiscountAmount: Round(discount)}
	switch in.VATMode {
	case VATInclusive:
		// tax is backed out of the price: discounted * r / (100 + r)
		res.Gross = Round(discounted)
		res.Tax = Round(discounted.Mul(in.VATRate).Div(hundred.Add(in.VATRate)))
		res.Net = res.Gross.Sub(res.Tax)
	case VATExclusive:
		res.Net = Round(discounted)
		res.Tax = Round(Percent(discounted, in.VATRate))
		res.Gross = res.Net.Add(res.Tax)
	}
	return res, nil
}
