package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lines(t *testing.T, inputs ...LineInput) []LineResult {
	results := make([]LineResult, 0, len(inputs))
	for _, in := range inputs {
		res, err := CalculateLine(in)
		require.NoError(t, err)
		results = append(results, res)
	}
	return results
}

func TestCalculateTotalsWithoutDiscount(t *testing.T) {
	results := lines(t,
		LineInput{Quantity: d("1"), UnitPrice: d("100"), VATRate: d("20"), VATMode: VATExclusive},
		LineInput{Quantity: d("2"), UnitPrice: d("50"), DiscountPercent: d("10"), VATRate: d("0"), VATMode: VATExclusive},
	)
	totals, err := CalculateTotals(results, InvoiceDiscount{})
	require.NoError(t, err)
	assert.Equal(t, "190.00", totals.Subtotal.StringFixed(2))
	assert.Equal(t, "20.00", totals.TaxTotal.StringFixed(2))
	assert.Equal(t, "0.00", totals.Discount.StringFixed(2))
	assert.Equal(t, "210.00", totals.GrandTotal.StringFixed(2))
}

func TestCalculateTotalsPercentDiscount(t *testing.T) {
	results := lines(t,
		LineInput{Quantity: d("1"), UnitPrice: d("120"), VATRate: d("20"), VATMode: VATInclusive},
	)
	totals, err := CalculateTotals(results, InvoiceDiscount{Kind: DiscountPercent, Value: d("5")})
	require.NoError(t, err)
	assert.Equal(t, "100.00", totals.Subtotal.StringFixed(2))
	assert.Equal(t, "5.00", totals.Discount.StringFixed(2))
	assert.Equal(t, "115.00", totals.GrandTotal.StringFixed(2))
}

func TestCalculateTotalsFixedDiscount(t *testing.T) {
	results := lines(t,
		LineInput{Quantity: d("1"), UnitPrice: d("100"), VATRate: d("20"), VATMode: VATExclusive},
	)
	totals, err := CalculateTotals(results, InvoiceDiscount{Kind: DiscountFixed, Value: d("12.5")})
	require.NoError(t, err)
	assert.Equal(t, "107.50", totals.GrandTotal.StringFixed(2))

	_, err = CalculateTotals(results, InvoiceDiscount{Kind: DiscountFixed, Value: d("100.01")})
	assert.ErrorIs(t, err, ErrDiscountExceedsSubtotal)

	_, err = CalculateTotals(results, InvoiceDiscount{Kind: DiscountPercent, Value: d("101")})
	assert.ErrorIs(t, err, ErrInvalidDiscount)

	_, err = CalculateTotals(results, InvoiceDiscount{Kind: "bogus", Value: d("1")})
	assert.ErrorIs(t, err, ErrInvalidDiscount)
}

func TestCalculateTotalsEmptyInvoice(t *testing.T) {
	totals, err := CalculateTotals(nil, InvoiceDiscount{})
	require.NoError(t, err)
	assert.True(t, totals.GrandTotal.IsZero())
}
