package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCalculateLineInclusive(t *testing.T) {
	res, err := CalculateLine(LineInput{
		Quantity:  d("1"),
		UnitPrice: d("120"),
		VATRate:   d("20"),
		VATMode:   VATInclusive,
	})
	require.NoError(t, err)
	assert.Equal(t, "120.00", res.Gross.StringFixed(2))
	assert.Equal(t, "20.00", res.Tax.StringFixed(2))
	assert.Equal(t, "100.00", res.Net.StringFixed(2))
}

func TestCalculateLineExclusive(t *testing.T) {
	res, err := CalculateLine(LineInput{
		Quantity:  d("1"),
		UnitPrice: d("100"),
		VATRate:   d("20"),
		VATMode:   VATExclusive,
	})
	require.NoError(t, err)
	assert.Equal(t, "100.00", res.Net.StringFixed(2))
	assert.Equal(t, "20.00", res.Tax.StringFixed(2))
	assert.Equal(t, "120.00", res.Gross.StringFixed(2))
}

func TestCalculateLineDiscountWithoutTax(t *testing.T) {
	for _, mode := range []VATMode{VATInclusive, VATExclusive} {
		res, err := CalculateLine(LineInput{
			Quantity:        d("2"),
			UnitPrice:       d("50"),
			DiscountPercent: d("10"),
			VATRate:         d("0"),
			VATMode:         mode,
		})
		require.NoError(t, err)
		assert.Equal(t, "10.00", res.DiscountAmount.StringFixed(2), mode)
		assert.Equal(t, "90.00", res.Net.StringFixed(2), mode)
		assert.Equal(t, "0.00", res.Tax.StringFixed(2), mode)
		assert.Equal(t, "90.00", res.Gross.StringFixed(2), mode)
	}
}

func TestCalculateLineInclusiveRounding(t *testing.T) {
	res, err := CalculateLine(LineInput{
		Quantity:  d("1"),
		UnitPrice: d("100"),
		VATRate:   d("18"),
		VATMode:   VATInclusive,
	})
	require.NoError(t, err)
	// 100 * 18 / 118 = 15.2542...
	assert.Equal(t, "15.25", res.Tax.StringFixed(2))
	assert.Equal(t, "84.75", res.Net.StringFixed(2))
	assert.Equal(t, "100.00", res.Gross.StringFixed(2))
}

func TestCalculateLineOptionSurcharge(t *testing.T) {
	res, err := CalculateLine(LineInput{
		Quantity:        d("3"),
		UnitPrice:       d("10"),
		OptionSurcharge: d("-2.5"),
		VATRate:         d("10"),
		VATMode:         VATExclusive,
	})
	require.NoError(t, err)
	assert.Equal(t, "22.50", res.Net.StringFixed(2))
	assert.Equal(t, "2.25", res.Tax.StringFixed(2))
	assert.Equal(t, "24.75", res.Gross.StringFixed(2))
}

func TestCalculateLineNetPlusTaxIsGross(t *testing.T) {
	quantities := []string{"1", "3", "7", "0.333"}
	prices := []string{"0.01", "19.99", "33.33", "1234.56"}
	discounts := []string{"0", "12.5", "33"}
	rates := []string{"0", "1", "8", "18", "20"}
	for _, q := range quantities {
		for _, p := range prices {
			for _, disc := range discounts {
				for _, r := range rates {
					for _, mode := range []VATMode{VATInclusive, VATExclusive} {
						res, err := CalculateLine(LineInput{
							Quantity:        d(q),
							UnitPrice:       d(p),
							DiscountPercent: d(disc),
							VATRate:         d(r),
							VATMode:         mode,
						})
						require.NoError(t, err)
						assert.True(t, res.Net.Add(res.Tax).Equal(res.Gross), "q=%s p=%s d=%s r=%s %s", q, p, disc, r, mode)
						assert.True(t, res.Gross.Equal(Round(res.Gross)))
						assert.True(t, res.Tax.Equal(Round(res.Tax)))
					}
				}
			}
		}
	}
}

func TestCalculateLineRejectsInvalidInput(t *testing.T) {
	valid := LineInput{
		Quantity:  d("1"),
		UnitPrice: d("10"),
		VATRate:   d("20"),
		VATMode:   VATExclusive,
	}

	in := valid
	in.Quantity = d("0")
	_, err := CalculateLine(in)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	in = valid
	in.UnitPrice = d("-1")
	_, err = CalculateLine(in)
	assert.ErrorIs(t, err, ErrInvalidPrice)

	in = valid
	in.OptionSurcharge = d("-10.01")
	_, err = CalculateLine(in)
	assert.ErrorIs(t, err, ErrInvalidPrice)

	in = valid
	in.DiscountPercent = d("100.01")
	_, err = CalculateLine(in)
	assert.ErrorIs(t, err, ErrInvalidDiscount)

	in = valid
	in.VATRate = d("-1")
	_, err = CalculateLine(in)
	assert.ErrorIs(t, err, ErrInvalidVATRate)

	in = valid
	in.VATMode = "gross"
	_, err = CalculateLine(in)
	assert.ErrorIs(t, err, ErrInvalidVATMode)
}

func TestRoundHalfUp(t *testing.T) {
	assert.Equal(t, "0.13", Round(d("0.125")).StringFixed(2))
	assert.Equal(t, "2.68", Round(d("2.675")).StringFixed(2))
	assert.Equal(t, "2.67", Round(d("2.6749")).StringFixed(2))
}
