package ledger

import (
	"github.com/shopspring/decimal"
)

type SurchargeKind string

const (
	SurchargeFixed   SurchargeKind = "fixed"
	SurchargePercent SurchargeKind = "percent"
)

func (k SurchargeKind) Valid() bool {
	return k == SurchargeFixed || k == SurchargePercent
}

// Surcharge is the per unit price effect of a chosen option value. A
// percentage is taken of the item's base price.
func Surcharge(kind SurchargeKind, value, basePrice decimal.Decimal) decimal.Decimal {
	if kind == SurchargePercent {
		return Percent(basePrice, value)
	}
	return value
}

// GroupTree maps a customer group to its parent group. Root groups map to 0
// or are absent.
type GroupTree map[int64]int64

// ResolveGroupPrice walks from groupID towards the root and returns the
// first override price found.
func ResolveGroupPrice(groupID int64, tree GroupTree, prices map[int64]decimal.Decimal) (decimal.Decimal, bool) {
	seen := map[int64]bool{}
	for id := groupID; id != 0 && !seen[id]; id = tree[id] {
		seen[id] = true
		if price, ok := prices[id]; ok {
			return price, true
		}
	}
	return decimal.Zero, false
}

// ImpliedDiscount is the percentage by which price undercuts listPrice,
// rounded to two places. It is zero when the price is not lower.
func ImpliedDiscount(listPrice, price decimal.Decimal) decimal.Decimal {
	if !listPrice.IsPositive() || price.GreaterThanOrEqual(listPrice) {
		return decimal.Zero
	}
	return Round(listPrice.Sub(price).Mul(hundred).Div(listPrice))
}
