package ledger

import (
	"sort"

	"github.com/shopspring/decimal"
)

// CurrencyBalance is the face value balance of one currency.
type CurrencyBalance struct {
	Currency string          `json:"currency"`
	Inflow   decimal.Decimal `json:"inflow"`
	Outflow  decimal.Decimal `json:"outflow"`
	Balance  decimal.Decimal `json:"balance"`
}

// BalanceIn sums the face amounts of the entries recorded in currency.
func BalanceIn(entries []Entry, currency string) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		if e.Currency != currency {
			continue
		}
		total = total.Add(e.signed(e.Amount.Face()))
	}
	return total
}

// BaseBalance sums the entries in base currency terms. Base currency
// entries count at face value, converted foreign entries at their recorded
// base equivalent. Foreign entries without a conversion have no base value
// and are left out.
func BaseBalance(entries []Entry, base string) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		switch a := e.Amount.(type) {
		case Converted:
			if e.Currency == base {
				total = total.Add(e.signed(a.Value))
			} else {
				total = total.Add(e.signed(a.BaseValue))
			}
		case Local:
			if e.Currency == base {
				total = total.Add(e.signed(a.Value))
			}
		}
	}
	return total
}

// Breakdown groups the entries by currency at face value. Currencies without
// movement do not appear. The result is ordered by currency code.
func Breakdown(entries []Entry) []CurrencyBalance {
	byCurrency := map[string]*CurrencyBalance{}
	for _, e := range entries {
		cb, ok := byCurrency[e.Currency]
		if !ok {
			cb = &CurrencyBalance{Currency: e.Currency, Inflow: decimal.Zero, Outflow: decimal.Zero}
			byCurrency[e.Currency] = cb
		}
		if e.Direction == Outflow {
			cb.Outflow = cb.Outflow.Add(e.Amount.Face())
		} else {
			cb.Inflow = cb.Inflow.Add(e.Amount.Face())
		}
	}
	result := make([]CurrencyBalance, 0, len(byCurrency))
	for _, cb := range byCurrency {
		cb.Balance = cb.Inflow.Sub(cb.Outflow)
		result = append(result, *cb)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Currency < result[j].Currency })
	return result
}
