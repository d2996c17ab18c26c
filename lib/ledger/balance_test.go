package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func local(dir Direction, currency, value string) Entry {
	return Entry{Direction: dir, Currency: currency, Amount: Local{Value: d(value)}}
}

func converted(dir Direction, currency, value, rate, base string) Entry {
	return Entry{Direction: dir, Currency: currency, Amount: Converted{Value: d(value), Rate: d(rate), BaseValue: d(base)}}
}

func TestBalanceInFaceAmounts(t *testing.T) {
	entries := []Entry{
		local(Inflow, "TL", "100"),
		local(Outflow, "TL", "40"),
	}
	assert.Equal(t, "60.00", BalanceIn(entries, "TL").StringFixed(2))

	// the outflow is deleted: it is simply no longer among the entries
	assert.Equal(t, "100.00", BalanceIn(entries[:1], "TL").StringFixed(2))
}

func TestBalanceWithConvertedEntry(t *testing.T) {
	entries := []Entry{
		local(Inflow, "TL", "100"),
		converted(Inflow, "USD", "10", "30", "300"),
	}
	assert.Equal(t, "400.00", BaseBalance(entries, "TL").StringFixed(2))
	assert.Equal(t, "10.00", BalanceIn(entries, "USD").StringFixed(2))
	assert.Equal(t, "100.00", BalanceIn(entries, "TL").StringFixed(2))
}

func TestBaseBalanceSkipsUnconvertedForeignEntries(t *testing.T) {
	entries := []Entry{
		local(Inflow, "TL", "50"),
		local(Inflow, "EUR", "20"),
		converted(Outflow, "USD", "5", "30", "150"),
	}
	assert.Equal(t, "-100.00", BaseBalance(entries, "TL").StringFixed(2))
	assert.Equal(t, "20.00", BalanceIn(entries, "EUR").StringFixed(2))
}

func TestNewAmount(t *testing.T) {
	rate := decimal.NewNullDecimal(d("30"))
	base := decimal.NewNullDecimal(d("300"))

	assert.IsType(t, Converted{}, NewAmount(d("10"), "USD", "TL", rate, base))
	assert.IsType(t, Local{}, NewAmount(d("10"), "USD", "TL", rate, decimal.NullDecimal{}))
	assert.IsType(t, Local{}, NewAmount(d("10"), "USD", "TL", decimal.NullDecimal{}, base))
	assert.IsType(t, Local{}, NewAmount(d("10"), "TL", "TL", rate, base))
}

func TestBreakdown(t *testing.T) {
	entries := []Entry{
		local(Inflow, "USD", "10"),
		local(Inflow, "TL", "100"),
		local(Outflow, "TL", "30"),
		converted(Outflow, "USD", "4", "30", "120"),
	}
	rows := Breakdown(entries)
	if assert.Len(t, rows, 2) {
		assert.Equal(t, "TL", rows[0].Currency)
		assert.Equal(t, "70.00", rows[0].Balance.StringFixed(2))
		assert.Equal(t, "USD", rows[1].Currency)
		assert.Equal(t, "10.00", rows[1].Inflow.StringFixed(2))
		assert.Equal(t, "4.00", rows[1].Outflow.StringFixed(2))
		assert.Equal(t, "6.00", rows[1].Balance.StringFixed(2))
	}
	assert.Empty(t, Breakdown(nil))
}
