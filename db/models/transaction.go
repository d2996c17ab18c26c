package models

import (
	"context"
	"time"

	"github.com/muhasebehub/muhasebe.go/lib/ledger"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Transaction : Ledger transaction Model
// Amount is always positive, Direction carries the sign. ExchangeRate and
// BaseAmount are either both set or both empty.
type Transaction struct {
	bun.BaseModel `bun:"table:transactions,alias:t"`

	ID                  int64               `json:"id" bun:",pk,autoincrement"`
	AccountID           int64               `json:"account_id" bun:",notnull"`
	Account             *Account            `json:"-" bun:"rel:belongs-to,join:account_id=id"`
	SettlementAccountID int64               `json:"settlement_account_id,omitempty" bun:",nullzero"`
	SettlementAccount   *Account            `json:"-" bun:"rel:belongs-to,join:settlement_account_id=id"`
	Channel             string              `json:"channel" bun:",notnull"`
	Direction           string              `json:"direction" bun:",notnull"`
	CurrencyCode        string              `json:"currency" bun:",notnull"`
	Amount              decimal.Decimal     `json:"amount" bun:"type:numeric,notnull"`
	ExchangeRate        decimal.NullDecimal `json:"exchange_rate" bun:"type:numeric"`
	BaseAmount          decimal.NullDecimal `json:"base_amount" bun:"type:numeric"`
	TransferID          string              `json:"transfer_id,omitempty" bun:",nullzero"`
	Description         string              `json:"description"`
	DocumentNo          string              `json:"document_no,omitempty" bun:",nullzero"`
	TransactionDate     time.Time           `json:"transaction_date" bun:",notnull"`
	CreatedBy           int64               `json:"created_by" bun:",nullzero"`
	CreatedAt           time.Time           `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt           bun.NullTime        `json:"updated_at"`
	SoftDelete
}

func (t *Transaction) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.UpdateQuery:
		t.UpdatedAt = bun.NullTime{Time: time.Now()}
	}
	return nil
}

// LedgerEntry projects the transaction for balance aggregation.
func (t *Transaction) LedgerEntry(baseCurrency string) ledger.Entry {
	return ledger.Entry{
		Direction: ledger.Direction(t.Direction),
		Currency:  t.CurrencyCode,
		Amount:    ledger.NewAmount(t.Amount, t.CurrencyCode, baseCurrency, t.ExchangeRate, t.BaseAmount),
	}
}

var _ bun.BeforeAppendModelHook = (*Transaction)(nil)
