package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Account : Account Model
// Customers, cash tills, bank accounts and card terminals share this table,
// Kind tells them apart. Balances are never stored.
type Account struct {
	ID             int64           `json:"id" bun:",pk,autoincrement"`
	Kind           string          `json:"kind" bun:",notnull"`
	Code           string          `json:"code" bun:",unique,nullzero"`
	Name           string          `json:"name" bun:",notnull"`
	CurrencyCode   string          `json:"currency" bun:",notnull"`
	Currency       *Currency       `json:"-" bun:"rel:belongs-to,join:currency_code=code"`
	Active         bool            `json:"active" bun:",notnull"`
	GroupID        int64           `json:"group_id,omitempty" bun:",nullzero"`
	Group          *CustomerGroup  `json:"-" bun:"rel:belongs-to,join:group_id=id"`
	RiskLimit      decimal.Decimal `json:"risk_limit" bun:"type:numeric,notnull"`
	BankAccountID  int64           `json:"bank_account_id,omitempty" bun:",nullzero"`
	CommissionRate decimal.Decimal `json:"commission_rate" bun:"type:numeric,notnull"`
	BankName       string          `json:"bank_name,omitempty" bun:",nullzero"`
	Branch         string          `json:"branch,omitempty" bun:",nullzero"`
	IBAN           string          `json:"iban,omitempty" bun:"iban,nullzero"`
	TaxOffice      string          `json:"tax_office,omitempty" bun:",nullzero"`
	TaxNumber      string          `json:"tax_number,omitempty" bun:",nullzero"`
	Phone          string          `json:"phone,omitempty" bun:",nullzero"`
	Email          string          `json:"email,omitempty" bun:",nullzero"`
	Address        string          `json:"address,omitempty" bun:",nullzero"`
	CreatedAt      time.Time       `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt      bun.NullTime    `json:"updated_at"`
	SoftDelete
}

func (a *Account) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.UpdateQuery:
		a.UpdatedAt = bun.NullTime{Time: time.Now()}
	}
	return nil
}

var _ bun.BeforeAppendModelHook = (*Account)(nil)
