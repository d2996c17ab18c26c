package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Invoice : Invoice Model
// Subtotal, DiscountAmount, TaxTotal and GrandTotal cache the last
// computation over the live lines.
type Invoice struct {
	ID             int64           `json:"id" bun:",pk,autoincrement"`
	Number         string          `json:"number" bun:",unique,notnull"`
	Type           string          `json:"type" bun:",notnull"`
	AccountID      int64           `json:"account_id" bun:",notnull"`
	Account        *Account        `json:"-" bun:"rel:belongs-to,join:account_id=id"`
	IssueDate      time.Time       `json:"issue_date" bun:",notnull"`
	DueDate        bun.NullTime    `json:"due_date"`
	CurrencyCode   string          `json:"currency" bun:",notnull"`
	VATMode        string          `json:"vat_mode" bun:"vat_mode,notnull"`
	DiscountKind   string          `json:"discount_kind" bun:",nullzero"`
	DiscountValue  decimal.Decimal `json:"discount_value" bun:"type:numeric,notnull"`
	Subtotal       decimal.Decimal `json:"subtotal" bun:"type:numeric,notnull"`
	DiscountAmount decimal.Decimal `json:"discount_amount" bun:"type:numeric,notnull"`
	TaxTotal       decimal.Decimal `json:"tax_total" bun:"type:numeric,notnull"`
	GrandTotal     decimal.Decimal `json:"grand_total" bun:"type:numeric,notnull"`
	Paid           bool            `json:"paid" bun:",notnull"`
	Void           bool            `json:"void" bun:",notnull"`
	Notes          string          `json:"notes"`
	CreatedBy      int64           `json:"created_by" bun:",nullzero"`
	Lines          []*InvoiceLine  `json:"lines,omitempty" bun:"rel:has-many,join:id=invoice_id"`
	CreatedAt      time.Time       `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt      bun.NullTime    `json:"updated_at"`
	SoftDelete
}

func (i *Invoice) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.UpdateQuery:
		i.UpdatedAt = bun.NullTime{Time: time.Now()}
	}
	return nil
}

// InvoiceLine : Invoice line Model
// Net, Tax, Gross and DiscountAmount are derived and only ever written by
// the line calculator.
type InvoiceLine struct {
	ID              int64           `json:"id" bun:",pk,autoincrement"`
	InvoiceID       int64           `json:"invoice_id" bun:",notnull"`
	ItemID          int64           `json:"item_id" bun:",notnull"`
	Item            *Item           `json:"-" bun:"rel:belongs-to,join:item_id=id"`
	OptionValueID   int64           `json:"option_value_id,omitempty" bun:",nullzero"`
	Position        int             `json:"position" bun:",notnull"`
	Description     string          `json:"description"`
	Quantity        decimal.Decimal `json:"quantity" bun:"type:numeric,notnull"`
	UnitPrice       decimal.Decimal `json:"unit_price" bun:"type:numeric,notnull"`
	OptionSurcharge decimal.Decimal `json:"option_surcharge" bun:"type:numeric,notnull"`
	DiscountPercent decimal.Decimal `json:"discount_percent" bun:"type:numeric,notnull"`
	VATRate         decimal.Decimal `json:"vat_rate" bun:"vat_rate,type:numeric,notnull"`
	VATMode         string          `json:"vat_mode" bun:"vat_mode,notnull"`
	DiscountAmount  decimal.Decimal `json:"discount_amount" bun:"type:numeric,notnull"`
	Net             decimal.Decimal `json:"net" bun:"type:numeric,notnull"`
	Tax             decimal.Decimal `json:"tax" bun:"type:numeric,notnull"`
	Gross           decimal.Decimal `json:"gross" bun:"type:numeric,notnull"`
	PriceNote       string          `json:"price_note,omitempty" bun:",nullzero"`
	SoftDelete
}

var _ bun.BeforeAppendModelHook = (*Invoice)(nil)
