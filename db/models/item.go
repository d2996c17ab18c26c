package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Item : Stock item Model
type Item struct {
	ID            int64             `json:"id" bun:",pk,autoincrement"`
	Code          string            `json:"code" bun:",unique,notnull"`
	Name          string            `json:"name" bun:",notnull"`
	Unit          string            `json:"unit" bun:",notnull"`
	Barcode       string            `json:"barcode,omitempty" bun:",nullzero"`
	Quantity      decimal.Decimal   `json:"quantity" bun:"type:numeric,notnull"`
	CriticalLevel decimal.Decimal   `json:"critical_level" bun:"type:numeric,notnull"`
	PurchasePrice decimal.Decimal   `json:"purchase_price" bun:"type:numeric,notnull"`
	SalePrice     decimal.Decimal   `json:"sale_price" bun:"type:numeric,notnull"`
	VATRate       decimal.Decimal   `json:"vat_rate" bun:"vat_rate,type:numeric,notnull"`
	Active        bool              `json:"active" bun:",notnull"`
	GroupPrices   []*ItemGroupPrice `json:"group_prices,omitempty" bun:"rel:has-many,join:id=item_id"`
	Options       []*ItemOption     `json:"options,omitempty" bun:"rel:has-many,join:id=item_id"`
	CreatedAt     time.Time         `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt     bun.NullTime      `json:"updated_at"`
	SoftDelete
}

func (i *Item) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.UpdateQuery:
		i.UpdatedAt = bun.NullTime{Time: time.Now()}
	}
	return nil
}

// BelowCritical reports whether the stock on hand is at or under the
// critical level. Items without a critical level never are.
func (i *Item) BelowCritical() bool {
	return i.CriticalLevel.IsPositive() && i.Quantity.LessThanOrEqual(i.CriticalLevel)
}

// ItemGroupPrice overrides the sale price of an item for a customer group
// and its descendants.
type ItemGroupPrice struct {
	ID      int64           `json:"id" bun:",pk,autoincrement"`
	ItemID  int64           `json:"item_id" bun:",notnull,unique:item_group"`
	GroupID int64           `json:"group_id" bun:",notnull,unique:item_group"`
	Price   decimal.Decimal `json:"price" bun:"type:numeric,notnull"`
}

type ItemOption struct {
	ID       int64              `json:"id" bun:",pk,autoincrement"`
	ItemID   int64              `json:"item_id" bun:",notnull"`
	Name     string             `json:"name" bun:",notnull"`
	Required bool               `json:"required" bun:",notnull"`
	Values   []*ItemOptionValue `json:"values,omitempty" bun:"rel:has-many,join:id=option_id"`
}

// ItemOptionValue is a selectable value of an option with its price effect.
type ItemOptionValue struct {
	ID            int64           `json:"id" bun:",pk,autoincrement"`
	OptionID      int64           `json:"option_id" bun:",notnull"`
	Option        *ItemOption     `json:"-" bun:"rel:belongs-to,join:option_id=id"`
	Value         string          `json:"value" bun:",notnull"`
	SurchargeKind string          `json:"surcharge_kind" bun:",notnull"`
	Surcharge     decimal.Decimal `json:"surcharge" bun:"type:numeric,notnull"`
	IsDefault     bool            `json:"is_default" bun:",notnull"`
}

var _ bun.BeforeAppendModelHook = (*Item)(nil)
