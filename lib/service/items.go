package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/muhasebehub/muhasebe.go/common"
	"github.com/muhasebehub/muhasebe.go/db/models"
	"github.com/muhasebehub/muhasebe.go/lib/ledger"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type ItemInput struct {
	Name          string
	Unit          string
	Barcode       string
	Quantity      decimal.Decimal
	CriticalLevel decimal.Decimal
	PurchasePrice decimal.Decimal
	SalePrice     decimal.Decimal
	VATRate       decimal.Decimal
	Active        bool
}

type ItemFilter struct {
	Search       string
	CriticalOnly bool
	Limit        int
	Offset       int
}

// PriceQuote is the unit price an item sells at to a customer.
type PriceQuote struct {
	ItemID          int64           `json:"item_id"`
	CustomerID      int64           `json:"customer_id,omitempty"`
	ListPrice       decimal.Decimal `json:"list_price"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	GroupPrice      bool            `json:"group_price"`
	ImpliedDiscount decimal.Decimal `json:"implied_discount"`
	Surcharge       decimal.Decimal `json:"surcharge"`
	VATRate         decimal.Decimal `json:"vat_rate"`
}

func (in ItemInput) validate() error {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Unit) == "" {
		return fmt.Errorf("name and unit: %w", ErrMissingField)
	}
	if in.PurchasePrice.IsNegative() || in.SalePrice.IsNegative() {
		return ledger.ErrInvalidPrice
	}
	if in.VATRate.IsNegative() {
		return ledger.ErrInvalidVATRate
	}
	if in.CriticalLevel.IsNegative() || in.Quantity.IsNegative() {
		return ledger.ErrInvalidQuantity
	}
	return nil
}

func (in ItemInput) apply(item *models.Item) {
	item.Name = in.Name
	item.Unit = in.Unit
	item.Barcode = in.Barcode
	item.CriticalLevel = in.CriticalLevel
	item.PurchasePrice = ledger.Round(in.PurchasePrice)
	item.SalePrice = ledger.Round(in.SalePrice)
	item.VATRate = in.VATRate
	item.Active = in.Active
}

func (svc *LedgerService) CreateItem(ctx context.Context, actor int64, in ItemInput) (*models.Item, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	item := &models.Item{
		Quantity:   in.Quantity,
		SoftDelete: models.SoftDelete{State: string(ledger.StateActive)},
	}
	in.apply(item)
	err := svc.runInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if err := lockSequence(ctx, tx, common.ItemCodePrefix); err != nil {
			return err
		}
		code, err := nextCode(ctx, tx, (*models.Item)(nil), "code", common.ItemCodePrefix, 6)
		if err != nil {
			return err
		}
		item.Code = code
		_, err = tx.NewInsert().Model(item).Exec(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	svc.publish(ctx, common.EntityItem, "created", item.ID, actor, item)
	return item, nil
}

// UpdateItem changes the item card. Stock on hand is only moved by
// invoices and is left untouched here.
func (svc *LedgerService) UpdateItem(ctx context.Context, actor, id int64, in ItemInput) (*models.Item, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	item := &models.Item{}
	if err := models.NotDeleted(svc.DB.NewSelect().Model(item).Where("id = ?", id)).Scan(ctx); err != nil {
		return nil, notFound(err, "item", id)
	}
	in.apply(item)
	_, err := svc.DB.NewUpdate().Model(item).
		Column("name", "unit", "barcode", "critical_level", "purchase_price", "sale_price", "vat_rate", "active", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	svc.publish(ctx, common.EntityItem, "updated", item.ID, actor, item)
	return item, nil
}

func (svc *LedgerService) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	return getItem(ctx, svc.DB, id)
}

func getItem(ctx context.Context, db bun.IDB, id int64) (*models.Item, error) {
	item := &models.Item{}
	err := models.NotDeleted(db.NewSelect().Model(item).Where("?TableAlias.id = ?", id)).
		Relation("GroupPrices").
		Relation("Options").
		Relation("Options.Values").
		Scan(ctx)
	if err != nil {
		return nil, notFound(err, "item", id)
	}
	return item, nil
}

func (svc *LedgerService) ListItems(ctx context.Context, filter ItemFilter) ([]models.Item, error) {
	items := []models.Item{}
	query := models.NotDeleted(svc.DB.NewSelect().Model(&items))
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("LOWER(name) LIKE ?", like).WhereOr("LOWER(code) LIKE ?", like).WhereOr("barcode = ?", filter.Search)
		})
	}
	if filter.Limit > 0 {
		query.Limit(filter.Limit).Offset(filter.Offset)
	}
	if err := query.Order("code").Scan(ctx); err != nil {
		return nil, err
	}
	if !filter.CriticalOnly {
		return items, nil
	}
	critical := items[:0]
	for _, item := range items {
		if item.BelowCritical() {
			critical = append(critical, item)
		}
	}
	return critical, nil
}

// SetGroupPrices replaces the customer group prices of an item.
func (svc *LedgerService) SetGroupPrices(ctx context.Context, actor, itemID int64, prices map[int64]decimal.Decimal) ([]models.ItemGroupPrice, error) {
	rows := []models.ItemGroupPrice{}
	err := svc.runInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if _, err := getItem(ctx, tx, itemID); err != nil {
			return err
		}
		for groupID, price := range prices {
			if price.IsNegative() {
				return ledger.ErrInvalidPrice
			}
			exists, err := models.NotDeleted(tx.NewSelect().Model((*models.CustomerGroup)(nil)).Where("id = ?", groupID)).Exists(ctx)
			if err != nil {
				return err
			}
			if !exists {
				return fmt.Errorf("group %d: %w", groupID, ErrInvalidGroup)
			}
			rows = append(rows, models.ItemGroupPrice{ItemID: itemID, GroupID: groupID, Price: ledger.Round(price)})
		}
		if _, err := tx.NewDelete().Model((*models.ItemGroupPrice)(nil)).Where("item_id = ?", itemID).Exec(ctx); err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		_, err := tx.NewInsert().Model(&rows).Exec(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	svc.publish(ctx, common.EntityItem, "prices_updated", itemID, actor, rows)
	return rows, nil
}

func (svc *LedgerService) AddOption(ctx context.Context, itemID int64, name string, required bool) (*models.ItemOption, error) {
	if _, err := getItem(ctx, svc.DB, itemID); err != nil {
		return nil, err
	}
	option := &models.ItemOption{ItemID: itemID, Name: name, Required: required}
	if _, err := svc.DB.NewInsert().Model(option).Exec(ctx); err != nil {
		return nil, err
	}
	return option, nil
}

// AddOptionValue adds a value to an option. A new default value takes the
// default flag from its siblings.
func (svc *LedgerService) AddOptionValue(ctx context.Context, optionID int64, value string, kind ledger.SurchargeKind, surcharge decimal.Decimal, isDefault bool) (*models.ItemOptionValue, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("surcharge kind %q: %w", kind, ErrInvalidOptionValue)
	}
	optionValue := &models.ItemOptionValue{
		OptionID:      optionID,
		Value:         value,
		SurchargeKind: string(kind),
		Surcharge:     surcharge,
		IsDefault:     isDefault,
	}
	err := svc.runInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().Model((*models.ItemOption)(nil)).Where("id = ?", optionID).Exists(ctx)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("option %d: %w", optionID, ErrNotFound)
		}
		if isDefault {
			_, err := tx.NewUpdate().Model((*models.ItemOptionValue)(nil)).
				Set("is_default = ?", false).
				Where("option_id = ?", optionID).
				Exec(ctx)
			if err != nil {
				return err
			}
		}
		_, err = tx.NewInsert().Model(optionValue).Exec(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return optionValue, nil
}

// Quote resolves the unit price of an item for a customer: the nearest
// group price up the customer's group tree, or the item's sale price.
func (svc *LedgerService) Quote(ctx context.Context, itemID, customerID, optionValueID int64) (*PriceQuote, error) {
	return quote(ctx, svc.DB, itemID, customerID, optionValueID)
}

func quote(ctx context.Context, db bun.IDB, itemID, customerID, optionValueID int64) (*PriceQuote, error) {
	item, err := getItem(ctx, db, itemID)
	if err != nil {
		return nil, err
	}
	q := &PriceQuote{
		ItemID:          item.ID,
		CustomerID:      customerID,
		ListPrice:       item.SalePrice,
		UnitPrice:       item.SalePrice,
		ImpliedDiscount: decimal.Zero,
		Surcharge:       decimal.Zero,
		VATRate:         item.VATRate,
	}
	if customerID != 0 {
		customer, err := getAccount(ctx, db, customerID)
		if err != nil {
			return nil, err
		}
		if customer.GroupID != 0 && len(item.GroupPrices) > 0 {
			tree, err := groupTree(ctx, db)
			if err != nil {
				return nil, err
			}
			prices := map[int64]decimal.Decimal{}
			for _, gp := range item.GroupPrices {
				prices[gp.GroupID] = gp.Price
			}
			if price, ok := ledger.ResolveGroupPrice(customer.GroupID, tree, prices); ok {
				q.UnitPrice = price
				q.GroupPrice = true
				q.ImpliedDiscount = ledger.ImpliedDiscount(item.SalePrice, price)
			}
		}
	}
	if optionValueID != 0 {
		surcharge, err := optionSurcharge(ctx, db, item, optionValueID, q.UnitPrice)
		if err != nil {
			return nil, err
		}
		q.Surcharge = surcharge
	}
	return q, nil
}

// optionSurcharge is the per unit price effect of optionValueID on item. A
// percentage surcharge is taken of basePrice.
func optionSurcharge(ctx context.Context, db bun.IDB, item *models.Item, optionValueID int64, basePrice decimal.Decimal) (decimal.Decimal, error) {
	value := &models.ItemOptionValue{}
	err := db.NewSelect().Model(value).Relation("Option").Where("?TableAlias.id = ?", optionValueID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && value.Option.ItemID != item.ID) {
		return decimal.Zero, fmt.Errorf("value %d: %w", optionValueID, ErrInvalidOptionValue)
	}
	if err != nil {
		return decimal.Zero, err
	}
	return ledger.Surcharge(ledger.SurchargeKind(value.SurchargeKind), value.Surcharge, basePrice), nil
}
