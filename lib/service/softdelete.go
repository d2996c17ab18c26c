package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/muhasebehub/muhasebe.go/common"
	"github.com/muhasebehub/muhasebe.go/db/models"
	"github.com/uptrace/bun"
)

// DeletableKinds lists the entity kinds that go through the soft delete
// lifecycle, in the order they are purged.
var DeletableKinds = []string{
	common.EntityInvoice,
	common.EntityTransaction,
	common.EntityItem,
	common.EntityAccount,
	common.EntityCustomerGroup,
}

// DeletedRecord is a soft deleted row as listed to administrators.
type DeletedRecord struct {
	Kind      string    `json:"kind"`
	ID        int64     `json:"id"`
	Label     string    `json:"label"`
	DeletedAt time.Time `json:"deleted_at"`
	DeletedBy int64     `json:"deleted_by,omitempty"`
}

func newDeletable(kind string) (models.SoftDeletable, error) {
	switch kind {
	case common.EntityAccount:
		return &models.Account{}, nil
	case common.EntityTransaction:
		return &models.Transaction{}, nil
	case common.EntityInvoice:
		return &models.Invoice{}, nil
	case common.EntityItem:
		return &models.Item{}, nil
	case common.EntityCustomerGroup:
		return &models.CustomerGroup{}, nil
	}
	return nil, fmt.Errorf("%q: %w", kind, ErrUnknownEntity)
}

func recordOf(kind string, m models.SoftDeletable) DeletedRecord {
	rec := DeletedRecord{Kind: kind, DeletedAt: m.Lifecycle().DeletedAt, DeletedBy: m.Lifecycle().DeletedBy}
	switch v := m.(type) {
	case *models.Account:
		rec.ID, rec.Label = v.ID, fmt.Sprintf("%s %s", v.Kind, v.Name)
		if v.Code != "" {
			rec.Label = fmt.Sprintf("%s %s", v.Code, v.Name)
		}
	case *models.Transaction:
		rec.ID, rec.Label = v.ID, fmt.Sprintf("%s %s %s %s", v.TransactionDate.Format("2006-01-02"), v.Direction, v.Amount.StringFixed(2), v.CurrencyCode)
	case *models.Invoice:
		rec.ID, rec.Label = v.ID, fmt.Sprintf("%s %s", v.Number, v.GrandTotal.StringFixed(2))
	case *models.Item:
		rec.ID, rec.Label = v.ID, fmt.Sprintf("%s %s", v.Code, v.Name)
	case *models.CustomerGroup:
		rec.ID, rec.Label = v.ID, fmt.Sprintf("%s %s", v.Code, v.Name)
	}
	return rec
}

func loadDeletable(ctx context.Context, db bun.IDB, kind string, id int64) (models.SoftDeletable, error) {
	m, err := newDeletable(kind)
	if err != nil {
		return nil, err
	}
	if err := db.NewSelect().Model(m).Where("?TableAlias.id = ?", id).Scan(ctx); err != nil {
		return nil, notFound(err, kind, id)
	}
	return m, nil
}

func saveLifecycle(ctx context.Context, tx bun.Tx, m models.SoftDeletable) error {
	_, err := tx.NewUpdate().Model(m).Column("state", "deleted_at", "deleted_by").WherePK().Exec(ctx)
	return err
}

// transferLegs returns the other legs of a transfer. Legs of a transfer
// are only ever deleted, restored and purged together.
func transferLegs(ctx context.Context, tx bun.Tx, t *models.Transaction) ([]*models.Transaction, error) {
	legs := []*models.Transaction{}
	if t.TransferID == "" {
		return legs, nil
	}
	err := tx.NewSelect().Model(&legs).
		Where("t.transfer_id = ?", t.TransferID).
		Where("t.id <> ?", t.ID).
		Scan(ctx)
	return legs, err
}

func accountsOf(transactions ...*models.Transaction) []int64 {
	ids := []int64{}
	for _, t := range transactions {
		ids = append(ids, t.AccountID)
		if t.SettlementAccountID != 0 {
			ids = append(ids, t.SettlementAccountID)
		}
	}
	return ids
}

// MarkDeleted soft deletes an entity. Deleting an already deleted entity
// is a no-op and reports false.
func (svc *LedgerService) MarkDeleted(ctx context.Context, kind string, id, actor int64) (bool, error) {
	var accountIDs []int64
	changed := false
	now := time.Now().UTC()
	err := svc.runInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		m, err := loadDeletable(ctx, tx, kind, id)
		if err != nil {
			return err
		}
		lc := m.Lifecycle()
		if changed, err = lc.MarkDeleted(actor, now); err != nil || !changed {
			return err
		}
		m.SetLifecycle(lc)

		switch v := m.(type) {
		case *models.Transaction:
			legs, err := transferLegs(ctx, tx, v)
			if err != nil {
				return err
			}
			accountIDs = accountsOf(append(legs, v)...)
			if err := lockAccounts(ctx, tx, accountIDs...); err != nil {
				return err
			}
			for _, leg := range legs {
				legLC := leg.Lifecycle()
				if _, err := legLC.MarkDeleted(actor, now); err != nil {
					return err
				}
				leg.SetLifecycle(legLC)
				if err := saveLifecycle(ctx, tx, leg); err != nil {
					return err
				}
			}
		case *models.Invoice:
			accountIDs = []int64{v.AccountID}
			if !v.Void {
				lines, err := liveLines(ctx, tx, v.ID)
				if err != nil {
					return err
				}
				if err := svc.applyStock(ctx, tx, v.Type, lines, -1); err != nil {
					return err
				}
			}
		case *models.Account:
			accountIDs = []int64{v.ID}
		}
		return saveLifecycle(ctx, tx, m)
	})
	if err != nil {
		return false, err
	}
	if changed {
		svc.publish(ctx, kind, "deleted", id, actor, nil, accountIDs...)
	}
	return changed, nil
}

// Restore brings a soft deleted entity back. Restoring an active entity is
// a no-op and reports false. A restored outflow must still fit the
// customer's risk limit.
func (svc *LedgerService) Restore(ctx context.Context, kind string, id, actor int64) (bool, error) {
	var accountIDs []int64
	changed := false
	err := svc.runInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		m, err := loadDeletable(ctx, tx, kind, id)
		if err != nil {
			return err
		}
		lc := m.Lifecycle()
		if changed, err = lc.Restore(); err != nil || !changed {
			return err
		}
		m.SetLifecycle(lc)

		switch v := m.(type) {
		case *models.Transaction:
			legs, err := transferLegs(ctx, tx, v)
			if err != nil {
				return err
			}
			all := append(legs, v)
			accountIDs = accountsOf(all...)
			if err := lockAccounts(ctx, tx, accountIDs...); err != nil {
				return err
			}
			for _, t := range all {
				if t != v {
					legLC := t.Lifecycle()
					if _, err := legLC.Restore(); err != nil {
						return err
					}
					t.SetLifecycle(legLC)
				}
				customer, err := getAccount(ctx, tx, t.AccountID)
				if err != nil {
					return fmt.Errorf("restore transaction %d: %w", t.ID, ErrInvalidAccount)
				}
				if err := svc.checkRiskLimit(ctx, tx, customer, *t); err != nil {
					return err
				}
				if t != v {
					if err := saveLifecycle(ctx, tx, t); err != nil {
						return err
					}
				}
			}
		case *models.Invoice:
			accountIDs = []int64{v.AccountID}
			if !v.Void {
				lines, err := liveLines(ctx, tx, v.ID)
				if err != nil {
					return err
				}
				if err := svc.applyStock(ctx, tx, v.Type, lines, 1); err != nil {
					return err
				}
			}
		case *models.Account:
			accountIDs = []int64{v.ID}
		}
		return saveLifecycle(ctx, tx, m)
	})
	if err != nil {
		return false, err
	}
	if changed {
		svc.publish(ctx, kind, "restored", id, actor, nil, accountIDs...)
	}
	return changed, nil
}

// Purge removes a soft deleted entity for good. Only deleted entities can
// be purged, and only when no other row still points at them.
func (svc *LedgerService) Purge(ctx context.Context, kind string, id, actor int64) error {
	err := svc.runInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return svc.purge(ctx, tx, kind, id)
	})
	if err != nil {
		return err
	}
	svc.publish(ctx, kind, "purged", id, actor, nil)
	return nil
}

func (svc *LedgerService) purge(ctx context.Context, tx bun.Tx, kind string, id int64) error {
	m, err := loadDeletable(ctx, tx, kind, id)
	if err != nil {
		return err
	}
	lc := m.Lifecycle()
	if err := lc.Purge(); err != nil {
		return err
	}

	switch v := m.(type) {
	case *models.Transaction:
		legs, err := transferLegs(ctx, tx, v)
		if err != nil {
			return err
		}
		for _, leg := range legs {
			if _, err := tx.NewDelete().Model(leg).WherePK().Exec(ctx); err != nil {
				return err
			}
		}
	case *models.Invoice:
		if _, err := tx.NewDelete().Model((*models.InvoiceLine)(nil)).Where("invoice_id = ?", v.ID).Exec(ctx); err != nil {
			return err
		}
	case *models.Item:
		if err := inUse(ctx, tx, (*models.InvoiceLine)(nil), "item_id = ?", v.ID); err != nil {
			return err
		}
		if _, err := tx.NewDelete().Model((*models.ItemGroupPrice)(nil)).Where("item_id = ?", v.ID).Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewDelete().Model((*models.ItemOptionValue)(nil)).
			Where("option_id IN (?)", tx.NewSelect().Model((*models.ItemOption)(nil)).Column("id").Where("item_id = ?", v.ID)).
			Exec(ctx)
		if err != nil {
			return err
		}
		if _, err := tx.NewDelete().Model((*models.ItemOption)(nil)).Where("item_id = ?", v.ID).Exec(ctx); err != nil {
			return err
		}
	case *models.Account:
		if err := inUse(ctx, tx, (*models.Transaction)(nil), "t.account_id = ? OR t.settlement_account_id = ?", v.ID, v.ID); err != nil {
			return err
		}
		if err := inUse(ctx, tx, (*models.Invoice)(nil), "account_id = ?", v.ID); err != nil {
			return err
		}
		if err := inUse(ctx, tx, (*models.Account)(nil), "bank_account_id = ?", v.ID); err != nil {
			return err
		}
	case *models.CustomerGroup:
		if err := inUse(ctx, tx, (*models.Account)(nil), "group_id = ?", v.ID); err != nil {
			return err
		}
		if err := inUse(ctx, tx, (*models.CustomerGroup)(nil), "parent_id = ?", v.ID); err != nil {
			return err
		}
		if _, err := tx.NewDelete().Model((*models.ItemGroupPrice)(nil)).Where("group_id = ?", v.ID).Exec(ctx); err != nil {
			return err
		}
	}
	_, err = tx.NewDelete().Model(m).WherePK().Exec(ctx)
	return err
}

func inUse(ctx context.Context, tx bun.Tx, model interface{}, where string, args ...interface{}) error {
	used, err := tx.NewSelect().Model(model).Where(where, args...).Exists(ctx)
	if err != nil {
		return err
	}
	if used {
		return ErrInUse
	}
	return nil
}

// PurgeAll purges every deleted entity of kind. Rows still referenced by
// other rows are skipped and returned.
func (svc *LedgerService) PurgeAll(ctx context.Context, kind string, actor int64) (purged int, skipped []int64, err error) {
	records, err := svc.ListDeleted(ctx, kind)
	if err != nil {
		return 0, nil, err
	}
	for _, rec := range records {
		err := svc.runInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
			return svc.purge(ctx, tx, kind, rec.ID)
		})
		switch {
		case err == nil:
			purged++
		case errors.Is(err, ErrNotFound):
			// purged together with a sibling transfer leg
		case errors.Is(err, ErrInUse):
			skipped = append(skipped, rec.ID)
		default:
			return purged, skipped, err
		}
	}
	if purged > 0 {
		svc.publish(ctx, kind, "purged_all", 0, actor, map[string]interface{}{"purged": purged, "skipped": skipped})
	}
	return purged, skipped, nil
}

// ListDeleted lists soft deleted rows of kind, or of every kind when kind
// is empty, most recently deleted first.
func (svc *LedgerService) ListDeleted(ctx context.Context, kind string) ([]DeletedRecord, error) {
	kinds := DeletableKinds
	if kind != "" {
		if _, err := newDeletable(kind); err != nil {
			return nil, err
		}
		kinds = []string{kind}
	}
	records := []DeletedRecord{}
	for _, k := range kinds {
		rows, err := deletedRows(ctx, svc.DB, k)
		if err != nil {
			return nil, err
		}
		for _, m := range rows {
			records = append(records, recordOf(k, m))
		}
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].DeletedAt.After(records[j].DeletedAt)
	})
	return records, nil
}

func deletedRows(ctx context.Context, db bun.IDB, kind string) ([]models.SoftDeletable, error) {
	switch kind {
	case common.EntityAccount:
		return scanDeleted[models.Account](ctx, db)
	case common.EntityTransaction:
		return scanDeleted[models.Transaction](ctx, db)
	case common.EntityInvoice:
		return scanDeleted[models.Invoice](ctx, db)
	case common.EntityItem:
		return scanDeleted[models.Item](ctx, db)
	case common.EntityCustomerGroup:
		return scanDeleted[models.CustomerGroup](ctx, db)
	}
	return nil, fmt.Errorf("%q: %w", kind, ErrUnknownEntity)
}

func scanDeleted[T any, PT interface {
	*T
	models.SoftDeletable
}](ctx context.Context, db bun.IDB) ([]models.SoftDeletable, error) {
	list := []PT{}
	err := models.OnlyDeleted(db.NewSelect().Model(&list)).OrderExpr("?TableAlias.deleted_at DESC").Scan(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]models.SoftDeletable, 0, len(list))
	for _, m := range list {
		rows = append(rows, m)
	}
	return rows, nil
}
