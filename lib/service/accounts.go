package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/muhasebehub/muhasebe.go/common"
	"github.com/muhasebehub/muhasebe.go/db/models"
	"github.com/muhasebehub/muhasebe.go/lib/ledger"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type AccountInput struct {
	Kind           string
	Name           string
	CurrencyCode   string
	Active         bool
	GroupID        int64
	RiskLimit      decimal.Decimal
	BankAccountID  int64
	CommissionRate decimal.Decimal
	BankName       string
	Branch         string
	IBAN           string
	TaxOffice      string
	TaxNumber      string
	Phone          string
	Email          string
	Address        string
}

type AccountFilter struct {
	Kind       string
	GroupID    int64
	Search     string
	ActiveOnly bool
	Limit      int
	Offset     int
}

func validKind(kind string) bool {
	switch kind {
	case common.AccountKindCustomer, common.AccountKindCash, common.AccountKindBank, common.AccountKindPOS:
		return true
	}
	return false
}

// applyAccountInput validates in against the store and copies it onto
// account. Kind is only taken from in for new accounts.
func applyAccountInput(ctx context.Context, db bun.IDB, account *models.Account, in AccountInput) error {
	if !validKind(account.Kind) {
		return fmt.Errorf("kind %q: %w", account.Kind, ErrInvalidAccount)
	}
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("name is required: %w", ErrInvalidAccount)
	}
	if err := requireCurrency(ctx, db, in.CurrencyCode); err != nil {
		return err
	}
	if in.RiskLimit.IsNegative() || in.CommissionRate.IsNegative() || in.CommissionRate.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("risk limit and commission rate must be within range: %w", ErrInvalidAccount)
	}
	if in.GroupID != 0 {
		if account.Kind != common.AccountKindCustomer {
			return fmt.Errorf("only customers belong to groups: %w", ErrInvalidGroup)
		}
		exists, err := models.NotDeleted(db.NewSelect().Model((*models.CustomerGroup)(nil)).Where("id = ?", in.GroupID)).Exists(ctx)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("group %d: %w", in.GroupID, ErrInvalidGroup)
		}
	}
	if account.Kind == common.AccountKindPOS && in.BankAccountID != 0 {
		bank := &models.Account{}
		err := models.NotDeleted(db.NewSelect().Model(bank).Where("id = ?", in.BankAccountID)).Scan(ctx)
		if err != nil || bank.Kind != common.AccountKindBank {
			return fmt.Errorf("pos terminals settle into a bank account: %w", ErrInvalidAccount)
		}
	}

	account.Name = in.Name
	account.CurrencyCode = in.CurrencyCode
	account.Active = in.Active
	account.GroupID = in.GroupID
	account.RiskLimit = in.RiskLimit
	account.BankAccountID = in.BankAccountID
	account.CommissionRate = in.CommissionRate
	account.BankName = in.BankName
	account.Branch = in.Branch
	account.IBAN = in.IBAN
	account.TaxOffice = in.TaxOffice
	account.TaxNumber = in.TaxNumber
	account.Phone = in.Phone
	account.Email = in.Email
	account.Address = in.Address
	return nil
}

func (svc *LedgerService) CreateAccount(ctx context.Context, actor int64, in AccountInput) (*models.Account, error) {
	account := &models.Account{
		Kind:       in.Kind,
		SoftDelete: models.SoftDelete{State: string(ledger.StateActive)},
	}
	err := svc.runInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if err := applyAccountInput(ctx, tx, account, in); err != nil {
			return err
		}
		if account.Kind == common.AccountKindCustomer {
			if err := lockSequence(ctx, tx, common.CustomerCodePrefix); err != nil {
				return err
			}
			code, err := nextCode(ctx, tx, (*models.Account)(nil), "code", common.CustomerCodePrefix, 6)
			if err != nil {
				return err
			}
			account.Code = code
		}
		_, err := tx.NewInsert().Model(account).Exec(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	svc.publish(ctx, common.EntityAccount, "created", account.ID, actor, account, account.ID)
	return account, nil
}

func (svc *LedgerService) UpdateAccount(ctx context.Context, actor, id int64, in AccountInput) (*models.Account, error) {
	account := &models.Account{}
	err := svc.runInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if err := models.NotDeleted(tx.NewSelect().Model(account).Where("id = ?", id)).Scan(ctx); err != nil {
			return notFound(err, "account", id)
		}
		if in.CurrencyCode != account.CurrencyCode {
			// existing entries were booked against the old currency
			used, err := tx.NewSelect().Model((*models.Transaction)(nil)).
				Where("account_id = ? OR settlement_account_id = ?", id, id).
				Exists(ctx)
			if err != nil {
				return err
			}
			if used {
				return fmt.Errorf("currency of an account with transactions: %w", ErrInUse)
			}
		}
		if err := applyAccountInput(ctx, tx, account, in); err != nil {
			return err
		}
		_, err := tx.NewUpdate().Model(account).WherePK().Exec(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	svc.publish(ctx, common.EntityAccount, "updated", account.ID, actor, account, account.ID)
	return account, nil
}

func (svc *LedgerService) GetAccount(ctx context.Context, id int64) (*models.Account, error) {
	return getAccount(ctx, svc.DB, id)
}

func getAccount(ctx context.Context, db bun.IDB, id int64) (*models.Account, error) {
	account := &models.Account{}
	if err := models.NotDeleted(db.NewSelect().Model(account).Where("id = ?", id)).Scan(ctx); err != nil {
		return nil, notFound(err, "account", id)
	}
	return account, nil
}

func (svc *LedgerService) ListAccounts(ctx context.Context, filter AccountFilter) ([]models.Account, error) {
	accounts := []models.Account{}
	query := models.NotDeleted(svc.DB.NewSelect().Model(&accounts))
	if filter.Kind != "" {
		query.Where("kind = ?", filter.Kind)
	}
	if filter.GroupID != 0 {
		query.Where("group_id = ?", filter.GroupID)
	}
	if filter.ActiveOnly {
		query.Where("active = ?", true)
	}
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("LOWER(name) LIKE ?", like).WhereOr("LOWER(code) LIKE ?", like)
		})
	}
	if filter.Limit > 0 {
		query.Limit(filter.Limit).Offset(filter.Offset)
	}
	err := query.Order("kind", "name").Scan(ctx)
	return accounts, err
}

// requireLiveAccount loads an active, not deleted account of kind.
func requireLiveAccount(ctx context.Context, db bun.IDB, id int64, kind string) (*models.Account, error) {
	account, err := getAccount(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if account.Kind != kind {
		return nil, fmt.Errorf("account %d is a %s, expected %s: %w", id, account.Kind, kind, ErrInvalidAccount)
	}
	if !account.Active {
		return nil, fmt.Errorf("account %d: %w", id, ErrAccountInactive)
	}
	return account, nil
}
