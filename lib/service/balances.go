package service

import (
	"context"
	"errors"

	"github.com/muhasebehub/muhasebe.go/common"
	"github.com/muhasebehub/muhasebe.go/db/models"
	"github.com/muhasebehub/muhasebe.go/lib/ledger"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type Balance struct {
	AccountID int64           `json:"account_id"`
	Currency  string          `json:"currency"`
	Balance   decimal.Decimal `json:"balance"`
	// Base is true when the balance is expressed in the base currency and
	// includes converted foreign entries.
	Base bool `json:"base"`
}

// liveEntries loads the non-deleted transactions that move account. A
// customer is moved by its own transactions, a till, bank or terminal by
// the transactions settled on it.
func liveEntries(ctx context.Context, db bun.IDB, account *models.Account) ([]models.Transaction, error) {
	transactions := []models.Transaction{}
	query := models.NotDeleted(db.NewSelect().Model(&transactions))
	if account.Kind == common.AccountKindCustomer {
		query.Where("account_id = ?", account.ID)
	} else {
		query.Where("settlement_account_id = ?", account.ID)
	}
	err := query.Order("transaction_date", "id").Scan(ctx)
	return transactions, err
}

func entriesOf(transactions []models.Transaction, base string) []ledger.Entry {
	entries := make([]ledger.Entry, 0, len(transactions))
	for i := range transactions {
		entries = append(entries, transactions[i].LedgerEntry(base))
	}
	return entries
}

// AccountBalance derives the balance of an account in currency, which
// defaults to the account's currency. The base currency balance folds in
// converted foreign entries at their recorded base equivalent; any other
// currency is summed at face value.
func (svc *LedgerService) AccountBalance(ctx context.Context, accountID int64, currency string) (*Balance, error) {
	account, err := getAccount(ctx, svc.DB, accountID)
	if err != nil {
		return nil, err
	}
	return svc.accountBalance(ctx, svc.DB, account, currency)
}

func (svc *LedgerService) accountBalance(ctx context.Context, db bun.IDB, account *models.Account, currency string) (*Balance, error) {
	if currency == "" {
		currency = account.CurrencyCode
	}
	result := &Balance{AccountID: account.ID, Currency: currency, Balance: decimal.Zero}

	base, err := svc.baseCurrency(ctx, db)
	switch {
	case errors.Is(err, ErrBaseCurrencyMissing):
		if currency == svc.Config.BaseCurrency {
			if svc.Config.StrictBaseCurrency {
				return nil, err
			}
			svc.Logger.Warnf("Base currency %q is not configured, reporting zero balance for account %d", svc.Config.BaseCurrency, account.ID)
			result.Base = true
			return result, nil
		}
	case err != nil:
		return nil, err
	}

	transactions, err := liveEntries(ctx, db, account)
	if err != nil {
		return nil, err
	}
	entries := entriesOf(transactions, base)
	if base != "" && currency == base {
		result.Balance = ledger.BaseBalance(entries, base)
		result.Base = true
	} else {
		result.Balance = ledger.BalanceIn(entries, currency)
	}
	return result, nil
}

// AccountBalances breaks the balance of an account down per currency at
// face value, listing only currencies with movement.
func (svc *LedgerService) AccountBalances(ctx context.Context, accountID int64) ([]ledger.CurrencyBalance, error) {
	account, err := getAccount(ctx, svc.DB, accountID)
	if err != nil {
		return nil, err
	}
	transactions, err := liveEntries(ctx, svc.DB, account)
	if err != nil {
		return nil, err
	}
	return ledger.Breakdown(entriesOf(transactions, svc.Config.BaseCurrency)), nil
}

// checkRiskLimit rejects the change when it would push a customer's base
// currency balance below minus its risk limit. pending replaces the entry
// of the transaction being edited, if any. Callers hold the account lock.
func (svc *LedgerService) checkRiskLimit(ctx context.Context, tx bun.Tx, account *models.Account, pending models.Transaction) error {
	if account.Kind != common.AccountKindCustomer || !account.RiskLimit.IsPositive() {
		return nil
	}
	if pending.Direction != string(ledger.Outflow) {
		return nil
	}
	base, err := svc.baseCurrency(ctx, tx)
	if err != nil {
		if errors.Is(err, ErrBaseCurrencyMissing) && !svc.Config.StrictBaseCurrency {
			return nil
		}
		return err
	}
	transactions, err := liveEntries(ctx, tx, account)
	if err != nil {
		return err
	}
	kept := transactions[:0]
	for _, t := range transactions {
		if pending.ID == 0 || t.ID != pending.ID {
			kept = append(kept, t)
		}
	}
	kept = append(kept, pending)
	if ledger.BaseBalance(entriesOf(kept, base), base).LessThan(account.RiskLimit.Neg()) {
		return ErrRiskLimitExceeded
	}
	return nil
}
