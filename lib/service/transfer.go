package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/muhasebehub/muhasebe.go/common"
	"github.com/muhasebehub/muhasebe.go/db/models"
	"github.com/muhasebehub/muhasebe.go/lib/ledger"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// TransferInput moves Amount from one customer account to another. Each
// side may record its own conversion to the base currency.
type TransferInput struct {
	FromAccountID      int64
	ToAccountID        int64
	CurrencyCode       string
	Amount             decimal.Decimal
	SenderRate         decimal.NullDecimal
	SenderBaseAmount   decimal.NullDecimal
	ReceiverRate       decimal.NullDecimal
	ReceiverBaseAmount decimal.NullDecimal
	Description        string
	TransactionDate    time.Time
}

type Transfer struct {
	ID       string              `json:"id"`
	Outflow  *models.Transaction `json:"outflow"`
	Inflow   *models.Transaction `json:"inflow"`
	Currency string              `json:"currency"`
	Amount   decimal.Decimal     `json:"amount"`
}

// CreateTransfer books an outflow on the sender and an inflow on the
// receiver in one database transaction. Both legs share a transfer id and
// are deleted and restored together.
func (svc *LedgerService) CreateTransfer(ctx context.Context, actor int64, in TransferInput) (*Transfer, error) {
	if in.FromAccountID == in.ToAccountID {
		return nil, ErrSameAccount
	}
	if err := validateAmount(in.Amount, in.SenderRate, in.SenderBaseAmount); err != nil {
		return nil, err
	}
	if err := validateAmount(in.Amount, in.ReceiverRate, in.ReceiverBaseAmount); err != nil {
		return nil, err
	}
	transfer := &Transfer{ID: uuid.NewString()}
	err := svc.runInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if err := lockAccounts(ctx, tx, in.FromAccountID, in.ToAccountID); err != nil {
			return err
		}
		sender, err := requireLiveAccount(ctx, tx, in.FromAccountID, common.AccountKindCustomer)
		if err != nil {
			return err
		}
		receiver, err := requireLiveAccount(ctx, tx, in.ToAccountID, common.AccountKindCustomer)
		if err != nil {
			return err
		}
		currency := in.CurrencyCode
		if currency == "" {
			currency = sender.CurrencyCode
		}
		if err := requireCurrency(ctx, tx, currency); err != nil {
			return err
		}
		base, err := svc.baseCurrency(ctx, tx)
		if err != nil && (svc.Config.StrictBaseCurrency || !errors.Is(err, ErrBaseCurrencyMissing)) {
			return err
		}
		date := in.TransactionDate
		if date.IsZero() {
			date = time.Now().UTC()
		}

		leg := func(account *models.Account, direction ledger.Direction, rate, baseAmount decimal.NullDecimal) *models.Transaction {
			if currency == base {
				rate, baseAmount = decimal.NullDecimal{}, decimal.NullDecimal{}
			} else if baseAmount.Valid {
				baseAmount.Decimal = ledger.Round(baseAmount.Decimal)
			}
			return &models.Transaction{
				AccountID:       account.ID,
				Channel:         common.ChannelTransfer,
				Direction:       string(direction),
				CurrencyCode:    currency,
				Amount:          ledger.Round(in.Amount),
				ExchangeRate:    rate,
				BaseAmount:      baseAmount,
				TransferID:      transfer.ID,
				Description:     in.Description,
				TransactionDate: date,
				CreatedBy:       actor,
				SoftDelete:      models.SoftDelete{State: string(ledger.StateActive)},
			}
		}
		transfer.Outflow = leg(sender, ledger.Outflow, in.SenderRate, in.SenderBaseAmount)
		transfer.Inflow = leg(receiver, ledger.Inflow, in.ReceiverRate, in.ReceiverBaseAmount)
		transfer.Currency = currency
		transfer.Amount = transfer.Outflow.Amount

		if err := svc.checkRiskLimit(ctx, tx, sender, *transfer.Outflow); err != nil {
			return fmt.Errorf("sender %s: %w", sender.Code, err)
		}
		if _, err := tx.NewInsert().Model(transfer.Outflow).Exec(ctx); err != nil {
			return err
		}
		_, err = tx.NewInsert().Model(transfer.Inflow).Exec(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	svc.publish(ctx, common.EntityTransaction, "transferred", transfer.Outflow.ID, actor, transfer, in.FromAccountID, in.ToAccountID)
	return transfer, nil
}
