package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/muhasebehub/muhasebe.go/common"
	"github.com/muhasebehub/muhasebe.go/db/models"
	"github.com/muhasebehub/muhasebe.go/lib/ledger"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type TransactionInput struct {
	AccountID           int64
	SettlementAccountID int64
	Channel             string
	Direction           string
	CurrencyCode        string
	Amount              decimal.Decimal
	ExchangeRate        decimal.NullDecimal
	BaseAmount          decimal.NullDecimal
	Description         string
	DocumentNo          string
	TransactionDate     time.Time
}

type TransactionFilter struct {
	From                time.Time
	To                  time.Time
	AccountID           int64
	SettlementAccountID int64
	Channel             string
	Direction           string
	Currency            string
	MinAmount           decimal.NullDecimal
	MaxAmount           decimal.NullDecimal
	CreatedBy           int64
	Limit               int
	Offset              int
}

// settlementKind is the account kind a channel settles on. Channels without
// a settlement account return "".
func settlementKind(channel string) (string, error) {
	switch channel {
	case common.ChannelCash:
		return common.AccountKindCash, nil
	case common.ChannelBank:
		return common.AccountKindBank, nil
	case common.ChannelPOS:
		return common.AccountKindPOS, nil
	case common.ChannelOther:
		return "", nil
	}
	return "", fmt.Errorf("%q: %w", channel, ErrInvalidChannel)
}

func validateAmount(amount decimal.Decimal, rate, base decimal.NullDecimal) error {
	if !ledger.Round(amount).IsPositive() {
		return ledger.ErrInvalidAmount
	}
	if rate.Valid != base.Valid {
		return ErrIncompleteConversion
	}
	if rate.Valid && (!rate.Decimal.IsPositive() || !base.Decimal.IsPositive()) {
		return ledger.ErrInvalidAmount
	}
	return nil
}

// buildTransaction validates in and resolves the settlement account inside
// tx. It returns the ids of every account the transaction moves.
func (svc *LedgerService) buildTransaction(ctx context.Context, tx bun.Tx, t *models.Transaction, in TransactionInput) ([]int64, error) {
	if !ledger.Direction(in.Direction).Valid() {
		return nil, fmt.Errorf("%q: %w", in.Direction, ErrInvalidDirection)
	}
	kind, err := settlementKind(in.Channel)
	if err != nil {
		return nil, err
	}
	if err := validateAmount(in.Amount, in.ExchangeRate, in.BaseAmount); err != nil {
		return nil, err
	}
	customer, err := requireLiveAccount(ctx, tx, in.AccountID, common.AccountKindCustomer)
	if err != nil {
		return nil, err
	}
	currency := in.CurrencyCode
	if currency == "" {
		currency = customer.CurrencyCode
	}
	if err := requireCurrency(ctx, tx, currency); err != nil {
		return nil, err
	}

	rate, baseAmount := in.ExchangeRate, in.BaseAmount
	base, err := svc.baseCurrency(ctx, tx)
	if err != nil && (svc.Config.StrictBaseCurrency || !errors.Is(err, ErrBaseCurrencyMissing)) {
		return nil, err
	}
	if currency == base {
		// a base currency amount is its own base equivalent
		rate, baseAmount = decimal.NullDecimal{}, decimal.NullDecimal{}
	} else if baseAmount.Valid {
		baseAmount.Decimal = ledger.Round(baseAmount.Decimal)
	}
	converted := rate.Valid && baseAmount.Valid

	settlementID := in.SettlementAccountID
	if kind == "" && settlementID != 0 {
		return nil, fmt.Errorf("channel %s takes no settlement account: %w", in.Channel, ErrSettlementRequired)
	}
	if kind != "" {
		// converted cash and bank movements land on the base currency
		// till or bank account when there is one
		if converted && base != "" && (kind == common.AccountKindCash || kind == common.AccountKindBank) {
			redirect := &models.Account{}
			err := models.NotDeleted(tx.NewSelect().Model(redirect)).
				Where("kind = ?", kind).
				Where("currency_code = ?", base).
				Where("active = ?", true).
				Order("id").
				Limit(1).
				Scan(ctx)
			switch {
			case err == nil:
				settlementID = redirect.ID
			case !errors.Is(err, sql.ErrNoRows):
				return nil, err
			}
		}
		if settlementID == 0 {
			return nil, ErrSettlementRequired
		}
		if _, err := requireLiveAccount(ctx, tx, settlementID, kind); err != nil {
			if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidAccount) {
				return nil, fmt.Errorf("%v: %w", err, ErrSettlementRequired)
			}
			return nil, err
		}
	}

	date := in.TransactionDate
	if date.IsZero() {
		date = time.Now().UTC()
	}

	t.AccountID = customer.ID
	t.SettlementAccountID = settlementID
	t.Channel = in.Channel
	t.Direction = in.Direction
	t.CurrencyCode = currency
	t.Amount = ledger.Round(in.Amount)
	t.ExchangeRate = rate
	t.BaseAmount = baseAmount
	t.Description = in.Description
	t.DocumentNo = in.DocumentNo
	t.TransactionDate = date

	ids := []int64{customer.ID}
	if settlementID != 0 {
		ids = append(ids, settlementID)
	}
	if err := lockAccounts(ctx, tx, ids...); err != nil {
		return nil, err
	}
	if err := svc.checkRiskLimit(ctx, tx, customer, *t); err != nil {
		return nil, err
	}
	return ids, nil
}

// CreateTransaction records a customer movement, optionally settled on a
// till, bank account or card terminal. The balance check and the insert run
// under the same account locks.
func (svc *LedgerService) CreateTransaction(ctx context.Context, actor int64, in TransactionInput) (*models.Transaction, error) {
	t := &models.Transaction{
		CreatedBy:  actor,
		SoftDelete: models.SoftDelete{State: string(ledger.StateActive)},
	}
	var accountIDs []int64
	err := svc.runInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		ids, err := svc.buildTransaction(ctx, tx, t, in)
		if err != nil {
			return err
		}
		accountIDs = ids
		_, err = tx.NewInsert().Model(t).Exec(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	svc.publish(ctx, common.EntityTransaction, "created", t.ID, actor, t, accountIDs...)
	return t, nil
}

func (svc *LedgerService) UpdateTransaction(ctx context.Context, actor, id int64, in TransactionInput) (*models.Transaction, error) {
	t := &models.Transaction{}
	var accountIDs []int64
	err := svc.runInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if err := models.NotDeleted(tx.NewSelect().Model(t).Where("t.id = ?", id)).Scan(ctx); err != nil {
			return notFound(err, "transaction", id)
		}
		if t.TransferID != "" {
			return fmt.Errorf("transfer legs are changed through the transfer: %w", ErrInvalidChannel)
		}
		previous := []int64{t.AccountID}
		if t.SettlementAccountID != 0 {
			previous = append(previous, t.SettlementAccountID)
		}
		if err := lockAccounts(ctx, tx, previous...); err != nil {
			return err
		}
		ids, err := svc.buildTransaction(ctx, tx, t, in)
		if err != nil {
			return err
		}
		accountIDs = append(previous, ids...)
		_, err = tx.NewUpdate().Model(t).WherePK().Exec(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	svc.publish(ctx, common.EntityTransaction, "updated", t.ID, actor, t, accountIDs...)
	return t, nil
}

func (svc *LedgerService) GetTransaction(ctx context.Context, id int64) (*models.Transaction, error) {
	t := &models.Transaction{}
	if err := models.NotDeleted(svc.DB.NewSelect().Model(t).Where("t.id = ?", id)).Scan(ctx); err != nil {
		return nil, notFound(err, "transaction", id)
	}
	return t, nil
}

func (svc *LedgerService) ListTransactions(ctx context.Context, filter TransactionFilter) ([]models.Transaction, error) {
	transactions := []models.Transaction{}
	query := models.NotDeleted(svc.DB.NewSelect().Model(&transactions))
	if !filter.From.IsZero() {
		query.Where("t.transaction_date >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		query.Where("t.transaction_date <= ?", filter.To)
	}
	if filter.AccountID != 0 {
		query.Where("t.account_id = ?", filter.AccountID)
	}
	if filter.SettlementAccountID != 0 {
		query.Where("t.settlement_account_id = ?", filter.SettlementAccountID)
	}
	if filter.Channel != "" {
		query.Where("t.channel = ?", filter.Channel)
	}
	if filter.Direction != "" {
		query.Where("t.direction = ?", filter.Direction)
	}
	if filter.Currency != "" {
		query.Where("t.currency_code = ?", filter.Currency)
	}
	if filter.MinAmount.Valid {
		query.Where("t.amount >= ?", filter.MinAmount.Decimal)
	}
	if filter.MaxAmount.Valid {
		query.Where("t.amount <= ?", filter.MaxAmount.Decimal)
	}
	if filter.CreatedBy != 0 {
		query.Where("t.created_by = ?", filter.CreatedBy)
	}
	limit := filter.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	err := query.OrderExpr("t.transaction_date DESC, t.id DESC").Limit(limit).Offset(filter.Offset).Scan(ctx)
	return transactions, err
}
