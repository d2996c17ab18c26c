package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/muhasebehub/muhasebe.go/db/models"
	"github.com/uptrace/bun"
)

func (svc *LedgerService) ListCurrencies(ctx context.Context, onlyActive bool) ([]models.Currency, error) {
	currencies := []models.Currency{}
	query := svc.DB.NewSelect().Model(&currencies).Order("code")
	if onlyActive {
		query.Where("active = ?", true)
	}
	err := query.Scan(ctx)
	return currencies, err
}

func (svc *LedgerService) CreateCurrency(ctx context.Context, code, name, symbol string) (*models.Currency, error) {
	currency := &models.Currency{
		Code:   strings.ToUpper(strings.TrimSpace(code)),
		Name:   name,
		Symbol: symbol,
		Active: true,
	}
	if currency.Code == "" {
		return nil, ErrUnknownCurrency
	}
	if _, err := svc.DB.NewInsert().Model(currency).Exec(ctx); err != nil {
		return nil, err
	}
	return currency, nil
}

// requireCurrency fails with ErrUnknownCurrency unless code names an active
// currency.
func requireCurrency(ctx context.Context, db bun.IDB, code string) error {
	exists, err := db.NewSelect().
		Model((*models.Currency)(nil)).
		Where("code = ?", code).
		Where("active = ?", true).
		Exists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%s: %w", code, ErrUnknownCurrency)
	}
	return nil
}

// baseCurrency returns the configured base currency code, or
// ErrBaseCurrencyMissing when it is not set up in the currencies table.
func (svc *LedgerService) baseCurrency(ctx context.Context, db bun.IDB) (string, error) {
	code := svc.Config.BaseCurrency
	if code == "" {
		return "", ErrBaseCurrencyMissing
	}
	err := requireCurrency(ctx, db, code)
	if errors.Is(err, ErrUnknownCurrency) || errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%s: %w", code, ErrBaseCurrencyMissing)
	}
	if err != nil {
		return "", err
	}
	return code, nil
}
