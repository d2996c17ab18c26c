package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/labstack/gommon/random"
	"github.com/muhasebehub/muhasebe.go/db/models"
	"github.com/muhasebehub/muhasebe.go/lib/tokens"
	"github.com/muhasebehub/muhasebe.go/rabbitmq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/ziflex/lecho/v3"
	"golang.org/x/crypto/bcrypt"
)

const alphaNumBytes = random.Alphanumeric

type LedgerService struct {
	Config         *Config
	DB             *bun.DB
	Logger         *lecho.Logger
	RabbitMQClient rabbitmq.Client
}

func (svc *LedgerService) GenerateToken(ctx context.Context, login, password, inRefreshToken string) (accessToken, refreshToken string, err error) {
	var user models.User

	switch {
	case login != "" || password != "":
		{
			if err := svc.DB.NewSelect().Model(&user).Where("login = ?", login).Scan(ctx); err != nil {
				return "", "", ErrBadAuth
			}
			if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
				return "", "", ErrBadAuth
			}
		}
	case inRefreshToken != "":
		{
			userId, err := tokens.GetUserIdFromToken(svc.Config.JWTSecret, inRefreshToken)
			if err != nil {
				return "", "", ErrBadAuth
			}
			if err := svc.DB.NewSelect().Model(&user).Where("id = ?", userId).Scan(ctx); err != nil {
				return "", "", ErrBadAuth
			}
		}
	default:
		{
			return "", "", fmt.Errorf("login and password or refresh token is required")
		}
	}

	if !user.Active {
		return "", "", ErrBadAuth
	}

	accessToken, err = tokens.GenerateAccessToken(svc.Config.JWTSecret, svc.Config.JWTAccessTokenExpiry, &user)
	if err != nil {
		return "", "", err
	}

	refreshToken, err = tokens.GenerateRefreshToken(svc.Config.JWTSecret, svc.Config.JWTRefreshTokenExpiry, &user)
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

// runInTx wraps fn in a database transaction. All reads inside fn must go
// through tx.
func (svc *LedgerService) runInTx(ctx context.Context, fn func(ctx context.Context, tx bun.Tx) error) error {
	return svc.DB.RunInTx(ctx, &sql.TxOptions{}, fn)
}

// lockAccounts takes row locks on the given accounts on PostgreSQL. SQLite
// holds a database wide write lock for the whole transaction instead.
func lockAccounts(ctx context.Context, tx bun.Tx, ids ...int64) error {
	if tx.Dialect().Name() != dialect.PG || len(ids) == 0 {
		return nil
	}
	var locked []int64
	return tx.NewSelect().
		Model((*models.Account)(nil)).
		Column("id").
		Where("id IN (?)", bun.In(ids)).
		Order("id").
		For("UPDATE").
		Scan(ctx, &locked)
}

func notFound(err error, what string, id int64) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
	}
	return err
}
