package migrations

import (
	"context"

	"github.com/muhasebehub/muhasebe.go/db/models"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		currencies := []models.Currency{
			{Code: "TL", Name: "Türk Lirası", Symbol: "₺", Active: true},
			{Code: "USD", Name: "US Dollar", Symbol: "$", Active: true},
			{Code: "EUR", Name: "Euro", Symbol: "€", Active: true},
		}
		_, err := db.NewInsert().Model(&currencies).Ignore().Exec(ctx)
		return err
	}, nil)
}
