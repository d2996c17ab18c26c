package migrations

import (
	"context"

	"github.com/muhasebehub/muhasebe.go/db/models"
	"github.com/uptrace/bun"
)

/* Since this init will reflect the latest model fields when run on fresh db
make sure that when you add/remove columns in subsequent migrations IfNotExists/IfExists is used
otherwise it's going to result in errors.
*/
func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		// order matters, referenced tables first
		tables := []interface{}{
			(*models.User)(nil),
			(*models.Currency)(nil),
			(*models.CustomerGroup)(nil),
			(*models.Account)(nil),
			(*models.Transaction)(nil),
			(*models.Item)(nil),
			(*models.ItemGroupPrice)(nil),
			(*models.ItemOption)(nil),
			(*models.ItemOptionValue)(nil),
			(*models.Invoice)(nil),
			(*models.InvoiceLine)(nil),
		}
		for _, model := range tables {
			if _, err := db.NewCreateTable().Model(model).IfNotExists().WithForeignKeys().Exec(ctx); err != nil {
				return err
			}
		}

		indexes := []struct {
			model   interface{}
			name    string
			columns []string
		}{
			{(*models.Transaction)(nil), "transactions_account_state_idx", []string{"account_id", "state"}},
			{(*models.Transaction)(nil), "transactions_settlement_state_idx", []string{"settlement_account_id", "state"}},
			{(*models.Transaction)(nil), "transactions_transfer_idx", []string{"transfer_id"}},
			{(*models.InvoiceLine)(nil), "invoice_lines_invoice_idx", []string{"invoice_id"}},
			{(*models.Invoice)(nil), "invoices_account_idx", []string{"account_id"}},
			{(*models.Account)(nil), "accounts_kind_idx", []string{"kind", "state"}},
		}
		for _, idx := range indexes {
			if _, err := db.NewCreateIndex().Model(idx.model).Index(idx.name).Column(idx.columns...).IfNotExists().Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	}, nil)
}
