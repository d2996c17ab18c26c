package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {

		if db.Dialect().Name().String() != "pg" {
			fmt.Printf("\033[1;31m%s\033[0m", "You are not using PostgreSQL. DB level checks can not be enabled!\n")
			return nil
		}
		sql := `
			-- amounts are positive, the direction carries the sign
				ALTER TABLE transactions
				ADD CONSTRAINT check_amount_positive
				CHECK (amount > 0);

				ALTER TABLE transactions
				ADD CONSTRAINT check_direction
				CHECK (direction IN ('inflow', 'outflow'));

			-- a conversion is recorded completely or not at all
				ALTER TABLE transactions
				ADD CONSTRAINT check_conversion_complete
				CHECK ((exchange_rate IS NULL) = (base_amount IS NULL));

			-- transfers and settlements never loop back to the same account
				ALTER TABLE transactions
				ADD CONSTRAINT check_not_same_account
				CHECK (settlement_account_id IS NULL OR settlement_account_id != account_id);

				ALTER TABLE invoice_lines
				ADD CONSTRAINT check_line_quantity_positive
				CHECK (quantity > 0);

				ALTER TABLE invoice_lines
				ADD CONSTRAINT check_line_net_tax_gross
				CHECK (net + tax = gross);

			-- soft delete bookkeeping moves together
				ALTER TABLE transactions
				ADD CONSTRAINT check_deleted_stamp
				CHECK ((state = 'deleted') = (deleted_at IS NOT NULL));

				ALTER TABLE invoices
				ADD CONSTRAINT check_deleted_stamp
				CHECK ((state = 'deleted') = (deleted_at IS NOT NULL));
		`
		if _, err := db.Exec(sql); err != nil {
			return err
		}
		return nil
	}, nil)
}
