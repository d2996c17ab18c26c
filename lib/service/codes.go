package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// nextCode returns prefix followed by the next zero padded sequence number
// among the codes already stored in column of model. Deleted rows keep
// their codes, so numbers are never reused while a row exists.
func nextCode(ctx context.Context, db bun.IDB, model interface{}, column, prefix string, width int) (string, error) {
	var last string
	err := db.NewSelect().
		Model(model).
		ColumnExpr("COALESCE(MAX(?), '')", bun.Ident(column)).
		Where("? LIKE ?", bun.Ident(column), prefix+"%").
		Where("LENGTH(?) = ?", bun.Ident(column), len(prefix)+width).
		Scan(ctx, &last)
	if err != nil {
		return "", err
	}
	seq := 0
	if last != "" {
		seq, err = strconv.Atoi(strings.TrimPrefix(last, prefix))
		if err != nil {
			return "", fmt.Errorf("malformed code %q: %w", last, err)
		}
	}
	return fmt.Sprintf("%s%0*d", prefix, width, seq+1), nil
}

// lockSequence serializes code generation for prefix on PostgreSQL until
// the surrounding transaction ends.
func lockSequence(ctx context.Context, tx bun.Tx, prefix string) error {
	if tx.Dialect().Name() != dialect.PG {
		return nil
	}
	_, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtext(?))", prefix)
	return err
}
