package service

import (
	"context"
	"fmt"

	"github.com/muhasebehub/muhasebe.go/common"
	"github.com/muhasebehub/muhasebe.go/db/models"
	"github.com/muhasebehub/muhasebe.go/lib/ledger"
	"github.com/uptrace/bun"
)

type GroupInput struct {
	Name        string
	ParentID    int64
	Description string
}

func groupCodePrefix(level int) string {
	idx := level - 1
	if idx >= len(common.GroupCodePrefixes) {
		idx = len(common.GroupCodePrefixes) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return common.GroupCodePrefixes[idx]
}

func (svc *LedgerService) CreateGroup(ctx context.Context, in GroupInput) (*models.CustomerGroup, error) {
	group := &models.CustomerGroup{
		Name:        in.Name,
		ParentID:    in.ParentID,
		Description: in.Description,
		Level:       1,
		SoftDelete:  models.SoftDelete{State: string(ledger.StateActive)},
	}
	err := svc.runInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if in.ParentID != 0 {
			parent := &models.CustomerGroup{}
			err := models.NotDeleted(tx.NewSelect().Model(parent).Where("id = ?", in.ParentID)).Scan(ctx)
			if err != nil {
				return fmt.Errorf("parent %d: %w", in.ParentID, ErrInvalidGroup)
			}
			group.Level = parent.Level + 1
		}
		prefix := groupCodePrefix(group.Level)
		if err := lockSequence(ctx, tx, prefix); err != nil {
			return err
		}
		code, err := nextCode(ctx, tx, (*models.CustomerGroup)(nil), "code", prefix, 3)
		if err != nil {
			return err
		}
		group.Code = code
		_, err = tx.NewInsert().Model(group).Exec(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return group, nil
}

func (svc *LedgerService) ListGroups(ctx context.Context) ([]models.CustomerGroup, error) {
	groups := []models.CustomerGroup{}
	err := models.NotDeleted(svc.DB.NewSelect().Model(&groups)).Order("level", "code").Scan(ctx)
	return groups, err
}

// groupTree loads the parent links of all live groups.
func groupTree(ctx context.Context, db bun.IDB) (ledger.GroupTree, error) {
	groups := []models.CustomerGroup{}
	if err := models.NotDeleted(db.NewSelect().Model(&groups)).Column("id", "parent_id").Scan(ctx); err != nil {
		return nil, err
	}
	tree := ledger.GroupTree{}
	for _, g := range groups {
		tree[g.ID] = g.ParentID
	}
	return tree, nil
}
