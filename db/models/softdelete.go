package models

import (
	"github.com/muhasebehub/muhasebe.go/lib/ledger"
	"github.com/uptrace/bun"
)

// SoftDelete is embedded by every model that goes through the
// delete / restore / purge lifecycle.
type SoftDelete struct {
	State     string       `json:"state" bun:",notnull,default:'active'"`
	DeletedAt bun.NullTime `json:"deleted_at,omitempty" bun:",nullzero"`
	DeletedBy int64        `json:"deleted_by,omitempty" bun:",nullzero"`
}

func (s *SoftDelete) Lifecycle() ledger.Lifecycle {
	return ledger.Lifecycle{
		State:     ledger.State(s.State),
		DeletedAt: s.DeletedAt.Time,
		DeletedBy: s.DeletedBy,
	}
}

func (s *SoftDelete) SetLifecycle(l ledger.Lifecycle) {
	s.State = string(l.State)
	s.DeletedAt = bun.NullTime{Time: l.DeletedAt}
	s.DeletedBy = l.DeletedBy
}

func (s *SoftDelete) IsDeleted() bool {
	return s.State == string(ledger.StateDeleted)
}

// SoftDeletable is implemented by models embedding SoftDelete.
type SoftDeletable interface {
	Lifecycle() ledger.Lifecycle
	SetLifecycle(l ledger.Lifecycle)
}

// NotDeleted restricts a select to live rows.
func NotDeleted(q *bun.SelectQuery) *bun.SelectQuery {
	return q.Where("?TableAlias.state = ?", string(ledger.StateActive))
}

// OnlyDeleted restricts a select to soft deleted rows.
func OnlyDeleted(q *bun.SelectQuery) *bun.SelectQuery {
	return q.Where("?TableAlias.state = ?", string(ledger.StateDeleted))
}
