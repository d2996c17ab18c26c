package ledger

import (
	"errors"
	"fmt"
	"time"
)

type State string

const (
	StateActive  State = "active"
	StateDeleted State = "deleted"
	StatePurged  State = "purged"
)

var ErrTransition = errors.New("lifecycle transition not allowed")

// Lifecycle is the soft delete bookkeeping of an entity. State, DeletedAt
// and DeletedBy only ever change together through the methods below.
type Lifecycle struct {
	State     State
	DeletedAt time.Time
	DeletedBy int64
}

func (l *Lifecycle) current() State {
	if l.State == "" {
		return StateActive
	}
	return l.State
}

// MarkDeleted moves an active entity to Deleted and reports whether
// anything changed. Deleting a deleted entity is a no-op.
func (l *Lifecycle) MarkDeleted(actor int64, now time.Time) (bool, error) {
	switch l.current() {
	case StateActive:
		l.State = StateDeleted
		l.DeletedAt = now
		l.DeletedBy = actor
		return true, nil
	case StateDeleted:
		return false, nil
	}
	return false, fmt.Errorf("%w: delete from %s", ErrTransition, l.State)
}

// Restore moves a deleted entity back to Active. Restoring an active
// entity is a no-op.
func (l *Lifecycle) Restore() (bool, error) {
	switch l.current() {
	case StateDeleted:
		l.State = StateActive
		l.DeletedAt = time.Time{}
		l.DeletedBy = 0
		return true, nil
	case StateActive:
		return false, nil
	}
	return false, fmt.Errorf("%w: restore from %s", ErrTransition, l.State)
}

// Purge marks the entity as permanently removed. It is only reachable from
// Deleted.
func (l *Lifecycle) Purge() error {
	if l.current() != StateDeleted {
		return fmt.Errorf("%w: purge from %s", ErrTransition, l.current())
	}
	l.State = StatePurged
	return nil
}
