package models

import "time"

// CustomerGroup is a node in the customer group tree. Level is 1 for root
// groups and parent level + 1 below.
type CustomerGroup struct {
	ID          int64          `json:"id" bun:",pk,autoincrement"`
	Code        string         `json:"code" bun:",unique,notnull"`
	Name        string         `json:"name" bun:",notnull"`
	ParentID    int64          `json:"parent_id,omitempty" bun:",nullzero"`
	Parent      *CustomerGroup `json:"-" bun:"rel:belongs-to,join:parent_id=id"`
	Level       int            `json:"level" bun:",notnull"`
	Description string         `json:"description"`
	CreatedAt   time.Time      `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
	SoftDelete
}
