package models

import "time"

// Currency : Currency Model
type Currency struct {
	Code      string    `json:"code" bun:",pk"`
	Name      string    `json:"name" bun:",notnull"`
	Symbol    string    `json:"symbol"`
	Active    bool      `json:"active" bun:",notnull"`
	CreatedAt time.Time `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
}
