package model

import (
	"time"
)

type Category struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"-"`
	Name      string    `db:"name" json:"name"`
	Color     string    `db:"color" json:"color"` // hex, e.g. #3b82f6
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	// Computed in list queries, not a column
	TransactionCount int `db:"transaction_count" json:"transaction_count"`
}
