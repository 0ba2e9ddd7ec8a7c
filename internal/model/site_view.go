package model

import (
	"time"
)

// SiteView records one unique visit per hashed IP per calendar day, keyed on
// (ip_hash, viewed_at). The raw IP address is never stored, only a keyed
// HMAC-SHA256 hash.
type SiteView struct {
	IPHash    string    `db:"ip_hash"`   // 64 hex chars
	ViewedAt  string    `db:"viewed_at"` // date, YYYY-MM-DD
	CreatedAt time.Time `db:"created_at"`
}
