package model

import (
	"time"
)

// VerificationCode is a short-lived, single-use 6-digit email verification code.
// At most one live code exists per user; issuing a new one replaces any prior code.
type VerificationCode struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Code      string    `db:"code"` // 6 numeric characters, zero-padded
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}

func (c *VerificationCode) IsExpired() bool {
	return !time.Now().Before(c.ExpiresAt)
}
