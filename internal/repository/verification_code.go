package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/uangku/uangku/internal/model"
)

var (
	ErrCodeNotFound = errors.New("verification code not found")
)

type VerificationCodeRepository interface {
	Replace(code *model.VerificationCode) error
	ByUserAndCode(userID, code string) (*model.VerificationCode, error)
	Delete(id string) error
	DeleteByUser(userID string) error
}

type verificationCodeRepository struct {
	db *sqlx.DB
}

func NewVerificationCodeRepository(db *sqlx.DB) VerificationCodeRepository {
	return &verificationCodeRepository{db: db}
}

// Replace deletes all existing codes for the owning user and inserts the new
// one in a single transaction, so concurrent issuance never leaves two live
// codes for the same user.
func (r *verificationCodeRepository) Replace(code *model.VerificationCode) error {
	if code.ID == "" {
		code.ID = uuid.New().String()
	}
	if code.CreatedAt.IsZero() {
		code.CreatedAt = time.Now()
	}

	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`DELETE FROM verification_codes WHERE user_id = $1`, code.UserID)
	if err != nil {
		return fmt.Errorf("failed to delete prior codes: %w", err)
	}

	_, err = tx.Exec(`INSERT INTO verification_codes (id, user_id, code, expires_at, created_at) VALUES ($1, $2, $3, $4, $5)`,
		code.ID,
		code.UserID,
		code.Code,
		code.ExpiresAt,
		code.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert code: %w", err)
	}

	return tx.Commit()
}

// ByUserAndCode matches the submitted value exactly (string equality, no
// normalization). Expiry is the caller's concern.
func (r *verificationCodeRepository) ByUserAndCode(userID, code string) (*model.VerificationCode, error) {
	vc := &model.VerificationCode{}
	query := `SELECT * FROM verification_codes WHERE user_id = $1 AND code = $2`

	err := r.db.Get(vc, query, userID, code)
	if err == sql.ErrNoRows {
		return nil, ErrCodeNotFound
	}

	return vc, err
}

func (r *verificationCodeRepository) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM verification_codes WHERE id = $1`, id)
	return err
}

func (r *verificationCodeRepository) DeleteByUser(userID string) error {
	_, err := r.db.Exec(`DELETE FROM verification_codes WHERE user_id = $1`, userID)
	return err
}
