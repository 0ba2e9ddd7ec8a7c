package validation

import (
	"errors"

	passwordvalidator "github.com/wagslane/go-password-validator"
)

// passwordMinEntropyBits rejects passwords that are trivially guessable
// (short, repeated, or common-sequence strings) regardless of length.
const passwordMinEntropyBits = 50

// ValidatePassword validates password strength
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}

	// bcrypt silently truncates beyond 72 bytes, which would weaken long passwords
	if len(password) > 72 {
		return errors.New("password must not exceed 72 characters")
	}

	err := passwordvalidator.Validate(password, passwordMinEntropyBits)
	if err != nil {
		return errors.New("password is too weak, please choose a stronger one")
	}

	return nil
}
