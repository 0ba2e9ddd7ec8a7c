package validation

import (
	"errors"
	"strings"
	"time"

	"github.com/uangku/uangku/internal/model"
)

// maxAmount matches the storage precision of decimal(15,2)
const maxAmount = 9999999999999.99

// ValidateDescription validates a transaction description
func ValidateDescription(description string) error {
	trimmed := strings.TrimSpace(description)

	if trimmed == "" {
		return errors.New("description is required")
	}

	if len(trimmed) > 255 {
		return errors.New("description is too long (max 255 characters)")
	}

	return nil
}

// ValidateAmount validates a transaction amount
func ValidateAmount(amount float64) error {
	if amount < 0.01 {
		return errors.New("amount must be at least 0.01")
	}

	if amount > maxAmount {
		return errors.New("amount is too large")
	}

	return nil
}

// ValidateTransactionType validates the income/expense discriminator
func ValidateTransactionType(t string) error {
	if t != model.TransactionTypeIncome && t != model.TransactionTypeExpense {
		return errors.New("type must be income or expense")
	}
	return nil
}

// ParseDate parses a transaction date in YYYY-MM-DD form
func ParseDate(date string) (time.Time, error) {
	if date == "" {
		return time.Time{}, errors.New("date is required")
	}

	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}, errors.New("invalid date format, expected YYYY-MM-DD")
	}

	return d, nil
}
