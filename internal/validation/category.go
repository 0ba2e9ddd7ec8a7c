package validation

import (
	"errors"
	"regexp"
	"strings"
)

var hexColorRe = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// ValidateCategoryName validates a category name
func ValidateCategoryName(name string) error {
	trimmed := strings.TrimSpace(name)

	if trimmed == "" {
		return errors.New("category name is required")
	}

	if len(trimmed) > 255 {
		return errors.New("category name is too long (max 255 characters)")
	}

	return nil
}

// ValidateColor validates a hex color code like #3b82f6
func ValidateColor(color string) error {
	if color == "" {
		return errors.New("color is required")
	}

	if !hexColorRe.MatchString(color) {
		return errors.New("color must be a valid hex code (e.g. #3b82f6)")
	}

	return nil
}
