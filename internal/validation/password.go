// Package validation provides input validation utilities
package validation

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"puppytalk/internal/models"
)

const (
	passwordMinLength = 8
	passwordMaxLength = 20
	emailMaxLength    = 254
)

var (
	emailRegex          = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9\-]+(\.[a-zA-Z0-9\-]+)*\.[a-zA-Z]{2,}$`)
	passwordDigitRegex  = regexp.MustCompile(`[0-9]`)
	passwordSymbolRegex = regexp.MustCompile(`[!@#$%^&*()_+\-=\[\]{};':"\\|,.<>\/?]`)
)

// ValidatePassword checks length 8-20 and that at least one uppercase
// letter, lowercase letter, digit and symbol are present.
func ValidatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < passwordMinLength || n > passwordMaxLength {
		return models.NewValidationError(models.CodeInvalidPasswordFormat)
	}

	hasUpper, hasLower := false, false
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		}
	}
	if !hasUpper || !hasLower {
		return models.NewValidationError(models.CodeInvalidPasswordFormat)
	}

	if !passwordDigitRegex.MatchString(password) || !passwordSymbolRegex.MatchString(password) {
		return models.NewValidationError(models.CodeInvalidPasswordFormat)
	}

	return nil
}

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	if len(email) > emailMaxLength || !emailRegex.MatchString(email) {
		return models.NewValidationError(models.CodeInvalidEmailFormat)
	}
	return nil
}

// NormalizeEmail trims and lower-cases an address so uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
