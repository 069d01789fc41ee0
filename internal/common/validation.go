package common

import (
	"strings"
)

// NormalizeEmail applies the same lowercase/trim on write and on lookup so the
// unique index sees one spelling per address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateCredentials is a presence check only; password rules are out of scope.
func ValidateCredentials(email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return NewValidationError("please provide an email and a password")
	}
	return nil
}
