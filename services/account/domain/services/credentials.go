// Package services holds stateless account rules.
package services

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	accountdomain "github.com/ghuser/crochestock/services/account/domain"
)

const (
	MinUsernameLength = 3
	MaxUsernameLength = 64
	MinPasswordLength = 6
	// bcrypt ignores everything past 72 bytes.
	MaxPasswordBytes     = 72
	MaxDisplayNameLength = 255
)

// ValidateUsername requires 3 to 64 characters and no whitespace or control
// characters. Errors wrap ErrInvalidUsername.
func ValidateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n < MinUsernameLength {
		return fmt.Errorf("%w: must be at least %d characters", accountdomain.ErrInvalidUsername, MinUsernameLength)
	}
	if n > MaxUsernameLength {
		return fmt.Errorf("%w: must be at most %d characters", accountdomain.ErrInvalidUsername, MaxUsernameLength)
	}
	for _, r := range username {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return fmt.Errorf("%w: must not contain whitespace", accountdomain.ErrInvalidUsername)
		}
	}
	return nil
}

// ValidatePassword requires at least 6 characters and at most 72 bytes.
// Errors wrap ErrInvalidPassword.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return fmt.Errorf("%w: must be at least %d characters", accountdomain.ErrInvalidPassword, MinPasswordLength)
	}
	if len(password) > MaxPasswordBytes {
		return fmt.Errorf("%w: must be at most %d bytes", accountdomain.ErrInvalidPassword, MaxPasswordBytes)
	}
	return nil
}

// ValidateDisplayName requires a non-blank name of at most 255 characters.
// Errors wrap ErrInvalidDisplayName.
func ValidateDisplayName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: must not be blank", accountdomain.ErrInvalidDisplayName)
	}
	if utf8.RuneCountInString(name) > MaxDisplayNameLength {
		return fmt.Errorf("%w: must be at most %d characters", accountdomain.ErrInvalidDisplayName, MaxDisplayNameLength)
	}
	return nil
}
