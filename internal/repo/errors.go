package repo

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrDuplicate indicates a unique constraint violation (username, direct
// chat key, participant pair or idempotency key).
var ErrDuplicate = errors.New("duplicate")

// ErrInconsistentChat is returned when a direct chat exists for a pair but
// its participant set is not exactly that pair.
var ErrInconsistentChat = errors.New("direct chat participant set is inconsistent")

// isUniqueViolation recognizes unique violations across drivers. With
// TranslateError enabled GORM reports gorm.ErrDuplicatedKey, but
// glebarez/sqlite often returns plain-text errors instead.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, ErrDuplicate) {
		return true
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique") ||
		strings.Contains(low, "duplicate key") ||
		strings.Contains(low, "duplicate entry")
}

// dupOr maps unique violations to ErrDuplicate and returns other errors as is.
func dupOr(err error) error {
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}
