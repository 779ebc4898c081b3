// Package auth holds the credential primitives used by the Authenticator
// and the Access Guard: bcrypt password hashing and HS256 bearer tokens.
// Everything here is pure computation; nothing touches the store.
package auth

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// ErrMismatch is returned when a password does not match its hash.
var ErrMismatch = errors.New("auth: password mismatch")

// ErrUnknownScheme is returned for stored hashes that are not in a
// recognized versioned format.
var ErrUnknownScheme = errors.New("auth: unknown password hash scheme")

// bcryptPrefixes are the modular-crypt versions bcrypt can verify.
var bcryptPrefixes = []string{"$2a$", "$2b$", "$2y$"}

// PasswordHasher hashes and verifies passwords with bcrypt. Hashes carry
// their own version and cost ("$2a$10$..."), so the scheme can be raised
// later without invalidating stored credentials.
type PasswordHasher struct {
	Cost int

	// dummy is a valid hash compared against when no user exists, so the
	// unknown-user path costs the same as a wrong password.
	dummy []byte
}

// NewPasswordHasher returns a hasher with the given cost, clamped to
// bcrypt's allowed range.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	h := &PasswordHasher{Cost: cost}
	h.dummy, _ = bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), cost)
	return h
}

// Hash returns the bcrypt hash of password. Passwords longer than 72 bytes
// are rejected with bcrypt.ErrPasswordTooLong.
func (h *PasswordHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify compares password against hash in constant time. It returns
// ErrMismatch on a wrong password and ErrUnknownScheme when hash is not a
// bcrypt hash.
func (h *PasswordHasher) Verify(hash, password string) error {
	if !isBcrypt(hash) {
		return ErrUnknownScheme
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrMismatch
	}
	return err
}

// Burn performs a comparison against an internal hash and discards the
// result.
func (h *PasswordHasher) Burn(password string) {
	if len(h.dummy) == 0 {
		return
	}
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(password))
}

func isBcrypt(hash string) bool {
	for _, p := range bcryptPrefixes {
		if strings.HasPrefix(hash, p) {
			return true
		}
	}
	return false
}
