package auth

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher_HashAndVerify(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("s3cret!")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !strings.HasPrefix(hash, "$2a$04$") {
		t.Fatalf("expected versioned bcrypt hash, got %q", hash)
	}
	if hash == "s3cret!" {
		t.Fatalf("hash must not equal the plaintext")
	}

	if err := h.Verify(hash, "s3cret!"); err != nil {
		t.Fatalf("Verify(correct): %v", err)
	}
	if err := h.Verify(hash, "wrong"); !errors.Is(err, ErrMismatch) {
		t.Fatalf("Verify(wrong) = %v, want ErrMismatch", err)
	}
}

func TestPasswordHasher_SaltsEachHash(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)
	a, _ := h.Hash("same")
	b, _ := h.Hash("same")
	if a == b {
		t.Fatalf("two hashes of the same password should differ")
	}
}

func TestPasswordHasher_UnknownScheme(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)
	if err := h.Verify("plaintext", "plaintext"); !errors.Is(err, ErrUnknownScheme) {
		t.Fatalf("expected ErrUnknownScheme, got %v", err)
	}
}

func TestPasswordHasher_ClampsCost(t *testing.T) {
	if h := NewPasswordHasher(1); h.Cost != bcrypt.MinCost {
		t.Fatalf("cost should clamp to min, got %d", h.Cost)
	}
}

func TestPasswordHasher_TooLong(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)
	if _, err := h.Hash(strings.Repeat("x", 73)); err == nil {
		t.Fatalf("expected error for password over 72 bytes")
	}
}

func TestPasswordHasher_Burn(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)
	h.Burn("anything") // must not panic
	(&PasswordHasher{}).Burn("anything")
}
