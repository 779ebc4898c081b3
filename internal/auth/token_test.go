package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const secret = "test-secret-0123456789"

func TestTokenManager_IssueAndVerify(t *testing.T) {
	m := NewTokenManager(secret, 0, "go-direct-chat")
	if m.TTL() != 30*24*time.Hour {
		t.Fatalf("default ttl should be 30 days, got %v", m.TTL())
	}

	tok, exp, err := m.Issue(Identity{UserID: 7, Username: "alice"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if d := time.Until(exp); d < 29*24*time.Hour || d > 30*24*time.Hour+time.Minute {
		t.Fatalf("unexpected expiry %v", exp)
	}

	id, err := m.Verify(tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if id.UserID != 7 || id.Username != "alice" {
		t.Fatalf("unexpected identity: %+v", id)
	}
}

func TestTokenManager_PayloadShape(t *testing.T) {
	m := NewTokenManager(secret, time.Hour, "")
	tok, _, _ := m.Issue(Identity{UserID: 3, Username: "bob"})

	var mc jwt.MapClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tok, &mc); err != nil {
		t.Fatalf("ParseUnverified: %v", err)
	}
	if mc["id"] != float64(3) || mc["username"] != "bob" {
		t.Fatalf("payload must carry id and username, got %v", mc)
	}
	if _, ok := mc["exp"]; !ok {
		t.Fatalf("payload must carry exp")
	}
}

func TestTokenManager_RejectsForeignSecret(t *testing.T) {
	good := NewTokenManager(secret, time.Hour, "")
	evil := NewTokenManager("another-secret-9876543210", time.Hour, "")

	tok, _, _ := evil.Issue(Identity{UserID: 1, Username: "admin"})
	if _, err := good.Verify(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenManager_RejectsExpired(t *testing.T) {
	m := NewTokenManager(secret, time.Minute, "")
	past := time.Now().Add(-2 * time.Hour)
	m.now = func() time.Time { return past }
	tok, _, err := m.Issue(Identity{UserID: 1, Username: "alice"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	m.now = time.Now

	_, err = m.Verify(tok)
	if !errors.Is(err, ErrTokenExpired) || !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenManager_RejectsAlgNoneAndOtherAlgs(t *testing.T) {
	m := NewTokenManager(secret, time.Hour, "")
	claims := Claims{
		UserID:   1,
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := m.Verify(none); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("alg=none must be rejected, got %v", err)
	}

	hs512, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(secret))
	if _, err := m.Verify(hs512); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("unexpected algorithm must be rejected, got %v", err)
	}
}

func TestTokenManager_RejectsMissingExpiryAndIdentity(t *testing.T) {
	m := NewTokenManager(secret, time.Hour, "")

	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: 1, Username: "a"}).SignedString([]byte(secret))
	if _, err := m.Verify(noExp); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("token without exp must be rejected, got %v", err)
	}

	noID, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte(secret))
	if _, err := m.Verify(noID); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("token without identity must be rejected, got %v", err)
	}
}

func TestTokenManager_RejectsWrongIssuerAndGarbage(t *testing.T) {
	a := NewTokenManager(secret, time.Hour, "issuer-a")
	b := NewTokenManager(secret, time.Hour, "issuer-b")
	tok, _, _ := a.Issue(Identity{UserID: 1, Username: "alice"})
	if _, err := b.Verify(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("wrong issuer must be rejected, got %v", err)
	}

	for _, s := range []string{"", "garbage", strings.Repeat("a.", 3)} {
		if _, err := a.Verify(s); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("Verify(%q) should fail, got %v", s, err)
		}
	}
}

func TestTokenManager_IssueRejectsEmptyIdentity(t *testing.T) {
	m := NewTokenManager(secret, time.Hour, "")
	if _, _, err := m.Issue(Identity{}); err == nil {
		t.Fatalf("expected error for empty identity")
	}
}
