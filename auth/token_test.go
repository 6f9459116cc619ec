package auth

import (
	"errors"
	"testing"
	"time"

	"vidly/models"

	"github.com/golang-jwt/jwt/v5"
)

func TestIssueAndParse(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)

	token, err := issuer.Issue(models.User{ID: "u1", IsAdmin: true})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := issuer.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != "u1" || !claims.IsAdmin {
		t.Fatalf("claims = %+v", claims)
	}
	if claims.ExpiresAt == nil {
		t.Fatal("expected an expiry")
	}
}

func TestZeroTTLHasNoExpiry(t *testing.T) {
	issuer := NewTokenIssuer("secret", 0)

	token, err := issuer.Issue(models.User{ID: "u1"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := issuer.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.ExpiresAt != nil {
		t.Fatalf("unexpected expiry %v", claims.ExpiresAt)
	}
}

func TestParseRejects(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	valid, err := issuer.Issue(models.User{ID: "u1"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	expired := NewTokenIssuer("secret", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expiredToken, err := expired.Issue(models.User{ID: "u1"})
	if err != nil {
		t.Fatalf("issue expired: %v", err)
	}

	otherKey, err := NewTokenIssuer("other", time.Hour).Issue(models.User{ID: "u1"})
	if err != nil {
		t.Fatalf("issue other: %v", err)
	}

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "u1", IsAdmin: true}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}

	tests := map[string]string{
		"empty":     "",
		"garbage":   "not.a.token",
		"tampered":  valid + "x",
		"expired":   expiredToken,
		"wrong key": otherKey,
		"alg none":  unsigned,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := issuer.Parse(token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("12345", 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "12345" {
		t.Fatal("password stored in plain text")
	}
	if !CheckPassword(hash, "12345") {
		t.Fatal("expected match")
	}
	if CheckPassword(hash, "54321") {
		t.Fatal("expected mismatch")
	}
}
