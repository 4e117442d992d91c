package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestSignAndVerifyJWT(t *testing.T) {
	Configure("test-secret", time.Hour)
	t.Cleanup(func() { Configure("", 0) })

	token, err := SignJWT("user-1", "a@example.com", "Ada")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	claims, err := VerifyJWT(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != "user-1" || claims.Email != "a@example.com" || claims.Name != "Ada" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.ExpiresAt == nil || claims.ExpiresAt.Time.Sub(claims.IssuedAt.Time) != time.Hour {
		t.Fatalf("unexpected expiry: %+v", claims.ExpiresAt)
	}
}

func TestVerifyJWTRejectsWrongSecret(t *testing.T) {
	Configure("secret-a", 0)
	token, err := SignJWT("user-1", "", "")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	Configure("secret-b", 0)
	t.Cleanup(func() { Configure("", 0) })

	if _, err := VerifyJWT(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyJWTRejectsExpired(t *testing.T) {
	Configure("test-secret", 0)
	t.Cleanup(func() { Configure("", 0) })

	past := time.Now().Add(-2 * time.Hour)
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "user-1",
		IssuedAt:  jwt.NewNumericDate(past),
		ExpiresAt: jwt.NewNumericDate(past.Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := VerifyJWT(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyJWTRejectsGarbage(t *testing.T) {
	if _, err := VerifyJWT("not-a-token"); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestSignJWTRequiresSubject(t *testing.T) {
	if _, err := SignJWT("  ", "", ""); err == nil {
		t.Fatalf("expected error for empty subject")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "s3cret" {
		t.Fatalf("hash must not equal the password")
	}
	if err := ComparePassword(hash, "s3cret"); err != nil {
		t.Fatalf("compare: %v", err)
	}
	if err := ComparePassword(hash, "wrong"); err != ErrPasswordMismatch {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}
}
