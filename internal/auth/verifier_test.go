package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestVerify_RoundTrip(t *testing.T) {
	v := NewTokenVerifier("secret", "authenticated")

	tok, err := v.Sign("user-1", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	session, err := v.Verify(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if session.UserID != "user-1" {
		t.Errorf("user = %q", session.UserID)
	}
	if !session.ExpiresAt.After(time.Now()) {
		t.Errorf("expiry %v should be in the future", session.ExpiresAt)
	}
}

func TestVerify_Expired(t *testing.T) {
	v := NewTokenVerifier("secret", "")
	tok, err := v.Sign("user-1", -time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	_, err = v.Verify(tok)
	if !errors.Is(err, jwt.ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	tok, _ := NewTokenVerifier("secret", "").Sign("user-1", time.Hour)

	if _, err := NewTokenVerifier("other", "").Verify(tok); err == nil {
		t.Error("expected signature error")
	}
}

func TestVerify_WrongAudience(t *testing.T) {
	tok, _ := NewTokenVerifier("secret", "anon").Sign("user-1", time.Hour)

	if _, err := NewTokenVerifier("secret", "authenticated").Verify(tok); err == nil {
		t.Error("expected audience error")
	}
}

func TestVerify_MissingSubject(t *testing.T) {
	claims := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	_, err = NewTokenVerifier("secret", "").Verify(tok)
	if !errors.Is(err, ErrMissingSubject) {
		t.Errorf("expected ErrMissingSubject, got %v", err)
	}
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := NewTokenVerifier("secret", "").Verify(tok); err == nil {
		t.Error("expected HS512 token to be rejected")
	}
}
