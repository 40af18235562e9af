package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

// newTestTokenService creates a TokenService for testing.
// It uses a fixed, known secret so tests are deterministic.
func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	ts, err := NewTokenService("test-secret-at-least-16-chars!!")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return ts
}

var testIdentity = Identity{ID: "user-123", Username: "u1", Email: "u1@example.com"}

// =========================================================================
// TOKEN SERVICE CONSTRUCTION TESTS
// =========================================================================

func TestNewTokenService_ShortSecret(t *testing.T) {
	_, err := NewTokenService("short")
	if err == nil {
		t.Fatal("NewTokenService() should reject secrets shorter than 16 chars")
	}
}

func TestNewTokenService_ValidSecret(t *testing.T) {
	_, err := NewTokenService("this-is-16-chars")
	if err != nil {
		t.Fatalf("NewTokenService() unexpected error for valid secret: %v", err)
	}
}

// =========================================================================
// GENERATE TESTS
// =========================================================================

func TestGenerate_ReturnsJWTShapedToken(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Generate(testIdentity)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got := strings.Count(token, "."); got != 2 {
		t.Errorf("Generate() token doesn't look like a JWT (expected 2 dots, got %d)", got)
	}
}

// Two logins by the same user in the same second must still produce
// different tokens, or revoking one would revoke both.
func TestGenerate_SameUserGetsDistinctTokens(t *testing.T) {
	ts := newTestTokenService(t)

	token1, _ := ts.Generate(testIdentity)
	token2, _ := ts.Generate(testIdentity)

	if token1 == token2 {
		t.Error("Generate() returned identical tokens for two calls")
	}
}

// =========================================================================
// VALIDATE TESTS
// =========================================================================

func TestValidate_RoundTrip(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Generate(testIdentity)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	got, err := ts.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if *got != testIdentity {
		t.Errorf("Validate() identity = %+v, want %+v", *got, testIdentity)
	}
}

func TestValidate_ExpiredToken(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.GenerateWithDuration(testIdentity, -1*time.Second)
	if err != nil {
		t.Fatalf("GenerateWithDuration() error = %v", err)
	}

	_, err = ts.Validate(token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("Validate() error = %v, want ErrTokenExpired", err)
	}
}

func TestValidate_TamperedToken(t *testing.T) {
	ts := newTestTokenService(t)

	token, _ := ts.Generate(testIdentity)
	tampered := token[:len(token)-3] + "xxx"

	_, err := ts.Validate(tampered)
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("Validate() error = %v, want ErrInvalidToken", err)
	}
}

func TestValidate_WrongSecret(t *testing.T) {
	ts1, _ := NewTokenService("correct-secret-32-chars-long!!!!")
	ts2, _ := NewTokenService("wrong-secret-32-chars-long!!!!!!")

	token, _ := ts1.Generate(testIdentity)

	_, err := ts2.Validate(token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("Validate() error = %v, want ErrInvalidToken", err)
	}
}

func TestValidate_EmptyAndGarbage(t *testing.T) {
	ts := newTestTokenService(t)

	for _, input := range []string{"", "not.a.jwt.token", "abc"} {
		if _, err := ts.Validate(input); err == nil {
			t.Errorf("Validate(%q) should return an error", input)
		}
	}
}

func TestValidate_MissingSubject(t *testing.T) {
	ts := newTestTokenService(t)

	token, _ := ts.Generate(Identity{Username: "nobody"})

	if _, err := ts.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("Validate() error = %v, want ErrInvalidToken", err)
	}
}

func TestGenerate_DefaultLifetimeIsOneHour(t *testing.T) {
	if AccessTokenTTL != time.Hour {
		t.Fatalf("AccessTokenTTL = %v, want 1h", AccessTokenTTL)
	}
}
