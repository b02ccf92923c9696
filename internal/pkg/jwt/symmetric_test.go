package jwt

import (
	"errors"
	"testing"
	"time"
)

type fakeClock struct{ now time.Time }

func (f fakeClock) Now() time.Time { return f.now }

type fakeUUID struct{}

func (fakeUUID) Generate() string { return "test-token-id" }

func newTestSigner(t *testing.T, tokenType string, ttl time.Duration, now time.Time) *Symmetric {
	t.Helper()

	s, err := NewHS512(Config{
		Secret:    []byte("0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"),
		Issuer:    "otpbank",
		Audiences: []string{"otpbank-api"},
		TokenType: tokenType,
		TTL:       ttl,
		Clock:     fakeClock{now: now},
		UUID:      fakeUUID{},
	})
	if err != nil {
		t.Fatalf("failed to build signer: %v", err)
	}
	return s
}

func TestSymmetricGenerateVerify(t *testing.T) {
	now := time.Now()

	t.Run("Roundtrip", func(t *testing.T) {
		signer := newTestSigner(t, TypeAccess, 15*time.Minute, now)

		token, err := signer.Generate(42, "user@example.com", "abc123")
		if err != nil {
			t.Fatalf("generate: %v", err)
		}

		claims, err := signer.Verify(token)
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if claims.UserID != 42 || claims.UserEmail != "user@example.com" || claims.Hash != "abc123" {
			t.Fatalf("unexpected claims: %+v", claims)
		}
		if claims.TokenType != TypeAccess {
			t.Fatalf("expected token type %q, got %q", TypeAccess, claims.TokenType)
		}
	})

	t.Run("RejectsWrongTokenType", func(t *testing.T) {
		otpSigner := newTestSigner(t, TypeOTP, 5*time.Minute, now)
		accessVerifier := newTestSigner(t, TypeAccess, 15*time.Minute, now)

		token, err := otpSigner.Generate(42, "user@example.com", "abc123")
		if err != nil {
			t.Fatalf("generate: %v", err)
		}

		if _, err := accessVerifier.Verify(token); !errors.Is(err, ErrWrongTokenType) {
			t.Fatalf("expected ErrWrongTokenType, got %v", err)
		}
	})

	t.Run("RejectsExpiredToken", func(t *testing.T) {
		past := newTestSigner(t, TypeAccess, time.Minute, now.Add(-time.Hour))

		token, err := past.Generate(42, "user@example.com", "abc123")
		if err != nil {
			t.Fatalf("generate: %v", err)
		}

		verifier := newTestSigner(t, TypeAccess, time.Minute, now)
		if _, err := verifier.Verify(token); !errors.Is(err, ErrTokenExpired) {
			t.Fatalf("expected ErrTokenExpired, got %v", err)
		}
	})

	t.Run("RejectsShortSecret", func(t *testing.T) {
		_, err := NewHS512(Config{Secret: []byte("too-short")})
		if !errors.Is(err, ErrSigningKeyTooShort) {
			t.Fatalf("expected ErrSigningKeyTooShort, got %v", err)
		}
	})

	t.Run("RejectsTamperedToken", func(t *testing.T) {
		signer := newTestSigner(t, TypeAccess, 15*time.Minute, now)

		token, err := signer.Generate(42, "user@example.com", "abc123")
		if err != nil {
			t.Fatalf("generate: %v", err)
		}

		if _, err := signer.Verify(token + "x"); err == nil {
			t.Fatal("expected verification failure for tampered token")
		}
	})
}
