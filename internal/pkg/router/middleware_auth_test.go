package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/otavioph/otpbank/internal/pkg/jwt"
)

type fakeVerifier struct {
	tokens map[string]jwt.Claims
}

func (f *fakeVerifier) Generate(int64, string, string) (string, error) { return "", nil }

func (f *fakeVerifier) Verify(tokenStr string) (jwt.Claims, error) {
	clm, ok := f.tokens[tokenStr]
	if !ok {
		return jwt.Claims{}, jwt.ErrInvalidToken
	}
	return clm, nil
}

type fakeSession struct {
	active map[string]bool
}

func (f *fakeSession) Active(_ context.Context, subjectID int64, hash string) bool {
	return f.active[hash]
}

func TestMiddlewareAuthentication(t *testing.T) {
	otpVerifier := &fakeVerifier{tokens: map[string]jwt.Claims{
		"otp-token": {UserID: 42, Hash: "challenge-hash", TokenType: jwt.TypeOTP},
	}}
	accessVerifier := &fakeVerifier{tokens: map[string]jwt.Claims{
		"access-token": {UserID: 42, Hash: "challenge-hash", TokenType: jwt.TypeAccess},
	}}
	session := &fakeSession{active: map[string]bool{"challenge-hash": true}}

	public := map[string]map[string]struct{}{
		http.MethodPost: {"/api/v1/auth/login": {}},
	}
	otpScoped := map[string]map[string]struct{}{
		http.MethodPost: {"/api/v1/auth/validate-otp": {}},
	}

	var gotClaims *jwt.Claims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClaims = jwt.GetAuth(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	handler := middlewareAuthentication(otpVerifier, accessVerifier, session, public, otpScoped)(next)

	do := func(method, path, token string) *httptest.ResponseRecorder {
		gotClaims = nil
		req := httptest.NewRequest(method, path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	t.Run("PublicEndpointNeedsNoToken", func(t *testing.T) {
		rec := do(http.MethodPost, "/api/v1/auth/login", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("MissingTokenRejected", func(t *testing.T) {
		rec := do(http.MethodGet, "/api/v1/auth/profile", "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("OtpTokenOnOtpEndpoint", func(t *testing.T) {
		rec := do(http.MethodPost, "/api/v1/auth/validate-otp", "otp-token")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if gotClaims == nil || gotClaims.Hash != "challenge-hash" {
			t.Fatalf("expected claims in context, got %+v", gotClaims)
		}
	})

	t.Run("AccessTokenOnOtpEndpointRejected", func(t *testing.T) {
		rec := do(http.MethodPost, "/api/v1/auth/validate-otp", "access-token")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("OtpTokenOnAccessEndpointRejected", func(t *testing.T) {
		rec := do(http.MethodGet, "/api/v1/auth/profile", "otp-token")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("AccessTokenWithLiveSession", func(t *testing.T) {
		rec := do(http.MethodGet, "/api/v1/auth/profile", "access-token")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if gotClaims == nil || gotClaims.UserID != 42 {
			t.Fatalf("expected claims in context, got %+v", gotClaims)
		}
	})

	t.Run("RevokedSessionRejected", func(t *testing.T) {
		session.active["challenge-hash"] = false
		defer func() { session.active["challenge-hash"] = true }()

		rec := do(http.MethodGet, "/api/v1/auth/profile", "access-token")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}
