package router

import (
	"context"
	"net/http"
	"strings"

	"github.com/otavioph/otpbank/internal/pkg/jwt"
)

// SessionChecker reports whether an access token still has a live session
// entry. A valid signature alone is not enough: deleting the cache entry
// revokes the token immediately.
type SessionChecker interface {
	Active(ctx context.Context, subjectID int64, hash string) bool
}

func middlewareAuthentication(
	otpVerifier, accessVerifier jwt.JWT,
	session SessionChecker,
	publicEndpoints, otpEndpoints map[string]map[string]struct{},
) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := matchedRoutePath(r)

			if s, ok := publicEndpoints[r.Method]; ok {
				if _, skip := s[path]; skip {
					next.ServeHTTP(w, r)
					return
				}
			}

			p := strings.Fields(r.Header.Get("Authorization"))
			if len(p) != 2 || !strings.EqualFold(p[0], "Bearer") {
				writeJSON(w, map[string]string{"message": "Authentication required"}, http.StatusUnauthorized)
				return
			}

			verifier := accessVerifier
			scopedToOTP := false
			if s, ok := otpEndpoints[r.Method]; ok {
				if _, found := s[path]; found {
					verifier = otpVerifier
					scopedToOTP = true
				}
			}

			claims, err := verifier.Verify(p[1])
			if err != nil {
				writeJSON(w, map[string]string{"message": "Invalid or expired token"}, http.StatusUnauthorized)
				return
			}

			if !scopedToOTP && session != nil && !session.Active(r.Context(), claims.UserID, claims.Hash) {
				writeJSON(w, map[string]string{"message": "Invalid or expired token"}, http.StatusUnauthorized)
				return
			}

			ctx := jwt.SetAuth(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
