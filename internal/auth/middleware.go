package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

type contextKey struct{}

var claimsKey contextKey

// ClaimsFromContext returns the verified claims stored by RequireAuth.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	return claims, ok
}

// Middleware guards HTTP handlers with bearer-token authentication.
type Middleware struct {
	issuer  *TokenIssuer
	revoked RevocationChecker
}

func NewMiddleware(issuer *TokenIssuer, revoked RevocationChecker) *Middleware {
	return &Middleware{issuer: issuer, revoked: revoked}
}

// TokenFromRequest pulls the session token from the Authorization header or
// the token cookie.
func TokenFromRequest(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := r.Cookie("token"); err == nil {
		return cookie.Value
	}
	return ""
}

// RequireAuth rejects requests without a valid, unrevoked token and stores
// the claims on the request context for handlers.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := TokenFromRequest(r)
		if token == "" {
			unauthorized(w, "Unauthorized, no token exists")
			return
		}

		claims, err := m.issuer.Verify(token)
		if err != nil {
			unauthorized(w, "Unauthorized, token failed!")
			return
		}
		if m.revoked != nil && m.revoked.IsRevoked(claims.ID) {
			unauthorized(w, "Unauthorized, token revoked!")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
