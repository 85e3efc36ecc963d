package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestIssueAndVerify(t *testing.T) {
	issuer := NewTokenIssuer([]byte("secret"))

	token, err := issuer.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("userID = %q", claims.UserID)
	}
	if claims.ID == "" {
		t.Error("token should carry a jti")
	}
	if remaining := time.Until(claims.ExpiresAt.Time); remaining > time.Hour || remaining < 55*time.Minute {
		t.Errorf("unexpected expiry in %v", remaining)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := NewTokenIssuer([]byte("secret")).Issue("user-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := NewTokenIssuer([]byte("other")).Verify(token); err == nil {
		t.Fatal("expected verification to fail with the wrong secret")
	}
}

func TestDecodeUnverifiedExpiredToken(t *testing.T) {
	issuer := NewTokenIssuer([]byte("secret"))

	claims := Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "jti-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := issuer.Verify(signed); err == nil {
		t.Fatal("expected expired token to fail verification")
	}

	decoded, err := issuer.DecodeUnverified(signed)
	if err != nil {
		t.Fatalf("DecodeUnverified: %v", err)
	}
	if decoded.ID != "jti-1" {
		t.Errorf("jti = %q", decoded.ID)
	}
}

func TestRevocationList(t *testing.T) {
	list := NewRevocationList()
	if list.IsRevoked("jti-1") {
		t.Error("fresh list should not report revocations")
	}
	list.Revoke("jti-1")
	if !list.IsRevoked("jti-1") {
		t.Error("revoked jti should be reported")
	}
	list.Revoke("")
	if list.IsRevoked("") {
		t.Error("empty jti must never be revoked")
	}
}

func TestRequireAuth(t *testing.T) {
	issuer := NewTokenIssuer([]byte("secret"))
	revocations := NewRevocationList()
	mw := NewMiddleware(issuer, revocations)

	var gotUserID string
	handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, _ := ClaimsFromContext(r.Context())
		gotUserID = claims.UserID
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("missing token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("bearer token", func(t *testing.T) {
		token, _ := issuer.Issue("user-1")
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if gotUserID != "user-1" {
			t.Errorf("userID from context = %q", gotUserID)
		}
	})

	t.Run("cookie token", func(t *testing.T) {
		token, _ := issuer.Issue("user-2")
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "token", Value: token})

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer not.a.token")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("revoked token", func(t *testing.T) {
		token, _ := issuer.Issue("user-3")
		claims, err := issuer.Verify(token)
		if err != nil {
			t.Fatalf("Verify: %v", err)
		}
		revocations.Revoke(claims.ID)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})
}
