package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jdmdelivery/pawn-service/internal/config"
	"github.com/jdmdelivery/pawn-service/internal/models"
)

func signToken(t *testing.T, secret, role string, expiry time.Duration) string {
	t.Helper()
	claims := &Claims{
		Username: "maria",
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "7",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestAuthMiddleware(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret"}

	var gotIdent Identity
	var called bool
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		gotIdent, _ = FromContext(r.Context())
	})
	h := AuthMiddleware(cfg)(inner)

	t.Run("valid token", func(t *testing.T) {
		called = false
		req := httptest.NewRequest(http.MethodGet, "/loans", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, cfg.JWTSecret, models.RoleAdmin, time.Hour))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if !called {
			t.Fatalf("inner handler not reached, status %d", rec.Code)
		}
		if gotIdent.UserID != 7 || gotIdent.Username != "maria" || gotIdent.Role != models.RoleAdmin {
			t.Errorf("unexpected identity: %+v", gotIdent)
		}
	})

	t.Run("missing header", func(t *testing.T) {
		called = false
		req := httptest.NewRequest(http.MethodGet, "/loans", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if called {
			t.Error("inner handler reached without token")
		}
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		called = false
		req := httptest.NewRequest(http.MethodGet, "/loans", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, cfg.JWTSecret, models.RoleAdmin, -time.Minute))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if called {
			t.Error("inner handler reached with expired token")
		}
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		called = false
		req := httptest.NewRequest(http.MethodGet, "/loans", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, "other-secret", models.RoleAdmin, time.Hour))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
		}
	})
}

func TestRequireAdmin(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret"}
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	h := AuthMiddleware(cfg)(RequireAdmin(inner))

	req := httptest.NewRequest(http.MethodPost, "/users", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, cfg.JWTSecret, models.RoleStaff, time.Hour))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("staff status = %d, want %d", rec.Code, http.StatusForbidden)
	}

	req = httptest.NewRequest(http.MethodPost, "/users", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, cfg.JWTSecret, models.RoleAdmin, time.Hour))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("admin status = %d, want %d", rec.Code, http.StatusNoContent)
	}
}
