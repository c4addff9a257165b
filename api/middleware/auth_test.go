package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	pkgAuth "github.com/ventahub/ventahub-backend/pkg/auth"
	"github.com/ventahub/ventahub-backend/pkg/config"
	"github.com/ventahub/ventahub-backend/pkg/enums"
)

func authTestConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "ventahub",
		ExpirationMinutes: 15,
	}
}

func TestAuthSeedsIdentity(t *testing.T) {
	cfg := authTestConfig()
	identity := pkgAuth.Identity{
		UserID:    uuid.New(),
		AccountID: uuid.New(),
		Role:      enums.MemberRoleOwner,
	}
	token, err := pkgAuth.MintAccessToken(cfg, time.Now(), identity)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	var seen pkgAuth.Identity
	var ok bool
	handler := Auth(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, ok = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if !ok || seen.UserID != identity.UserID || seen.AccountID != identity.AccountID {
		t.Fatalf("identity not seeded, got %+v", seen)
	}
}

func TestAuthRejectsMissingHeader(t *testing.T) {
	handler := Auth(authTestConfig(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestAuthRejectsTamperedToken(t *testing.T) {
	cfg := authTestConfig()
	token, err := pkgAuth.MintAccessToken(cfg, time.Now(), pkgAuth.Identity{
		UserID:    uuid.New(),
		AccountID: uuid.New(),
		Role:      enums.MemberRoleAdmin,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	handler := Auth(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token+"x")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}
