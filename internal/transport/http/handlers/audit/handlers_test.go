package audithandler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"scorecard/internal/domain/audit"
	"scorecard/internal/domain/auth"
	"scorecard/internal/transport/http/middleware"
)

type fakeDirectory struct {
	events     []audit.Event
	action     string
	entityType string
}

func (f *fakeDirectory) List(ctx context.Context, action, entityType string, limit, offset int) ([]audit.Event, error) {
	f.action = action
	f.entityType = entityType
	return f.events, nil
}

func newRouter(t *testing.T, secret string, dir Directory) http.Handler {
	t.Helper()
	router := chi.NewRouter()
	router.Use(middleware.Auth(secret))
	NewHandler(dir).RegisterRoutes(router)
	return router
}

func token(t *testing.T, secret, role string) string {
	t.Helper()
	tok, err := auth.GenerateToken(secret, auth.Claims{UserID: "u1", Role: role}, time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	return tok
}

func TestListEventsAdminOnly(t *testing.T) {
	secret := "test-secret"
	dir := &fakeDirectory{events: []audit.Event{{ID: "e1", Action: "org.create"}}}
	router := newRouter(t, secret, dir)

	req := httptest.NewRequest(http.MethodGet, "/audit/events?action=org.create&entityType=organization", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, secret, auth.RoleAdmin))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "org.create") {
		t.Fatalf("expected event in response, got %s", rec.Body.String())
	}
	if dir.action != "org.create" || dir.entityType != "organization" {
		t.Fatalf("filters not passed through: %q %q", dir.action, dir.entityType)
	}
}

func TestListEventsRejectsNonAdmin(t *testing.T) {
	secret := "test-secret"
	router := newRouter(t, secret, &fakeDirectory{})

	req := httptest.NewRequest(http.MethodGet, "/audit/events", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, secret, auth.RoleEditor))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", rec.Code)
	}
}

func TestListEventsRequiresAuth(t *testing.T) {
	router := newRouter(t, "test-secret", &fakeDirectory{})

	req := httptest.NewRequest(http.MethodGet, "/audit/events", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", rec.Code)
	}
}
