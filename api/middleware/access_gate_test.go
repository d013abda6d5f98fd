package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/algobros/terminal-backend/internal/access"
	"github.com/algobros/terminal-backend/internal/profile"
	pkgerrors "github.com/algobros/terminal-backend/pkg/errors"
)

type stubResolver struct {
	canonical *profile.Canonical
	err       error
}

func (s stubResolver) Resolve(_ context.Context, _ uuid.UUID) (*profile.Canonical, error) {
	return s.canonical, s.err
}

func gateRequest(userID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/v1/trades", nil)
	if userID != "" {
		req = req.WithContext(WithUserID(req.Context(), userID))
	}
	return req
}

func TestRequireAccessRejectsMissingIdentity(t *testing.T) {
	handler := RequireAccess(stubResolver{}, access.DefaultGrace, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, gateRequest(""))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestRequireAccessBlocksExpiredSubscription(t *testing.T) {
	resolver := stubResolver{canonical: &profile.Canonical{
		ID:        uuid.New(),
		IsPaid:    true,
		ExpiresAt: time.Now().Add(-time.Hour),
	}}
	handler := RequireAccess(resolver, access.DefaultGrace, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, gateRequest(uuid.NewString()))
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestRequireAccessAllowsActiveSubscription(t *testing.T) {
	resolver := stubResolver{canonical: &profile.Canonical{
		ID:        uuid.New(),
		IsPaid:    true,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}}
	handler := RequireAccess(resolver, access.DefaultGrace, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, gateRequest(uuid.NewString()))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestRequireAccessAdminBypassesExpiry(t *testing.T) {
	resolver := stubResolver{canonical: &profile.Canonical{
		ID:        uuid.New(),
		IsAdmin:   true,
		ExpiresAt: time.Now().Add(-time.Hour),
	}}
	handler := RequireAccess(resolver, access.DefaultGrace, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, gateRequest(uuid.NewString()))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestRequireAccessPropagatesResolverError(t *testing.T) {
	resolver := stubResolver{err: pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")}
	handler := RequireAccess(resolver, access.DefaultGrace, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, gateRequest(uuid.NewString()))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
