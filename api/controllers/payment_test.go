package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/algobros/terminal-backend/api/middleware"
	"github.com/algobros/terminal-backend/internal/payment"
	"github.com/algobros/terminal-backend/internal/profile"
	"github.com/algobros/terminal-backend/pkg/enums"
	pkgerrors "github.com/algobros/terminal-backend/pkg/errors"
)

type stubPaymentVerifier struct {
	verification *payment.Verification
	verifyErr    error
	reloaded     *profile.Canonical
	reloadErr    error
	input        payment.VerifyInput
}

func (s *stubPaymentVerifier) VerifyAndActivate(_ context.Context, _ *profile.Canonical, input payment.VerifyInput) (*payment.Verification, error) {
	s.input = input
	return s.verification, s.verifyErr
}

func (s *stubPaymentVerifier) ReloadCanonical(_ context.Context, _ uuid.UUID) (*profile.Canonical, error) {
	return s.reloaded, s.reloadErr
}

type stubCanonicalResolver struct {
	user *profile.Canonical
	err  error
}

func (s *stubCanonicalResolver) Resolve(_ context.Context, _ uuid.UUID) (*profile.Canonical, error) {
	return s.user, s.err
}

func paymentRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/v1/payments/verify", strings.NewReader(body))
	return req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
}

func TestPaymentVerifyReloadFailureStillSucceeds(t *testing.T) {
	expiry := time.Now().Add(30 * 24 * time.Hour).UTC()
	user := &profile.Canonical{ID: uuid.New(), Email: "trader@example.com", Plan: enums.PlanGuest}
	verifier := &stubPaymentVerifier{
		verification: &payment.Verification{
			Plan:          enums.PlanMonthly,
			ExpiresAt:     expiry,
			TransactionID: "abc123",
			Amount:        decimal.RequireFromString("8"),
		},
		reloadErr: pkgerrors.New(pkgerrors.CodeDependency, "database unavailable"),
	}

	handler := PaymentVerify(verifier, &stubCanonicalResolver{user: user}, nil, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, paymentRequest(`{"code":"abc123","intent":"MONTHLY"}`))

	// The activation committed, so a reload failure must not fail the call.
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data verifyPaymentResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Plan != enums.PlanMonthly {
		t.Fatalf("unexpected plan %q", envelope.Data.Plan)
	}
	if envelope.Data.User == nil || !envelope.Data.User.IsPaid {
		t.Fatalf("expected fallback user marked paid, got %+v", envelope.Data.User)
	}
	if envelope.Data.User.Plan != enums.PlanMonthly {
		t.Fatalf("fallback user should carry the verified plan, got %q", envelope.Data.User.Plan)
	}
}

func TestPaymentVerifySuccess(t *testing.T) {
	expiry := time.Now().Add(30 * 24 * time.Hour).UTC()
	user := &profile.Canonical{ID: uuid.New(), Email: "trader@example.com", Plan: enums.PlanGuest}
	verifier := &stubPaymentVerifier{
		verification: &payment.Verification{
			Plan:          enums.PlanMonthly,
			ExpiresAt:     expiry,
			TransactionID: "abc123",
			Amount:        decimal.RequireFromString("8"),
		},
		reloaded: &profile.Canonical{ID: user.ID, Email: user.Email, Plan: enums.PlanMonthly, IsPaid: true, ExpiresAt: expiry},
	}

	handler := PaymentVerify(verifier, &stubCanonicalResolver{user: user}, nil, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, paymentRequest(`{"code":"abc123","intent":"MONTHLY"}`))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if verifier.input.Code != "abc123" || verifier.input.Intent != enums.PlanMonthly {
		t.Fatalf("unexpected verify input %+v", verifier.input)
	}

	var envelope struct {
		Data verifyPaymentResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Plan != enums.PlanMonthly {
		t.Fatalf("unexpected plan %q", envelope.Data.Plan)
	}
	if envelope.Data.User == nil || !envelope.Data.User.IsPaid {
		t.Fatalf("expected refreshed paid user, got %+v", envelope.Data.User)
	}
}

func TestPaymentVerifyRequiresCode(t *testing.T) {
	handler := PaymentVerify(&stubPaymentVerifier{}, &stubCanonicalResolver{}, nil, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, paymentRequest(`{}`))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestPaymentVerifyRejectsUnknownIntent(t *testing.T) {
	handler := PaymentVerify(&stubPaymentVerifier{}, &stubCanonicalResolver{}, nil, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, paymentRequest(`{"code":"abc123","intent":"WEEKLY"}`))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestPaymentVerifyFailurePassthrough(t *testing.T) {
	verifier := &stubPaymentVerifier{verifyErr: pkgerrors.New(pkgerrors.CodeTransactionNotFound, "transaction not found on chain")}
	handler := PaymentVerify(verifier, &stubCanonicalResolver{user: &profile.Canonical{ID: uuid.New()}}, nil, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, paymentRequest(`{"code":"deadbeef"}`))

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeTransactionNotFound) {
		t.Fatalf("unexpected error code %q", envelope.Error.Code)
	}
	if envelope.Error.Message != "transaction not found on chain" {
		t.Fatalf("expected literal message, got %q", envelope.Error.Message)
	}
}
