package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/algobros/terminal-backend/api/responses"
	"github.com/algobros/terminal-backend/api/validators"
	"github.com/algobros/terminal-backend/internal/payment"
	"github.com/algobros/terminal-backend/internal/profile"
	sessionview "github.com/algobros/terminal-backend/internal/session"
	"github.com/algobros/terminal-backend/pkg/enums"
	pkgerrors "github.com/algobros/terminal-backend/pkg/errors"
	"github.com/algobros/terminal-backend/pkg/logger"
)

type paymentVerifier interface {
	VerifyAndActivate(ctx context.Context, user *profile.Canonical, input payment.VerifyInput) (*payment.Verification, error)
	ReloadCanonical(ctx context.Context, userID uuid.UUID) (*profile.Canonical, error)
}

type canonicalResolver interface {
	Resolve(ctx context.Context, userID uuid.UUID) (*profile.Canonical, error)
}

type snapshotApplier interface {
	ApplyPaymentSuccess(ctx context.Context, userID uuid.UUID, user *profile.Canonical) *sessionview.Snapshot
}

type verifyPaymentRequest struct {
	Code   string `json:"code" validate:"required"`
	Intent string `json:"intent" validate:"omitempty,oneof=MONTHLY YEARLY"`
}

type verifyPaymentResponse struct {
	Plan      enums.Plan            `json:"plan"`
	ExpiresAt string                `json:"expires_at"`
	User      *profile.ProfileDTO   `json:"user"`
	Snapshot  *sessionview.Snapshot `json:"snapshot"`
}

// PaymentVerify classifies the submitted code or transaction hash and, on a
// match, activates the subscription and refreshes the terminal snapshot.
func PaymentVerify(verifier paymentVerifier, profiles canonicalResolver, snapshots snapshotApplier, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if verifier == nil || profiles == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body verifyPaymentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var intent enums.Plan
		if trimmed := strings.TrimSpace(body.Intent); trimmed != "" {
			parsed, err := enums.ParsePlan(trimmed)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid intent"))
				return
			}
			intent = parsed
		}

		user, err := profiles.Resolve(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		verification, err := verifier.VerifyAndActivate(r.Context(), user, payment.VerifyInput{
			Code:   body.Code,
			Intent: intent,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		refreshed, err := verifier.ReloadCanonical(r.Context(), userID)
		if err != nil {
			// The activation already committed; answer from what we know
			// instead of failing a payment that went through.
			if logg != nil {
				logg.Error(r.Context(), "profile reload after activation failed", err)
			}
			fallback := *user
			fallback.Plan = verification.Plan
			fallback.IsPaid = true
			fallback.ExpiresAt = verification.ExpiresAt
			fallback.IsAdmin = fallback.IsAdmin || verification.IsAdmin
			refreshed = &fallback
		}

		var snapshot *sessionview.Snapshot
		if snapshots != nil {
			snapshot = snapshots.ApplyPaymentSuccess(r.Context(), userID, refreshed)
		}

		responses.WriteSuccess(w, verifyPaymentResponse{
			Plan:      verification.Plan,
			ExpiresAt: verification.ExpiresAt.UTC().Format(time.RFC3339),
			User:      profile.FromCanonical(refreshed),
			Snapshot:  snapshot,
		})
	}
}
