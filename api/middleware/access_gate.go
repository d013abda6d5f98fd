package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/algobros/terminal-backend/api/responses"
	"github.com/algobros/terminal-backend/internal/access"
	"github.com/algobros/terminal-backend/internal/profile"
	pkgerrors "github.com/algobros/terminal-backend/pkg/errors"
	"github.com/algobros/terminal-backend/pkg/logger"
)

type profileResolver interface {
	Resolve(ctx context.Context, userID uuid.UUID) (*profile.Canonical, error)
}

// RequireAccess gates terminal features behind an active subscription. The
// profile is re-resolved per request so a revocation takes effect without
// waiting for token expiry.
func RequireAccess(resolver profileResolver, grace time.Duration, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := uuid.Parse(UserIDFromContext(r.Context()))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			canonical, err := resolver.Resolve(r.Context(), userID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			state := access.Evaluate(canonical, time.Now(), grace)
			if !state.HasAccess() {
				if logg != nil {
					logCtx := logg.WithField(r.Context(), "access_state", string(state))
					logg.Warn(logCtx, "subscription gate blocked request")
				}
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "active subscription required"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
