package controllers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/algobros/terminal-backend/api/middleware"
	"github.com/algobros/terminal-backend/api/responses"
	sessionview "github.com/algobros/terminal-backend/internal/session"
	pkgerrors "github.com/algobros/terminal-backend/pkg/errors"
	"github.com/algobros/terminal-backend/pkg/logger"
)

func currentUserID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	return id, nil
}

// SessionSnapshot evaluates the caller's terminal view. `?force=true`
// bypasses the reentrancy guard and always re-evaluates.
func SessionSnapshot(ctrl *sessionview.Controller, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctrl == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session controller unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		force, _ := strconv.ParseBool(r.URL.Query().Get("force"))

		snapshot, err := ctrl.Refresh(r.Context(), userID, force)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, snapshot)
	}
}
