package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/algobros/terminal-backend/api/responses"
	"github.com/algobros/terminal-backend/internal/profile"
	pkgerrors "github.com/algobros/terminal-backend/pkg/errors"
	"github.com/algobros/terminal-backend/pkg/logger"
)

type adminProfileService interface {
	ListAll(ctx context.Context) ([]*profile.Canonical, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ToggleAccess(ctx context.Context, id uuid.UUID, now time.Time) (*profile.Canonical, error)
	ImportLegacy(ctx context.Context, raw map[string]any) (*profile.Canonical, error)
	SalesStats(ctx context.Context) (*profile.Stats, error)
}

// AdminProfileList returns every registered profile.
func AdminProfileList(svc adminProfileService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "profile service unavailable"))
			return
		}

		rows, err := svc.ListAll(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]*profile.ProfileDTO, 0, len(rows))
		for _, row := range rows {
			out = append(out, profile.FromCanonical(row))
		}
		responses.WriteSuccess(w, out)
	}
}

// AdminProfileImport normalizes a raw legacy record and stores it. The body
// is the record as-is; field naming may be snake_case or camelCase.
func AdminProfileImport(svc adminProfileService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "profile service unavailable"))
			return
		}

		// The legacy shape is free-form, so the strict decoder does not apply.
		var raw map[string]any
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body"))
			return
		}

		imported, err := svc.ImportLegacy(r.Context(), raw)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, profile.FromCanonical(imported))
	}
}

// AdminProfileDelete removes a profile and its owned data.
func AdminProfileDelete(svc adminProfileService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "profile service unavailable"))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "profileID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid profile id"))
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// AdminProfileToggleAccess flips a profile between granted and revoked.
func AdminProfileToggleAccess(svc adminProfileService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "profile service unavailable"))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "profileID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid profile id"))
			return
		}

		updated, err := svc.ToggleAccess(r.Context(), id, time.Now().UTC())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, profile.FromCanonical(updated))
	}
}

// AdminSalesStats aggregates paid profiles into sales counts and revenue.
func AdminSalesStats(svc adminProfileService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "profile service unavailable"))
			return
		}

		stats, err := svc.SalesStats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, stats)
	}
}
