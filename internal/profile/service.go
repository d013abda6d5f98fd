package profile

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	dbpkg "github.com/algobros/terminal-backend/pkg/db"
	"github.com/algobros/terminal-backend/pkg/db/models"
	"github.com/algobros/terminal-backend/pkg/enums"
	pkgerrors "github.com/algobros/terminal-backend/pkg/errors"
	"github.com/algobros/terminal-backend/pkg/logger"
	"github.com/algobros/terminal-backend/pkg/security"
)

const (
	accessGrantDays       = 30
	importedPasswordBytes = 24
)

// Per-plan sale prices used by the revenue report.
var (
	yearlyPrice  = decimal.RequireFromString("99.99")
	monthlyPrice = decimal.RequireFromString("9.99")
)

// Service owns profile reads and the admin operations surface.
type Service struct {
	repo       *Repository
	normalizer *Normalizer
	pwdHasher  func(string) (string, error)
	logg       *logger.Logger
}

// NewService wires the profile service.
func NewService(repo *Repository, normalizer *Normalizer, pwdHasher func(string) (string, error), logg *logger.Logger) *Service {
	return &Service{
		repo:       repo,
		normalizer: normalizer,
		pwdHasher:  pwdHasher,
		logg:       logg,
	}
}

// Normalizer exposes the canonicalization rules to other services.
func (s *Service) Normalizer() *Normalizer {
	return s.normalizer
}

// Resolve loads the canonical profile for a user ID. A missing row is
// reported as not found; the session layer maps that to the payment view
// instead of an error page.
func (s *Service) Resolve(ctx context.Context, userID uuid.UUID) (*Canonical, error) {
	row, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading profile")
	}
	return s.normalizer.FromModel(row), nil
}

// ListAll returns every profile as canonical records, newest first.
func (s *Service) ListAll(ctx context.Context) ([]*Canonical, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing profiles")
	}
	out := make([]*Canonical, 0, len(rows))
	for i := range rows {
		out = append(out, s.normalizer.FromModel(&rows[i]))
	}
	return out, nil
}

// Delete removes a profile and its journal by ID.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	affected, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting profile")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
	}
	s.logg.Info(s.logg.WithField(ctx, "profile_id", id.String()), "profile deleted")
	return nil
}

// ToggleAccess grants or revokes access manually. Granting switches the
// profile to ADMIN_GRANT with a 30 day runway; revoking clears the paid flag
// and expires the profile immediately, leaving the plan as a history marker.
func (s *Service) ToggleAccess(ctx context.Context, id uuid.UUID, now time.Time) (*Canonical, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading profile")
	}

	hasAccess := row.IsPaid && row.ExpiresAt.After(now)
	if hasAccess {
		err = s.repo.SetAccess(ctx, id, row.Plan, false, now)
	} else {
		err = s.repo.SetAccess(ctx, id, enums.PlanAdminGrant, true, now.AddDate(0, 0, accessGrantDays))
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating profile access")
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reloading profile")
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"profile_id": id.String(),
		"granted":    !hasAccess,
	}), "profile access toggled")
	return s.normalizer.FromModel(updated), nil
}

// ImportLegacy normalizes a raw legacy record and inserts it as a profile.
// Imported rows get a random password; the owner resets it on first login.
func (s *Service) ImportLegacy(ctx context.Context, raw map[string]any) (*Canonical, error) {
	canonical := s.normalizer.Normalize(raw)
	if canonical == nil || canonical.Email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "legacy record requires an email")
	}

	tempPassword, err := security.GenerateTempPassword(importedPasswordBytes)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generating temp password")
	}
	hash, err := s.pwdHasher(tempPassword)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing temp password")
	}

	// The profiles table has no admin column; an is_admin flag on the raw
	// record survives the import as the ADMIN plan.
	plan := canonical.Plan
	if canonical.IsAdmin {
		plan = enums.PlanAdmin
	}

	row, err := s.repo.Create(ctx, CreateProfileDTO{
		Email:        canonical.Email,
		PasswordHash: hash,
		FirstName:    canonical.FirstName,
		LastName:     canonical.LastName,
		Plan:         plan,
		IsPaid:       canonical.IsPaid,
		ExpiresAt:    canonical.ExpiresAt,
	})
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "idx_profiles_email") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a profile with this email already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "inserting imported profile")
	}

	s.logg.Info(s.logg.WithField(ctx, "profile_id", row.ID.String()), "legacy profile imported")
	return s.normalizer.FromModel(row), nil
}

// Stats is the admin sales report.
type Stats struct {
	TotalSales int64                `json:"total_sales"`
	ByPlan     map[enums.Plan]int64 `json:"by_plan"`
	Revenue    decimal.Decimal      `json:"revenue"`
}

// SalesStats aggregates paid profiles into sales counts and gross revenue.
// Gift and admin plans count as sales with zero revenue.
func (s *Service) SalesStats(ctx context.Context) (*Stats, error) {
	rows, err := s.repo.CountByPlan(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregating sales")
	}

	stats := &Stats{
		ByPlan:  make(map[enums.Plan]int64, len(rows)),
		Revenue: decimal.Zero,
	}
	for _, row := range rows {
		stats.TotalSales += row.Count
		stats.ByPlan[row.Plan] = row.Count
		switch row.Plan {
		case enums.PlanYearly:
			stats.Revenue = stats.Revenue.Add(yearlyPrice.Mul(decimal.NewFromInt(row.Count)))
		case enums.PlanMonthly:
			stats.Revenue = stats.Revenue.Add(monthlyPrice.Mul(decimal.NewFromInt(row.Count)))
		}
	}
	return stats, nil
}

// ModelByEmail exposes the raw row lookup for the auth service.
func (s *Service) ModelByEmail(ctx context.Context, email string) (*models.Profile, error) {
	return s.repo.FindByEmail(ctx, email)
}
