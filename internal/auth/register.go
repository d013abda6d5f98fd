package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/algobros/terminal-backend/internal/profile"
	"github.com/algobros/terminal-backend/pkg/config"
	dbpkg "github.com/algobros/terminal-backend/pkg/db"
	"github.com/algobros/terminal-backend/pkg/db/models"
	"github.com/algobros/terminal-backend/pkg/enums"
	pkgerrors "github.com/algobros/terminal-backend/pkg/errors"
	"github.com/algobros/terminal-backend/pkg/outbox"
	"github.com/algobros/terminal-backend/pkg/outbox/payloads"
	"github.com/algobros/terminal-backend/pkg/security"
)

// RegisterService handles sign-up. New profiles start unpaid on the GUEST
// plan with an already-expired subscription, so the session lands on the
// payment view until a code or transaction verifies.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*profile.Canonical, error)
}

// RegisterServiceParams packages the dependencies for the sign-up flow.
type RegisterServiceParams struct {
	DB             *dbpkg.Client
	Normalizer     *profile.Normalizer
	Events         *outbox.Service
	PasswordConfig config.PasswordConfig
}

type registerService struct {
	db          *dbpkg.Client
	normalizer  *profile.Normalizer
	events      *outbox.Service
	passwordCfg config.PasswordConfig
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	if params.Normalizer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "normalizer required")
	}
	if params.Events == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "outbox service required")
	}
	return &registerService{
		db:          params.DB,
		normalizer:  params.Normalizer,
		events:      params.Events,
		passwordCfg: params.PasswordConfig,
	}, nil
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*profile.Canonical, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var created *models.Profile
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := profile.NewRepository(tx)

		if _, err := repo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check profile email")
		}

		created, err = repo.Create(ctx, profile.CreateProfileDTO{
			Email:        email,
			PasswordHash: passwordHash,
			FirstName:    strings.TrimSpace(req.FirstName),
			LastName:     strings.TrimSpace(req.LastName),
			Plan:         enums.PlanGuest,
			IsPaid:       false,
			ExpiresAt:    time.Now().UTC(),
		})
		if err != nil {
			if dbpkg.IsUniqueViolation(err, "idx_profiles_email") {
				return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create profile")
		}

		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventProfileRegistered,
			AggregateType: enums.AggregateProfile,
			AggregateID:   created.ID,
			Actor:         &outbox.ActorRef{UserID: created.ID},
			Version:       1,
			Data: payloads.ProfileRegisteredEvent{
				ProfileID: created.ID,
				Email:     created.Email,
				FirstName: created.FirstName,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	return s.normalizer.FromModel(created), nil
}
