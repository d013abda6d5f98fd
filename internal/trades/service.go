package trades

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/algobros/terminal-backend/pkg/db/models"
	"github.com/algobros/terminal-backend/pkg/enums"
	pkgerrors "github.com/algobros/terminal-backend/pkg/errors"
	"github.com/algobros/terminal-backend/pkg/logger"
)

// Service owns the trade journal operations.
type Service struct {
	repo *Repository
	logg *logger.Logger
	now  func() time.Time
}

// NewService wires the trade service.
func NewService(repo *Repository, logg *logger.Logger) *Service {
	return &Service{
		repo: repo,
		logg: logg,
		now:  time.Now,
	}
}

// WithClock overrides the time source; tests use this.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create records a new journal entry for the profile.
func (s *Service) Create(ctx context.Context, dto CreateTradeDTO) (*models.Trade, error) {
	if !dto.Direction.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "direction must be LONG or SHORT")
	}
	if dto.Pair == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pair is required")
	}

	row, err := s.repo.Create(ctx, dto)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "inserting trade")
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"trade_id": row.ID.String(),
		"pair":     row.Pair,
	}), "trade recorded")
	return row, nil
}

// List returns the profile's journal, newest first.
func (s *Service) List(ctx context.Context, profileID uuid.UUID) ([]models.Trade, error) {
	rows, err := s.repo.ListByProfile(ctx, profileID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing trades")
	}
	return rows, nil
}

// Recent returns up to limit of the profile's newest trades.
func (s *Service) Recent(ctx context.Context, profileID uuid.UUID, limit int) ([]models.Trade, error) {
	rows, err := s.repo.ListRecentByProfile(ctx, profileID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing recent trades")
	}
	return rows, nil
}

// Resolve closes a pending trade with its outcome. The transition happens at
// most once; a trade that is already resolved, missing, or owned by someone
// else reports a state conflict without mutating anything.
func (s *Service) Resolve(ctx context.Context, profileID, tradeID uuid.UUID, status enums.TradeStatus) (*models.Trade, error) {
	if !status.IsOutcome() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status must be WIN, LOSS or BE")
	}

	affected, err := s.repo.ResolveStatus(ctx, profileID, tradeID, status, s.now().UTC())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolving trade")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "trade is not pending")
	}

	row, err := s.repo.FindByID(ctx, profileID, tradeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "trade not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reloading trade")
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"trade_id": tradeID.String(),
		"status":   status.String(),
	}), "trade resolved")
	return row, nil
}
