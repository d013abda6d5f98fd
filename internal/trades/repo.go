package trades

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/algobros/terminal-backend/pkg/db/models"
	"github.com/algobros/terminal-backend/pkg/enums"
)

// Repository exposes trade journal persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a trade repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new journal entry and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateTradeDTO) (*models.Trade, error) {
	row := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// ListByProfile returns the profile's trades, newest first.
func (r *Repository) ListByProfile(ctx context.Context, profileID uuid.UUID) ([]models.Trade, error) {
	var rows []models.Trade
	err := r.db.WithContext(ctx).
		Where("profile_id = ?", profileID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

// ListRecentByProfile returns up to limit of the profile's newest trades.
func (r *Repository) ListRecentByProfile(ctx context.Context, profileID uuid.UUID, limit int) ([]models.Trade, error) {
	var rows []models.Trade
	err := r.db.WithContext(ctx).
		Where("profile_id = ?", profileID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// ResolveStatus moves a PENDING trade to an outcome. The WHERE clause guards
// the transition; a zero row count means the trade was missing, belonged to
// another profile, or was already resolved.
func (r *Repository) ResolveStatus(ctx context.Context, profileID, tradeID uuid.UUID, status enums.TradeStatus, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Trade{}).
		Where("id = ? AND profile_id = ? AND status = ?", tradeID, profileID, enums.TradePending).
		Updates(map[string]any{
			"status":      status,
			"resolved_at": at,
		})
	return res.RowsAffected, res.Error
}

// FindByID loads a trade scoped to its owner.
func (r *Repository) FindByID(ctx context.Context, profileID, tradeID uuid.UUID) (*models.Trade, error) {
	var row models.Trade
	err := r.db.WithContext(ctx).
		Where("id = ? AND profile_id = ?", tradeID, profileID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}
