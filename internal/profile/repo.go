package profile

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/algobros/terminal-backend/pkg/db/models"
	"github.com/algobros/terminal-backend/pkg/enums"
)

// Repository exposes profile persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a profile repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new profile and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateProfileDTO) (*models.Profile, error) {
	row := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// FindByEmail retrieves the profile matching the provided email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.Profile, error) {
	var row models.Profile
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// FindByID loads a profile by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var row models.Profile
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// ListAll returns every profile, newest first.
func (r *Repository) ListAll(ctx context.Context) ([]models.Profile, error) {
	var rows []models.Profile
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

// DeleteByID removes a profile. Trades and knowledge cascade in the schema.
func (r *Repository) DeleteByID(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&models.Profile{}, "id = ?", id)
	return res.RowsAffected, res.Error
}

// UpdateLastLogin refreshes the profile's last_login_at timestamp.
func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

// ApplyActivationTx applies a verified payment inside the caller's transaction.
func (r *Repository) ApplyActivationTx(tx *gorm.DB, id uuid.UUID, act ActivationDTO) error {
	return tx.Model(&models.Profile{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"plan":          act.Plan,
			"is_paid":       true,
			"expires_at":    act.ExpiresAt,
			"payment_tx_id": act.PaymentTxID,
		}).Error
}

// SetAccess updates the plan/paid/expiry trio for admin access toggles.
func (r *Repository) SetAccess(ctx context.Context, id uuid.UUID, plan enums.Plan, isPaid bool, expiresAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"plan":       plan,
			"is_paid":    isPaid,
			"expires_at": expiresAt,
		}).Error
}

// MarkWelcomeEmailSent flips the welcome flag. The worker calls this after a
// successful delivery so the welcome mail goes out at most once.
func (r *Repository) MarkWelcomeEmailSent(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("id = ?", id).
		UpdateColumn("welcome_email_sent", true).Error
}

// CountByPlan aggregates paid profiles per plan for the sales report.
func (r *Repository) CountByPlan(ctx context.Context) ([]PlanStat, error) {
	var stats []PlanStat
	err := r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Select("plan, COUNT(*) AS count").
		Where("is_paid = ?", true).
		Group("plan").
		Find(&stats).Error
	return stats, err
}
