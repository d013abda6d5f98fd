package knowledge

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/algobros/terminal-backend/pkg/db/models"
	"github.com/algobros/terminal-backend/pkg/enums"
)

// Repository exposes knowledge item persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a knowledge repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateTx inserts a new item inside the caller's transaction so the row
// commits together with its outbox event.
func (r *Repository) CreateTx(tx *gorm.DB, row *models.KnowledgeItem) error {
	return tx.Create(row).Error
}

// ListByProfile returns the profile's items, newest first, without the raw
// upload bytes.
func (r *Repository) ListByProfile(ctx context.Context, profileID uuid.UUID) ([]models.KnowledgeItem, error) {
	var rows []models.KnowledgeItem
	err := r.db.WithContext(ctx).
		Omit("source_data").
		Where("profile_id = ?", profileID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

// ListLearnedByProfile returns only items with extracted content, for the
// analysis prompt.
func (r *Repository) ListLearnedByProfile(ctx context.Context, profileID uuid.UUID) ([]models.KnowledgeItem, error) {
	var rows []models.KnowledgeItem
	err := r.db.WithContext(ctx).
		Omit("source_data").
		Where("profile_id = ? AND status = ?", profileID, enums.KnowledgeLearned).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

// FindByID loads a single item including its raw upload bytes. The worker
// uses this to feed extraction.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.KnowledgeItem, error) {
	var row models.KnowledgeItem
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// DeleteAllByProfile wipes the profile's knowledge base.
func (r *Repository) DeleteAllByProfile(ctx context.Context, profileID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&models.KnowledgeItem{}, "profile_id = ?", profileID)
	return res.RowsAffected, res.Error
}

// MarkLearned stores extracted content and clears the raw upload. Only
// PROCESSING items transition; LEARNED and ERROR are terminal.
func (r *Repository) MarkLearned(ctx context.Context, id uuid.UUID, content string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.KnowledgeItem{}).
		Where("id = ? AND status = ?", id, enums.KnowledgeProcessing).
		Updates(map[string]any{
			"status":      enums.KnowledgeLearned,
			"content":     content,
			"source_data": nil,
		})
	return res.RowsAffected, res.Error
}

// MarkError records an extraction failure. Only PROCESSING items transition.
func (r *Repository) MarkError(ctx context.Context, id uuid.UUID, message string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.KnowledgeItem{}).
		Where("id = ? AND status = ?", id, enums.KnowledgeProcessing).
		Updates(map[string]any{
			"status":        enums.KnowledgeError,
			"error_message": message,
			"source_data":   nil,
		})
	return res.RowsAffected, res.Error
}
