package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/algobros/terminal-backend/pkg/enums"
)

// KnowledgeItem is submitted learning material. It enters PROCESSING and is
// moved by the worker to a terminal LEARNED or ERROR state. SourceData holds
// the raw upload until extraction completes, then it is cleared.
type KnowledgeItem struct {
	ID           uuid.UUID             `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ProfileID    uuid.UUID             `gorm:"column:profile_id;type:uuid;not null;index:idx_knowledge_items_profile_id"`
	Type         enums.KnowledgeType   `gorm:"column:type;type:text;not null"`
	Title        string                `gorm:"column:title;not null"`
	MimeType     string                `gorm:"column:mime_type;not null;default:''"`
	SourceData   []byte                `gorm:"column:source_data;type:bytea"`
	Content      *string               `gorm:"column:content"`
	ErrorMessage *string               `gorm:"column:error_message"`
	Status       enums.KnowledgeStatus `gorm:"column:status;type:text;not null;default:'PROCESSING'"`
	CreatedAt    time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
