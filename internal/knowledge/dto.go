package knowledge

import (
	"time"

	"github.com/google/uuid"

	"github.com/algobros/terminal-backend/pkg/db/models"
	"github.com/algobros/terminal-backend/pkg/enums"
)

// KnowledgeDTO is the wire shape of a knowledge item. Raw upload bytes never
// leave the server; only extracted content does.
type KnowledgeDTO struct {
	ID           uuid.UUID             `json:"id"`
	Type         enums.KnowledgeType   `json:"type"`
	Title        string                `json:"title"`
	Status       enums.KnowledgeStatus `json:"status"`
	Content      *string               `json:"content,omitempty"`
	ErrorMessage *string               `json:"error_message,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
}

// FromModel maps a persisted item onto its wire shape.
func FromModel(m *models.KnowledgeItem) KnowledgeDTO {
	return KnowledgeDTO{
		ID:           m.ID,
		Type:         m.Type,
		Title:        m.Title,
		Status:       m.Status,
		Content:      m.Content,
		ErrorMessage: m.ErrorMessage,
		CreatedAt:    m.CreatedAt,
	}
}

// FromModels maps a slice, returning an empty slice rather than nil so the
// field serializes as [].
func FromModels(rows []models.KnowledgeItem) []KnowledgeDTO {
	out := make([]KnowledgeDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out
}

// SubmitKnowledgeDTO captures new learning material. Video uploads carry the
// raw bytes for the extraction worker; text items carry their content
// directly in SourceData and are marked learned on submit.
type SubmitKnowledgeDTO struct {
	ProfileID  uuid.UUID
	Type       enums.KnowledgeType
	Title      string
	MimeType   string
	SourceData []byte
}

// ToModel builds the persisted row. Status always starts at PROCESSING; the
// worker owns the terminal transition.
func (d SubmitKnowledgeDTO) ToModel() *models.KnowledgeItem {
	return &models.KnowledgeItem{
		ProfileID:  d.ProfileID,
		Type:       d.Type,
		Title:      d.Title,
		MimeType:   d.MimeType,
		SourceData: d.SourceData,
		Status:     enums.KnowledgeProcessing,
	}
}
