package knowledge

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/algobros/terminal-backend/pkg/db/models"
	"github.com/algobros/terminal-backend/pkg/enums"
	pkgerrors "github.com/algobros/terminal-backend/pkg/errors"
	"github.com/algobros/terminal-backend/pkg/logger"
	"github.com/algobros/terminal-backend/pkg/outbox/payloads"
)

type videoTranscriber interface {
	ExtractVideoKnowledge(ctx context.Context, mimeType string, data []byte, title string) (string, error)
}

type itemStore interface {
	Load(ctx context.Context, id uuid.UUID) (*models.KnowledgeItem, error)
	MarkLearned(ctx context.Context, id uuid.UUID, content string) error
	MarkError(ctx context.Context, id uuid.UUID, message string) error
}

// Extractor turns submitted knowledge items into learned strategy notes.
// Videos go through the model for transcription, docx archives get their
// text pulled out locally, and text uploads are the notes already.
type Extractor struct {
	items itemStore
	video videoTranscriber
	logg  *logger.Logger
}

// NewExtractor wires the worker-side extraction handler.
func NewExtractor(items itemStore, video videoTranscriber, logg *logger.Logger) (*Extractor, error) {
	if items == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "knowledge store required")
	}
	if video == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "video transcriber required")
	}
	return &Extractor{items: items, video: video, logg: logg}, nil
}

// HandleSubmitted processes one knowledge_submitted event. Extraction
// failures are written to the item as a terminal ERROR state and reported
// back so the delivery is not acked as clean.
func (e *Extractor) HandleSubmitted(ctx context.Context, event payloads.KnowledgeSubmittedEvent) error {
	ctx = e.logg.WithFields(ctx, map[string]any{
		"knowledge_id": event.KnowledgeID.String(),
		"profile_id":   event.ProfileID.String(),
	})

	item, err := e.items.Load(ctx, event.KnowledgeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Deleted before the worker got to it. Nothing to do.
			e.logg.Debug(ctx, "knowledge item gone before extraction")
			return nil
		}
		return err
	}
	if item.Status != enums.KnowledgeProcessing {
		e.logg.Debug(ctx, "knowledge item already extracted")
		return nil
	}

	content, err := e.extract(ctx, item)
	if err != nil {
		e.logg.Error(ctx, "knowledge extraction failed", err)
		if markErr := e.items.MarkError(ctx, item.ID, err.Error()); markErr != nil {
			return markErr
		}
		return err
	}

	if err := e.items.MarkLearned(ctx, item.ID, content); err != nil {
		return err
	}
	e.logg.Info(ctx, "knowledge item learned")
	return nil
}

func (e *Extractor) extract(ctx context.Context, item *models.KnowledgeItem) (string, error) {
	switch item.Type {
	case enums.KnowledgeTypeVideo:
		content, err := e.video.ExtractVideoKnowledge(ctx, item.MimeType, item.SourceData, item.Title)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(content) == "" {
			return "", pkgerrors.New(pkgerrors.CodeDependency, "video transcription returned no content")
		}
		return content, nil
	case enums.KnowledgeTypeDocx:
		content, err := extractDocxText(item.SourceData)
		if err != nil {
			return "", err
		}
		if content == "" {
			return "", pkgerrors.New(pkgerrors.CodeValidation, "document contains no text")
		}
		return content, nil
	case enums.KnowledgeTypeText:
		content := strings.TrimSpace(string(item.SourceData))
		if content == "" {
			return "", pkgerrors.New(pkgerrors.CodeValidation, "text upload is empty")
		}
		return content, nil
	default:
		return "", pkgerrors.New(pkgerrors.CodeValidation, "unsupported knowledge type "+string(item.Type))
	}
}
