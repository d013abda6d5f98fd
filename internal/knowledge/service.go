package knowledge

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/algobros/terminal-backend/pkg/db"
	"github.com/algobros/terminal-backend/pkg/db/models"
	"github.com/algobros/terminal-backend/pkg/enums"
	pkgerrors "github.com/algobros/terminal-backend/pkg/errors"
	"github.com/algobros/terminal-backend/pkg/logger"
	"github.com/algobros/terminal-backend/pkg/outbox"
	"github.com/algobros/terminal-backend/pkg/outbox/payloads"
)

// Service owns the knowledge base operations.
type Service struct {
	db     *dbpkg.Client
	repo   *Repository
	events *outbox.Service
	logg   *logger.Logger
}

// NewService wires the knowledge service.
func NewService(db *dbpkg.Client, repo *Repository, events *outbox.Service, logg *logger.Logger) *Service {
	return &Service{
		db:     db,
		repo:   repo,
		events: events,
		logg:   logg,
	}
}

// Submit stores new material as PROCESSING and queues the extraction event
// in the same transaction. The worker moves the item to its terminal state.
func (s *Service) Submit(ctx context.Context, dto SubmitKnowledgeDTO) (*models.KnowledgeItem, error) {
	if !dto.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "type must be VIDEO or TEXT")
	}
	if dto.Title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if len(dto.SourceData) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "source material is required")
	}

	row := dto.ToModel()
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, row); err != nil {
			return err
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventKnowledgeSubmitted,
			AggregateType: enums.AggregateKnowledge,
			AggregateID:   row.ID,
			Actor:         &outbox.ActorRef{UserID: dto.ProfileID},
			Version:       1,
			Data: payloads.KnowledgeSubmittedEvent{
				KnowledgeID: row.ID,
				ProfileID:   dto.ProfileID,
				Type:        dto.Type,
				Title:       dto.Title,
			},
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "submitting knowledge")
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"knowledge_id": row.ID.String(),
		"type":         dto.Type.String(),
	}), "knowledge submitted")
	return row, nil
}

// List returns the profile's knowledge items, newest first.
func (s *Service) List(ctx context.Context, profileID uuid.UUID) ([]models.KnowledgeItem, error) {
	rows, err := s.repo.ListByProfile(ctx, profileID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing knowledge")
	}
	return rows, nil
}

// Learned returns only items with extracted content.
func (s *Service) Learned(ctx context.Context, profileID uuid.UUID) ([]models.KnowledgeItem, error) {
	rows, err := s.repo.ListLearnedByProfile(ctx, profileID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing learned knowledge")
	}
	return rows, nil
}

// DeleteAll wipes the profile's knowledge base and reports how many items
// were removed.
func (s *Service) DeleteAll(ctx context.Context, profileID uuid.UUID) (int64, error) {
	removed, err := s.repo.DeleteAllByProfile(ctx, profileID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting knowledge")
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"profile_id": profileID.String(),
		"removed":    removed,
	}), "knowledge base cleared")
	return removed, nil
}

// MarkLearned applies the worker's successful extraction. A zero row count
// means the item already reached a terminal state; the transition is skipped
// silently so redelivered events stay harmless.
func (s *Service) MarkLearned(ctx context.Context, id uuid.UUID, content string) error {
	affected, err := s.repo.MarkLearned(ctx, id, content)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marking knowledge learned")
	}
	if affected == 0 {
		s.logg.Debug(s.logg.WithField(ctx, "knowledge_id", id.String()), "knowledge already in terminal state")
	}
	return nil
}

// MarkError applies the worker's extraction failure.
func (s *Service) MarkError(ctx context.Context, id uuid.UUID, message string) error {
	affected, err := s.repo.MarkError(ctx, id, message)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marking knowledge errored")
	}
	if affected == 0 {
		s.logg.Debug(s.logg.WithField(ctx, "knowledge_id", id.String()), "knowledge already in terminal state")
	}
	return nil
}

// Load returns a single item with its raw upload bytes.
func (s *Service) Load(ctx context.Context, id uuid.UUID) (*models.KnowledgeItem, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading knowledge item")
	}
	return row, nil
}
