package knowledge

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/algobros/terminal-backend/pkg/db/models"
	"github.com/algobros/terminal-backend/pkg/enums"
)

func setupKnowledgeTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	items := `
CREATE TABLE IF NOT EXISTS knowledge_items (
  id TEXT PRIMARY KEY,
  profile_id TEXT NOT NULL,
  type TEXT NOT NULL,
  title TEXT NOT NULL,
  mime_type TEXT NOT NULL DEFAULT '',
  source_data BLOB,
  content TEXT,
  error_message TEXT,
  status TEXT NOT NULL DEFAULT 'PROCESSING',
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(items).Error)
	return db
}

func createItem(t *testing.T, db *gorm.DB, profileID uuid.UUID, status enums.KnowledgeStatus, created time.Time) *models.KnowledgeItem {
	t.Helper()

	item := &models.KnowledgeItem{
		ID:         uuid.New(),
		ProfileID:  profileID,
		Type:       enums.KnowledgeTypeVideo,
		Title:      "ICT breaker blocks",
		MimeType:   "video/mp4",
		SourceData: []byte{0x00, 0x01},
		Status:     status,
		CreatedAt:  created,
		UpdatedAt:  created,
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

func TestRepositoryMarkLearned_clearsSourceData(t *testing.T) {
	db := setupKnowledgeTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	item := createItem(t, db, uuid.New(), enums.KnowledgeProcessing, time.Now().UTC())

	affected, err := repo.MarkLearned(ctx, item.ID, "breaker blocks form when...")
	require.NoError(t, err)
	require.EqualValues(t, 1, affected)

	reloaded, err := repo.FindByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.KnowledgeLearned, reloaded.Status)
	require.NotNil(t, reloaded.Content)
	assert.Equal(t, "breaker blocks form when...", *reloaded.Content)
	assert.Empty(t, reloaded.SourceData)
}

func TestRepositoryMarkLearned_terminalStatesStay(t *testing.T) {
	db := setupKnowledgeTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	errored := createItem(t, db, uuid.New(), enums.KnowledgeError, time.Now().UTC())

	affected, err := repo.MarkLearned(ctx, errored.ID, "late content")
	require.NoError(t, err)
	assert.EqualValues(t, 0, affected)

	affected, err = repo.MarkError(ctx, errored.ID, "second failure")
	require.NoError(t, err)
	assert.EqualValues(t, 0, affected)

	reloaded, err := repo.FindByID(ctx, errored.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.KnowledgeError, reloaded.Status)
	assert.Nil(t, reloaded.Content)
}

func TestRepositoryListByProfile_omitsSourceData(t *testing.T) {
	db := setupKnowledgeTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	profileID := uuid.New()
	base := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)
	createItem(t, db, profileID, enums.KnowledgeProcessing, base)
	newest := createItem(t, db, profileID, enums.KnowledgeLearned, base.Add(time.Hour))
	createItem(t, db, uuid.New(), enums.KnowledgeLearned, base)

	rows, err := repo.ListByProfile(ctx, profileID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, newest.ID, rows[0].ID)
	for _, row := range rows {
		assert.Empty(t, row.SourceData)
	}
}

func TestRepositoryDeleteAllByProfile(t *testing.T) {
	db := setupKnowledgeTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	profileID := uuid.New()
	keeper := uuid.New()
	createItem(t, db, profileID, enums.KnowledgeLearned, time.Now().UTC())
	createItem(t, db, profileID, enums.KnowledgeProcessing, time.Now().UTC())
	kept := createItem(t, db, keeper, enums.KnowledgeLearned, time.Now().UTC())

	removed, err := repo.DeleteAllByProfile(ctx, profileID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, removed)

	rows, err := repo.ListByProfile(ctx, keeper)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, kept.ID, rows[0].ID)
}
