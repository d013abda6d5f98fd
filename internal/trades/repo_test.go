package trades

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/algobros/terminal-backend/pkg/db/models"
	"github.com/algobros/terminal-backend/pkg/enums"
)

func setupTradesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	trades := `
CREATE TABLE IF NOT EXISTS trades (
  id TEXT PRIMARY KEY,
  profile_id TEXT NOT NULL,
  pair TEXT NOT NULL,
  direction TEXT NOT NULL,
  entry NUMERIC NOT NULL,
  stop_loss NUMERIC,
  take_profit NUMERIC,
  risk_reward NUMERIC,
  notes TEXT NOT NULL DEFAULT '',
  concept_tags TEXT,
  status TEXT NOT NULL DEFAULT 'PENDING',
  resolved_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(trades).Error)
	return db
}

func createTrade(t *testing.T, db *gorm.DB, profileID uuid.UUID, pair string, status enums.TradeStatus, created time.Time) *models.Trade {
	t.Helper()

	trade := &models.Trade{
		ID:        uuid.New(),
		ProfileID: profileID,
		Pair:      pair,
		Direction: enums.DirectionLong,
		Entry:     decimal.RequireFromString("1.0845"),
		Status:    status,
		CreatedAt: created,
		UpdatedAt: created,
	}
	require.NoError(t, db.Create(trade).Error)
	return trade
}

func TestRepositoryListByProfile_newestFirst(t *testing.T) {
	db := setupTradesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	profileID := uuid.New()
	otherID := uuid.New()
	base := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

	oldest := createTrade(t, db, profileID, "EURUSD", enums.TradePending, base)
	newest := createTrade(t, db, profileID, "GBPUSD", enums.TradePending, base.Add(2*time.Hour))
	middle := createTrade(t, db, profileID, "XAUUSD", enums.TradeWin, base.Add(time.Hour))
	createTrade(t, db, otherID, "BTCUSD", enums.TradePending, base.Add(3*time.Hour))

	rows, err := repo.ListByProfile(ctx, profileID)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, newest.ID, rows[0].ID)
	assert.Equal(t, middle.ID, rows[1].ID)
	assert.Equal(t, oldest.ID, rows[2].ID)
}

func TestRepositoryListRecentByProfile_limit(t *testing.T) {
	db := setupTradesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	profileID := uuid.New()
	base := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		createTrade(t, db, profileID, "EURUSD", enums.TradePending, base.Add(time.Duration(i)*time.Minute))
	}

	rows, err := repo.ListRecentByProfile(ctx, profileID, 10)
	require.NoError(t, err)
	require.Len(t, rows, 10)
	assert.Equal(t, base.Add(11*time.Minute).Unix(), rows[0].CreatedAt.Unix())
}

func TestRepositoryResolveStatus_once(t *testing.T) {
	db := setupTradesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	profileID := uuid.New()
	trade := createTrade(t, db, profileID, "EURUSD", enums.TradePending, time.Now().UTC())
	resolvedAt := time.Date(2026, 2, 1, 15, 0, 0, 0, time.UTC)

	affected, err := repo.ResolveStatus(ctx, profileID, trade.ID, enums.TradeWin, resolvedAt)
	require.NoError(t, err)
	require.EqualValues(t, 1, affected)

	reloaded, err := repo.FindByID(ctx, profileID, trade.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.TradeWin, reloaded.Status)
	require.NotNil(t, reloaded.ResolvedAt)
	assert.Equal(t, resolvedAt.Unix(), reloaded.ResolvedAt.Unix())

	affected, err = repo.ResolveStatus(ctx, profileID, trade.ID, enums.TradeLoss, resolvedAt)
	require.NoError(t, err)
	assert.EqualValues(t, 0, affected)

	reloaded, err = repo.FindByID(ctx, profileID, trade.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.TradeWin, reloaded.Status)
}

func TestRepositoryResolveStatus_wrongOwner(t *testing.T) {
	db := setupTradesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	owner := uuid.New()
	trade := createTrade(t, db, owner, "EURUSD", enums.TradePending, time.Now().UTC())

	affected, err := repo.ResolveStatus(ctx, uuid.New(), trade.ID, enums.TradeWin, time.Now().UTC())
	require.NoError(t, err)
	assert.EqualValues(t, 0, affected)

	reloaded, err := repo.FindByID(ctx, owner, trade.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.TradePending, reloaded.Status)
}
