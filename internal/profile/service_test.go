package profile

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
	pkgerrors "github.com/algobros/terminal-backend/pkg/errors"
	"github.com/algobros/terminal-backend/pkg/logger"
)

func setupProfileServiceDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS profiles (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL DEFAULT '',
  plan TEXT NOT NULL DEFAULT 'GUEST',
  is_paid BOOLEAN NOT NULL DEFAULT FALSE,
  expires_at DATETIME NOT NULL,
  welcome_email_sent BOOLEAN NOT NULL DEFAULT FALSE,
  payment_tx_id TEXT,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func newProfileTestService(t *testing.T, db *gorm.DB) *Service {
	t.Helper()

	hasher := func(password string) (string, error) {
		return "hashed:" + password, nil
	}
	return NewService(
		NewRepository(db),
		NewNormalizer("AlgobrosIA@gmail.com"),
		hasher,
		logger.New(logger.Options{ServiceName: "profile-test"}),
	)
}

func seedProfile(t *testing.T, db *gorm.DB, email string, plan enums.Plan, isPaid bool, expiresAt, created time.Time) *models.Profile {
	t.Helper()

	row := &models.Profile{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: "x",
		FirstName:    "Trader",
		Plan:         plan,
		IsPaid:       isPaid,
		ExpiresAt:    expiresAt,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	require.NoError(t, db.Create(row).Error)
	return row
}

func TestServiceListAllNewestFirst(t *testing.T) {
	db := setupProfileServiceDB(t)
	svc := newProfileTestService(t, db)
	now := time.Now().UTC()

	seedProfile(t, db, "old@example.com", enums.PlanMonthly, true, now.AddDate(0, 1, 0), now.Add(-2*time.Hour))
	seedProfile(t, db, "new@example.com", enums.PlanGuest, false, now, now.Add(-time.Minute))

	out, err := svc.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "new@example.com", out[0].Email)
	assert.Equal(t, "old@example.com", out[1].Email)
}

func TestServiceDeleteMissingProfile(t *testing.T) {
	db := setupProfileServiceDB(t)
	svc := newProfileTestService(t, db)

	err := svc.Delete(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestServiceToggleAccessGrantsThenRevokes(t *testing.T) {
	db := setupProfileServiceDB(t)
	svc := newProfileTestService(t, db)
	now := time.Now().UTC()

	row := seedProfile(t, db, "gated@example.com", enums.PlanGuest, false, now.Add(-time.Hour), now)

	granted, err := svc.ToggleAccess(context.Background(), row.ID, now)
	require.NoError(t, err)
	assert.Equal(t, enums.PlanAdminGrant, granted.Plan)
	assert.True(t, granted.IsPaid)
	assert.True(t, granted.ExpiresAt.After(now.AddDate(0, 0, 29)))

	revoked, err := svc.ToggleAccess(context.Background(), row.ID, now)
	require.NoError(t, err)
	assert.False(t, revoked.IsPaid)
	assert.False(t, revoked.ExpiresAt.After(now))
	// Plan survives revocation as a history marker.
	assert.Equal(t, enums.PlanAdminGrant, revoked.Plan)
}

func TestServiceImportLegacyNormalizesRecord(t *testing.T) {
	db := setupProfileServiceDB(t)
	svc := newProfileTestService(t, db)

	imported, err := svc.ImportLegacy(context.Background(), map[string]any{
		"email":      "legacy@example.com",
		"firstName":  "Lena",
		"isPaid":     true,
		"plan":       "MONTHLY",
		"expiryDate": "2027-03-01T00:00:00Z",
	})
	require.NoError(t, err)
	assert.Equal(t, "legacy@example.com", imported.Email)
	assert.Equal(t, "Lena", imported.FirstName)
	assert.Equal(t, enums.PlanMonthly, imported.Plan)
	assert.True(t, imported.IsPaid)
	assert.Equal(t, 2027, imported.ExpiresAt.Year())

	var stored models.Profile
	require.NoError(t, db.Where("email = ?", "legacy@example.com").First(&stored).Error)
	assert.NotEmpty(t, stored.PasswordHash, "imported rows need a temp credential")
}

func TestServiceImportLegacyPreservesAdminFlag(t *testing.T) {
	db := setupProfileServiceDB(t)
	svc := newProfileTestService(t, db)

	imported, err := svc.ImportLegacy(context.Background(), map[string]any{
		"email":    "ops@example.com",
		"is_admin": true,
		"plan":     "MONTHLY",
	})
	require.NoError(t, err)
	assert.True(t, imported.IsAdmin)

	var stored models.Profile
	require.NoError(t, db.Where("email = ?", "ops@example.com").First(&stored).Error)
	assert.Equal(t, enums.PlanAdmin, stored.Plan, "admin standing must survive the round trip through the stored plan")
}

func TestServiceImportLegacyRequiresEmail(t *testing.T) {
	db := setupProfileServiceDB(t)
	svc := newProfileTestService(t, db)

	_, err := svc.ImportLegacy(context.Background(), map[string]any{"firstName": "NoMail"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestServiceSalesStats(t *testing.T) {
	db := setupProfileServiceDB(t)
	svc := newProfileTestService(t, db)
	now := time.Now().UTC()

	seedProfile(t, db, "m1@example.com", enums.PlanMonthly, true, now.AddDate(0, 1, 0), now)
	seedProfile(t, db, "m2@example.com", enums.PlanMonthly, true, now.AddDate(0, 1, 0), now)
	seedProfile(t, db, "y1@example.com", enums.PlanYearly, true, now.AddDate(1, 0, 0), now)
	seedProfile(t, db, "g1@example.com", enums.PlanGift, true, now.AddDate(0, 1, 0), now)
	seedProfile(t, db, "free@example.com", enums.PlanGuest, false, now, now)

	stats, err := svc.SalesStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.TotalSales)
	assert.Equal(t, int64(2), stats.ByPlan[enums.PlanMonthly])
	assert.Equal(t, int64(1), stats.ByPlan[enums.PlanYearly])
	assert.Equal(t, int64(1), stats.ByPlan[enums.PlanGift])
	assert.Equal(t, "119.97", stats.Revenue.StringFixed(2))
}
