package sizing

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSizingTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.Exec(`
		CREATE TABLE IF NOT EXISTS measurements (
			user_id TEXT PRIMARY KEY,
			waist NUMERIC NOT NULL,
			inseam NUMERIC NOT NULL,
			created_at DATETIME,
			updated_at DATETIME
		)
	`).Error)
	require.NoError(t, db.Exec("DELETE FROM measurements").Error)

	return db
}

func TestRepositoryUpsertReplacesRow(t *testing.T) {
	db := setupSizingTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	_, err := repo.Upsert(ctx, userID, decimal.NewFromInt(33), decimal.NewFromInt(30))
	require.NoError(t, err)

	_, err = repo.Upsert(ctx, userID, decimal.NewFromInt(34), decimal.NewFromInt(31))
	require.NoError(t, err)

	found, err := repo.FindByUser(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.True(t, found.Waist.Equal(decimal.NewFromInt(34)))
	assert.True(t, found.Inseam.Equal(decimal.NewFromInt(31)))

	var count int64
	require.NoError(t, db.Table("measurements").Where("user_id = ?", userID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRepositoryFindByUserMissing(t *testing.T) {
	db := setupSizingTestDB(t)
	repo := NewRepository(db)

	found, err := repo.FindByUser(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, found)
}
