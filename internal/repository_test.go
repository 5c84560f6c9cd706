package internal

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rm-hull/hr-portal-admin/internal/models"
)

func setupTestDB(t *testing.T) *sqliteRepository {
	tmpFile, err := os.CreateTemp("", "hr_portal_test-*.db")
	require.NoError(t, err)
	dbPath := tmpFile.Name()
	_ = tmpFile.Close()

	t.Cleanup(func() {
		_ = os.Remove(dbPath)
	})

	db, err := Connect(dbPath)
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	err = Migrate(dbPath)
	require.NoError(t, err)

	repo := NewAppealsRepository(db).(*sqliteRepository)
	t.Cleanup(func() {
		_ = repo.Close()
	})
	return repo
}

func TestAppealsRepositoryIntegration(t *testing.T) {
	repo := setupTestDB(t)

	now := time.Now().UTC().Truncate(time.Second)
	syncedAt := now.Add(time.Minute)
	repo.now = func() time.Time { return syncedAt }

	department := 3
	resolved := now.Add(-time.Hour)

	appeals := []models.Appeal{
		{Id: 1, Kind: models.AppealCorruption, Subject: "Pora talab qilish", Status: models.StatusNew, Department: &department, CreatedAt: now.Add(-48 * time.Hour)},
		{Id: 1, Kind: models.AppealSpelling, Subject: "Imlo xatosi", Status: models.StatusResolved, CreatedAt: now.Add(-2 * time.Hour), ResolvedAt: &resolved},
		{Id: 2, Kind: models.AppealGeneral, Subject: "Savol", Status: models.StatusInProgress, CreatedAt: now},
	}

	t.Run("Empty repository", func(t *testing.T) {
		last, err := repo.LastSynced()
		require.NoError(t, err)
		assert.Nil(t, last)

		results, err := repo.ListAppeals(time.Time{})
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	count, err := repo.InsertAppeals(appeals)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	t.Run("List all, newest first", func(t *testing.T) {
		results, err := repo.ListAppeals(time.Time{})
		require.NoError(t, err)
		require.Len(t, results, 3)

		assert.Equal(t, models.AppealGeneral, results[0].Kind)
		assert.Equal(t, models.AppealSpelling, results[1].Kind)
		assert.Equal(t, models.AppealCorruption, results[2].Kind)

		assert.True(t, results[0].CreatedAt.Equal(now))
		require.NotNil(t, results[1].ResolvedAt)
		assert.True(t, results[1].ResolvedAt.Equal(resolved))
		require.NotNil(t, results[2].Department)
		assert.Equal(t, 3, *results[2].Department)
		assert.Nil(t, results[0].Department)
	})

	t.Run("Filter by creation time", func(t *testing.T) {
		results, err := repo.ListAppeals(now.Add(-3 * time.Hour))
		require.NoError(t, err)
		assert.Len(t, results, 2)
	})

	t.Run("Upsert replaces status", func(t *testing.T) {
		updated := appeals[0]
		updated.Status = models.StatusResolved
		updated.ResolvedAt = &now

		count, err := repo.InsertAppeals([]models.Appeal{updated})
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		results, err := repo.ListAppeals(time.Time{})
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, models.StatusResolved, results[2].Status)
	})

	t.Run("Last synced", func(t *testing.T) {
		last, err := repo.LastSynced()
		require.NoError(t, err)
		require.NotNil(t, last)
		assert.True(t, last.Equal(syncedAt))
	})

	t.Run("Health check", func(t *testing.T) {
		check := repo.Check()
		assert.Equal(t, "sqlite", check.Name())
		assert.True(t, check.Pass())
	})
}
