package session

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rm-hull/hr-portal-admin/internal"
	"github.com/rm-hull/hr-portal-admin/internal/models"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	tmpFile, err := os.CreateTemp("", "hr_portal_session_test-*.db")
	require.NoError(t, err)
	dbPath := tmpFile.Name()
	_ = tmpFile.Close()

	t.Cleanup(func() {
		_ = os.Remove(dbPath)
	})

	db, err := internal.Connect(dbPath)
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = db.Close()
	})

	require.NoError(t, internal.Migrate(dbPath))
	return NewSQLiteStore(db, 15*time.Minute)
}

func TestSQLiteStoreEmptySession(t *testing.T) {
	store := setupTestStore(t)

	access, err := store.AccessToken()
	require.NoError(t, err)
	assert.Empty(t, access)

	refresh, err := store.RefreshToken()
	require.NoError(t, err)
	assert.Empty(t, refresh)

	user, err := store.User()
	require.NoError(t, err)
	assert.Nil(t, user)

	session, err := store.Session()
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestSQLiteStoreTokens(t *testing.T) {
	store := setupTestStore(t)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.SetTokens("a1", "r1"))

	t.Run("Set both tokens", func(t *testing.T) {
		access, err := store.AccessToken()
		require.NoError(t, err)
		assert.Equal(t, "a1", access)

		refresh, err := store.RefreshToken()
		require.NoError(t, err)
		assert.Equal(t, "r1", refresh)

		session, err := store.Session()
		require.NoError(t, err)
		require.NotNil(t, session)
		require.NotNil(t, session.ExpiresAt)
		assert.True(t, session.ExpiresAt.Equal(now.Add(15*time.Minute)), "got %s", session.ExpiresAt)
	})

	t.Run("Update access token keeps refresh token", func(t *testing.T) {
		require.NoError(t, store.UpdateAccessToken("a2"))

		access, err := store.AccessToken()
		require.NoError(t, err)
		assert.Equal(t, "a2", access)

		refresh, err := store.RefreshToken()
		require.NoError(t, err)
		assert.Equal(t, "r1", refresh)
	})

	t.Run("JWT expiry is used when present", func(t *testing.T) {
		exp := now.Add(5 * time.Minute)
		require.NoError(t, store.UpdateAccessToken(signedToken(t, exp)))

		session, err := store.Session()
		require.NoError(t, err)
		require.NotNil(t, session.ExpiresAt)
		assert.True(t, session.ExpiresAt.Equal(exp), "got %s", session.ExpiresAt)
	})
}

func TestSQLiteStoreUserAndClear(t *testing.T) {
	store := setupTestStore(t)
	department := 4

	require.NoError(t, store.SetTokens("a1", "r1"))
	require.NoError(t, store.SetUser(&models.UserProfile{
		Id:          1,
		Username:    "admin",
		FirstName:   "Aziz",
		Department:  &department,
		Permissions: []string{"appeals.view", "vacancies.edit"},
	}))

	user, err := store.User()
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "admin", user.Username)
	assert.Equal(t, 4, *user.Department)
	assert.Equal(t, []string{"appeals.view", "vacancies.edit"}, user.Permissions)

	access, err := store.AccessToken()
	require.NoError(t, err)
	assert.Equal(t, "a1", access, "storing the profile must not touch tokens")

	require.NoError(t, store.ClearAll())

	access, err = store.AccessToken()
	require.NoError(t, err)
	assert.Empty(t, access)

	user, err = store.User()
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestMemoryStoreSession(t *testing.T) {
	store := NewMemoryStore()

	session, err := store.Session()
	require.NoError(t, err)
	assert.Nil(t, session)

	require.NoError(t, store.SetTokens("a1", "r1"))
	session, err = store.Session()
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "a1", session.AccessToken)
	assert.Equal(t, "r1", session.RefreshToken)
}
