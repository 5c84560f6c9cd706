package session

import (
	"database/sql"
	"time"

	"github.com/cockroachdb/errors"
	jsoniter "github.com/json-iterator/go"

	"github.com/rm-hull/hr-portal-admin/internal/api"
	"github.com/rm-hull/hr-portal-admin/internal/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	selectSessionSQL = `SELECT access_token, refresh_token, expires_at, user_profile FROM session WHERE id = 1`

	upsertTokensSQL = `INSERT INTO session (id, access_token, refresh_token, expires_at, updated_at)
VALUES (1, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    access_token = excluded.access_token,
    refresh_token = excluded.refresh_token,
    expires_at = excluded.expires_at,
    updated_at = excluded.updated_at`

	upsertAccessSQL = `INSERT INTO session (id, access_token, expires_at, updated_at)
VALUES (1, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    access_token = excluded.access_token,
    expires_at = excluded.expires_at,
    updated_at = excluded.updated_at`

	upsertUserSQL = `INSERT INTO session (id, user_profile, updated_at)
VALUES (1, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    user_profile = excluded.user_profile,
    updated_at = excluded.updated_at`

	deleteSessionSQL = `DELETE FROM session`
)

// SQLiteStore keeps the dashboard session in a single row of the local database.
type SQLiteStore struct {
	db       *sql.DB
	tokenTTL time.Duration
	now      func() time.Time
}

var _ api.TokenStore = (*SQLiteStore)(nil)

func NewSQLiteStore(db *sql.DB, tokenTTL time.Duration) *SQLiteStore {
	return &SQLiteStore{
		db:       db,
		tokenTTL: tokenTTL,
		now:      time.Now,
	}
}

type sessionRow struct {
	accessToken  string
	refreshToken string
	expiresAt    sql.NullTime
	userProfile  sql.NullString
}

func (s *SQLiteStore) load() (*sessionRow, error) {
	var row sessionRow
	err := s.db.QueryRow(selectSessionSQL).Scan(&row.accessToken, &row.refreshToken, &row.expiresAt, &row.userProfile)
	if errors.Is(err, sql.ErrNoRows) {
		return &sessionRow{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load session")
	}
	return &row, nil
}

func (s *SQLiteStore) AccessToken() (string, error) {
	row, err := s.load()
	if err != nil {
		return "", err
	}
	return row.accessToken, nil
}

func (s *SQLiteStore) RefreshToken() (string, error) {
	row, err := s.load()
	if err != nil {
		return "", err
	}
	return row.refreshToken, nil
}

func (s *SQLiteStore) SetTokens(access, refresh string) error {
	now := s.now().UTC()
	_, err := s.db.Exec(upsertTokensSQL, access, refresh, EstimateExpiry(access, s.tokenTTL, now), now)
	if err != nil {
		return errors.Wrap(err, "failed to store tokens")
	}
	return nil
}

func (s *SQLiteStore) UpdateAccessToken(access string) error {
	now := s.now().UTC()
	_, err := s.db.Exec(upsertAccessSQL, access, EstimateExpiry(access, s.tokenTTL, now), now)
	if err != nil {
		return errors.Wrap(err, "failed to store access token")
	}
	return nil
}

func (s *SQLiteStore) User() (*models.UserProfile, error) {
	row, err := s.load()
	if err != nil {
		return nil, err
	}
	if !row.userProfile.Valid || row.userProfile.String == "" {
		return nil, nil
	}

	var user models.UserProfile
	if err := json.Unmarshal([]byte(row.userProfile.String), &user); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal user profile")
	}
	return &user, nil
}

func (s *SQLiteStore) SetUser(user *models.UserProfile) error {
	var profile sql.NullString
	if user != nil {
		jsonBytes, err := json.Marshal(user)
		if err != nil {
			return errors.Wrap(err, "failed to marshal user profile")
		}
		profile = sql.NullString{String: string(jsonBytes), Valid: true}
	}

	if _, err := s.db.Exec(upsertUserSQL, profile, s.now().UTC()); err != nil {
		return errors.Wrap(err, "failed to store user profile")
	}
	return nil
}

func (s *SQLiteStore) ClearAll() error {
	if _, err := s.db.Exec(deleteSessionSQL); err != nil {
		return errors.Wrap(err, "failed to clear session")
	}
	return nil
}

// Session returns the stored credentials, or nil when nobody is logged in.
func (s *SQLiteStore) Session() (*models.Session, error) {
	row, err := s.load()
	if err != nil {
		return nil, err
	}
	if row.accessToken == "" && row.refreshToken == "" {
		return nil, nil
	}

	session := &models.Session{
		AccessToken:  row.accessToken,
		RefreshToken: row.refreshToken,
	}
	if row.expiresAt.Valid {
		expiresAt := row.expiresAt.Time
		session.ExpiresAt = &expiresAt
	}
	return session, nil
}
