package session

import (
	"github.com/rm-hull/hr-portal-admin/internal/api"
	"github.com/rm-hull/hr-portal-admin/internal/models"
)

// Store is a token store that can also report the whole session, including
// the estimated expiry of the access token.
type Store interface {
	api.TokenStore
	Session() (*models.Session, error)
}

var (
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*RedisStore)(nil)
)

// MemoryStore is the in-process backend, used when no persistence is configured.
type MemoryStore struct {
	*api.MemoryTokenStore
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{MemoryTokenStore: api.NewMemoryTokenStore()}
}

func (s *MemoryStore) Session() (*models.Session, error) {
	access, _ := s.AccessToken()
	refresh, _ := s.RefreshToken()
	if access == "" && refresh == "" {
		return nil, nil
	}
	return &models.Session{AccessToken: access, RefreshToken: refresh}, nil
}
