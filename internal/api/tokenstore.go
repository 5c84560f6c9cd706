package api

import (
	"sync"

	"github.com/rm-hull/hr-portal-admin/internal/models"
)

// TokenStore persists the session for its lifetime. Empty strings and nil
// profiles mean "absent".
type TokenStore interface {
	AccessToken() (string, error)
	RefreshToken() (string, error)
	SetTokens(access, refresh string) error
	UpdateAccessToken(access string) error
	User() (*models.UserProfile, error)
	SetUser(user *models.UserProfile) error
	ClearAll() error
}

type MemoryTokenStore struct {
	mu      sync.RWMutex
	access  string
	refresh string
	user    *models.UserProfile
}

var _ TokenStore = (*MemoryTokenStore)(nil)

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (s *MemoryTokenStore) AccessToken() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access, nil
}

func (s *MemoryTokenStore) RefreshToken() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh, nil
}

func (s *MemoryTokenStore) SetTokens(access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = access
	s.refresh = refresh
	return nil
}

func (s *MemoryTokenStore) UpdateAccessToken(access string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = access
	return nil
}

func (s *MemoryTokenStore) User() (*models.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil, nil
	}
	user := *s.user
	return &user, nil
}

func (s *MemoryTokenStore) SetUser(user *models.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user == nil {
		s.user = nil
		return nil
	}
	copied := *user
	s.user = &copied
	return nil
}

func (s *MemoryTokenStore) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = ""
	s.refresh = ""
	s.user = nil
	return nil
}
