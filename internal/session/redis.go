package session

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"

	"github.com/rm-hull/hr-portal-admin/internal/api"
	"github.com/rm-hull/hr-portal-admin/internal/models"
)

const (
	fieldAccess    = "access"
	fieldRefresh   = "refresh"
	fieldExpiresAt = "expires_at"
	fieldUser      = "user"
)

// RedisStore keeps the session in a Redis hash so that several dashboard
// instances behind a load balancer share one login.
type RedisStore struct {
	rdb      redis.UniversalClient
	key      string
	tokenTTL time.Duration
	timeout  time.Duration
	now      func() time.Time
}

var _ api.TokenStore = (*RedisStore)(nil)

func NewRedisStore(rdb redis.UniversalClient, key string, tokenTTL time.Duration) *RedisStore {
	return &RedisStore{
		rdb:      rdb,
		key:      key,
		tokenTTL: tokenTTL,
		timeout:  5 * time.Second,
		now:      time.Now,
	}
}

func (s *RedisStore) get(field string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	value, err := s.rdb.HGet(ctx, s.key, field).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrapf(err, "failed to read %s from redis", field)
	}
	return value, nil
}

func (s *RedisStore) set(values ...any) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.rdb.HSet(ctx, s.key, values...).Err(); err != nil {
		return errors.Wrap(err, "failed to write session to redis")
	}
	return nil
}

func (s *RedisStore) AccessToken() (string, error) {
	return s.get(fieldAccess)
}

func (s *RedisStore) RefreshToken() (string, error) {
	return s.get(fieldRefresh)
}

func (s *RedisStore) SetTokens(access, refresh string) error {
	expiresAt := EstimateExpiry(access, s.tokenTTL, s.now())
	return s.set(fieldAccess, access, fieldRefresh, refresh, fieldExpiresAt, expiresAt.Format(time.RFC3339))
}

func (s *RedisStore) UpdateAccessToken(access string) error {
	expiresAt := EstimateExpiry(access, s.tokenTTL, s.now())
	return s.set(fieldAccess, access, fieldExpiresAt, expiresAt.Format(time.RFC3339))
}

func (s *RedisStore) User() (*models.UserProfile, error) {
	value, err := s.get(fieldUser)
	if err != nil || value == "" {
		return nil, err
	}

	var user models.UserProfile
	if err := json.Unmarshal([]byte(value), &user); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal user profile")
	}
	return &user, nil
}

func (s *RedisStore) SetUser(user *models.UserProfile) error {
	if user == nil {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if err := s.rdb.HDel(ctx, s.key, fieldUser).Err(); err != nil {
			return errors.Wrap(err, "failed to remove user profile from redis")
		}
		return nil
	}

	jsonBytes, err := json.Marshal(user)
	if err != nil {
		return errors.Wrap(err, "failed to marshal user profile")
	}
	return s.set(fieldUser, string(jsonBytes))
}

func (s *RedisStore) ClearAll() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.rdb.Del(ctx, s.key).Err(); err != nil {
		return errors.Wrap(err, "failed to clear session in redis")
	}
	return nil
}

func (s *RedisStore) Session() (*models.Session, error) {
	access, err := s.get(fieldAccess)
	if err != nil {
		return nil, err
	}
	refresh, err := s.get(fieldRefresh)
	if err != nil {
		return nil, err
	}
	if access == "" && refresh == "" {
		return nil, nil
	}

	session := &models.Session{AccessToken: access, RefreshToken: refresh}
	if value, err := s.get(fieldExpiresAt); err == nil && value != "" {
		if expiresAt, err := time.Parse(time.RFC3339, value); err == nil {
			session.ExpiresAt = &expiresAt
		}
	}
	return session, nil
}
