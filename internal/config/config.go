package config

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ilyakaznacheev/cleanenv"
)

const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

type Config struct {
	ApiBaseUrl        string        `env:"API_BASE_URL" env-required:"true"`
	ApiRefreshPath    string        `env:"API_REFRESH_PATH" env-default:"/token/refresh/"`
	ApiLoginPath      string        `env:"API_LOGIN_PATH" env-default:"/token/"`
	ApiProfilePath    string        `env:"API_PROFILE_PATH" env-default:"/users/me/"`
	ApiTimeout        time.Duration `env:"API_TIMEOUT" env-default:"30s"`
	ApiRefreshTimeout time.Duration `env:"API_REFRESH_TIMEOUT" env-default:"30s"`
	DbPath            string        `env:"DB_PATH" env-default:"data/hr_portal.db"`
	SessionBackend    string        `env:"SESSION_BACKEND" env-default:"sqlite"`
	RedisAddr         string        `env:"REDIS_ADDR" env-default:"localhost:6379"`
	RedisPassword     string        `env:"REDIS_PASSWORD"`
	RedisDb           int           `env:"REDIS_DB" env-default:"0"`
	RedisKey          string        `env:"REDIS_KEY" env-default:"hr-portal:session"`
	AccessTokenTTL    time.Duration `env:"ACCESS_TOKEN_TTL" env-default:"5m"`
	DepartmentsTTL    time.Duration `env:"DEPARTMENTS_CACHE_TTL" env-default:"10m"`
	LoginUrl          string        `env:"LOGIN_URL" env-default:"/login"`
	CorsOrigins       []string      `env:"CORS_ORIGINS" env-separator:","`
	SyncSchedule      string        `env:"SYNC_SCHEDULE" env-default:"*/30 * * * *"`
}

func Load() (*Config, error) {
	var cfg Config

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, errors.Wrap(err, "config error")
	}

	switch cfg.SessionBackend {
	case BackendSQLite, BackendRedis, BackendMemory:
	default:
		return nil, errors.Newf("config error: unsupported SESSION_BACKEND %q", cfg.SessionBackend)
	}

	return &cfg, nil
}
