package cmd

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rm-hull/godx"
	"github.com/rs/zerolog/log"

	"github.com/rm-hull/hr-portal-admin/internal"
	"github.com/rm-hull/hr-portal-admin/internal/api"
	"github.com/rm-hull/hr-portal-admin/internal/config"
	"github.com/rm-hull/hr-portal-admin/internal/portal"
	"github.com/rm-hull/hr-portal-admin/internal/session"
)

type app struct {
	cfg    *config.Config
	db     *sql.DB
	rdb    *redis.Client
	store  session.Store
	client *api.Client
	svc    *portal.Service
	repo   internal.AppealsRepository
}

func (a *app) Close() {
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			log.Err(err).Msg("failed to close redis client")
		}
	}
	if err := a.repo.Close(); err != nil {
		log.Err(err).Msg("failed to close repository")
	}
}

// bootstrap initialises shared resources used by every command: configuration,
// the SQLite snapshot, the session store and the authenticated client.
// onSessionExpired is called once per failed refresh wave.
func bootstrap(onSessionExpired api.SessionExpiredHandler) (*app, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found")
	}

	godx.GitVersion()
	godx.EnvironmentVars()
	godx.UserInfo()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	db, err := internal.Connect(cfg.DbPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize database")
	}

	if err := internal.Migrate(cfg.DbPath); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to migrate SQL")
	}

	a := &app{
		cfg:  cfg,
		db:   db,
		repo: internal.NewAppealsRepository(db),
	}

	switch cfg.SessionBackend {
	case config.BackendRedis:
		a.rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDb,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.rdb.Ping(ctx).Err(); err != nil {
			a.Close()
			return nil, errors.Wrapf(err, "failed to connect to redis at %s", cfg.RedisAddr)
		}
		a.store = session.NewRedisStore(a.rdb, cfg.RedisKey, cfg.AccessTokenTTL)
	case config.BackendMemory:
		a.store = session.NewMemoryStore()
	default:
		a.store = session.NewSQLiteStore(db, cfg.AccessTokenTTL)
	}
	log.Info().Str("backend", cfg.SessionBackend).Msg("session store ready")

	a.client = api.NewClient(cfg.ApiBaseUrl, a.store,
		api.WithHTTPClient(&http.Client{Timeout: cfg.ApiTimeout}),
		api.WithRefreshPath(cfg.ApiRefreshPath),
		api.WithLoginPath(cfg.ApiLoginPath),
		api.WithProfilePath(cfg.ApiProfilePath),
		api.WithRefreshTimeout(cfg.ApiRefreshTimeout),
		api.WithSessionExpiredHandler(onSessionExpired),
	)
	a.svc = portal.NewService(a.client, cfg.DepartmentsTTL)

	return a, nil
}
