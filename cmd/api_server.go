package cmd

import (
	"fmt"
	"net/http"

	"github.com/Depado/ginprom"
	"github.com/aurowora/compress"
	"github.com/cockroachdb/errors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	healthcheck "github.com/tavsec/gin-healthcheck"
	"github.com/tavsec/gin-healthcheck/checks"
	hc_config "github.com/tavsec/gin-healthcheck/config"

	"github.com/rm-hull/hr-portal-admin/internal"
	"github.com/rm-hull/hr-portal-admin/internal/routes"
)

func ApiServer(port int, debug bool) error {

	a, err := bootstrap(func(err error) {
		log.Warn().Err(err).Msg("session expired, dashboard users will be sent to the login page")
	})
	if err != nil {
		return err
	}
	defer a.Close()

	c, err := internal.StartCron(a.svc, a.repo, a.cfg.SyncSchedule)
	if err != nil {
		return errors.Wrap(err, "failed to start CRON jobs")
	}
	defer c.Stop()

	r := gin.New()

	prometheus := ginprom.New(
		ginprom.Engine(r),
		ginprom.Path("/metrics"),
		ginprom.Ignore("/healthz"),
	)

	r.Use(
		gin.Recovery(),
		gin.LoggerWithWriter(gin.DefaultWriter, "/healthz", "/metrics"),
		prometheus.Instrument(),
		compress.Compress(),
		routes.CORS(a.cfg.CorsOrigins),
	)

	if debug {
		log.Warn().Msg("pprof endpoints are enabled and exposed. Do not run with this flag in production.")
		pprof.Register(r)
	}

	err = healthcheck.New(r, hc_config.DefaultConfig(), []checks.Check{
		a.repo.Check(),
	})
	if err != nil {
		return errors.Wrap(err, "failed to initialize healthcheck")
	}

	v1 := r.Group("/v1", routes.HandleErrors(a.cfg.LoginUrl))
	routes.Register(v1, a.svc, a.store, a.repo)

	addr := fmt.Sprintf(":%d", port)
	log.Info().Int("port", port).Msg("Starting HTTP API Server")
	if err := r.Run(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrapf(err, "HTTP API Server failed to start on port %d", port)
	}

	return nil
}
