package internal

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/rm-hull/hr-portal-admin/internal/api"
	"github.com/rm-hull/hr-portal-admin/internal/portal"
)

const CRON_SCHEDULE_APPEALS = "*/30 * * * *" // Every 30 minutes

const syncTimeout = 5 * time.Minute

// SyncAppeals copies every appeal kind from the backend into the local snapshot.
func SyncAppeals(ctx context.Context, svc *portal.Service, repo AppealsRepository) (int, error) {
	appeals, err := svc.AllAppeals(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to fetch appeals")
	}

	count, err := repo.InsertAppeals(appeals)
	if err != nil {
		return 0, errors.Wrap(err, "failed to store appeals")
	}
	return count, nil
}

func StartCron(svc *portal.Service, repo AppealsRepository, schedule string) (*cron.Cron, error) {
	if schedule == "" {
		schedule = CRON_SCHEDULE_APPEALS
	}

	c := cron.New()

	log.Info().Str("schedule", schedule).Msg("starting CRON job to sync appeals")

	if _, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()

		count, err := SyncAppeals(ctx, svc, repo)
		if err != nil {
			if api.IsSessionExpired(err) {
				log.Warn().Err(err).Msg("appeal sync skipped: session expired, login required")
				return
			}
			log.Err(err).Msg("error syncing appeals")
			return
		}
		log.Info().Int("count", count).Msg("synced appeals")
	}); err != nil {
		return nil, errors.Wrapf(err, "invalid sync schedule %q", schedule)
	}

	c.Start()
	return c, nil
}
