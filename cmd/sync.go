package cmd

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"

	"github.com/rm-hull/hr-portal-admin/internal"
)

func Sync(ctx context.Context) error {

	a, err := bootstrap(loginHint)
	if err != nil {
		return err
	}
	defer a.Close()

	count, err := internal.SyncAppeals(ctx, a.svc, a.repo)
	if err != nil {
		return errors.Wrap(err, "failed to sync appeals")
	}
	log.Info().Int("count", count).Msg("synced appeals")

	return nil
}
