package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	authRepo "polopay_backend/internals/features/users/auth/repository"
)

const defaultCleanupSpec = "@every 1h"

// CleanupSessions deletes sessions that expired or were revoked before
// now-retention.
func CleanupSessions(ctx context.Context, db *gorm.DB, retention time.Duration, now time.Time) (int64, error) {
	return authRepo.DeleteStaleSessions(ctx, db, now.Add(-retention))
}

// StartSessionCleanup runs CleanupSessions on spec (empty = hourly). The
// returned cron must be stopped on shutdown.
func StartSessionCleanup(db *gorm.DB, spec string, retention time.Duration) (*cron.Cron, error) {
	if spec == "" {
		spec = defaultCleanupSpec
	}
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		n, err := CleanupSessions(ctx, db, retention, time.Now())
		if err != nil {
			log.Error().Err(err).Msg("[CLEANUP] session cleanup failed")
			return
		}
		if n > 0 {
			log.Info().Int64("deleted", n).Msg("[CLEANUP] stale sessions removed")
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
