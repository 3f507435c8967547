package engine

import (
	"context"

	"go.uber.org/zap"
)

const runLockKey = "cron:marketing-engine"

// acquireRunLock takes the distributed run lock so overlapping cron
// triggers cannot double-run. Without redis the lock is skipped; when
// redis is configured but unreachable the run proceeds with a warning
// rather than blocking the schedule.
func (e *Engine) acquireRunLock(ctx context.Context, job string) (func(), error) {
	noop := func() {}
	if e.locker == nil {
		return noop, nil
	}

	token, ok, err := e.locker.TryLock(ctx, runLockKey, e.cfg.LockTTL)
	if err != nil {
		e.log.Warn("run lock unavailable, proceeding unlocked",
			zap.String("job", job),
			zap.Error(err),
		)
		return noop, nil
	}
	if !ok {
		e.log.Info("run skipped: lock held by another run", zap.String("job", job))
		return noop, ErrRunInProgress
	}

	return func() {
		if err := e.locker.Release(context.WithoutCancel(ctx), runLockKey, token); err != nil {
			e.log.Warn("run lock release failed", zap.String("job", job), zap.Error(err))
		}
	}, nil
}
