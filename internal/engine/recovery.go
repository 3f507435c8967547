package engine

import (
	"context"

	obsmetrics "github.com/getmarketingos/marketingos/internal/observability/metrics"
	postdomain "github.com/getmarketingos/marketingos/internal/post/domain"
	"go.uber.org/zap"
)

// recoverStaleState reconciles rows abandoned by a crashed run: ledger
// rows stuck in running and posts stuck in publishing past the recovery
// threshold. Best effort; sweep failures never block the run.
func (e *Engine) recoverStaleState(ctx context.Context) {
	if !e.isStageEnabled(obsmetrics.EngineStageRecovery) {
		return
	}

	now := e.clock.Now()
	cutoff := now.Add(-e.cfg.RecoveryThreshold)

	reconciled, err := e.cronLogs.MarkStaleFailed(ctx, cutoff, now)
	if err != nil {
		obsmetrics.Engine().IncStageError(obsmetrics.EngineStageRecovery, err)
		e.log.Warn("stale run sweep failed", zap.Error(err))
	} else if reconciled > 0 {
		e.log.Warn("stale running ledger rows reconciled", zap.Int64("count", reconciled))
	}

	result := e.db.WithContext(ctx).
		Model(&postdomain.MarketingPost{}).
		Where("status = ? AND updated_at < ?", postdomain.PostStatusPublishing, cutoff).
		Updates(map[string]any{
			"status":        postdomain.PostStatusFailed,
			"publish_error": "publish interrupted: engine restarted mid-flight",
		})
	if result.Error != nil {
		obsmetrics.Engine().IncStageError(obsmetrics.EngineStageRecovery, result.Error)
		e.log.Warn("stale publishing sweep failed", zap.Error(result.Error))
		return
	}
	if result.RowsAffected > 0 {
		e.log.Warn("stale publishing posts failed over", zap.Int64("count", result.RowsAffected))
	}
}
