package engine

import (
	"time"

	"github.com/bwmarrin/snowflake"
	obsmetrics "github.com/getmarketingos/marketingos/internal/observability/metrics"
	"go.uber.org/zap"
)

func (e *Engine) logRunStart(job string, runID snowflake.ID) {
	e.log.Info("engine.run.start",
		zap.String("job", job),
		zap.String("run_id", runID.String()),
	)
}

func (e *Engine) logRunFinish(job string, runID snowflake.ID, start time.Time, result RunResult, err error) {
	fields := []zap.Field{
		zap.String("job", job),
		zap.String("run_id", runID.String()),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		zap.Int("organizations_processed", result.OrganizationsProcessed),
		zap.Int("content_generated", result.ContentGenerated),
		zap.Int("posts_published", result.PostsPublished),
		zap.Int("seo_analyzed", result.SeoAnalyzed),
		zap.Int("comments_replied", result.CommentsReplied),
		zap.Int("error_count", len(result.Errors)),
	}
	if err != nil {
		e.log.Error("engine.run.finish", append(fields, zap.Error(err))...)
		return
	}
	if len(result.Errors) > 0 {
		e.log.Warn("engine.run.finish", fields...)
		return
	}
	e.log.Info("engine.run.finish", fields...)
}

func (e *Engine) logStageError(orgID snowflake.ID, stage string, err error) {
	e.log.Error("engine.stage.failed",
		zap.String("stage", stage),
		zap.String("org_id", idString(orgID)),
		zap.String("error_type", obsmetrics.ClassifyEngineErrorType(err)),
		zap.Bool("retryable", obsmetrics.IsEngineErrorRetryable(err)),
		zap.Error(err),
	)
}

func idString(id snowflake.ID) string {
	if id == 0 {
		return ""
	}
	return id.String()
}
