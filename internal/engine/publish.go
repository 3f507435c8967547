package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	obsmetrics "github.com/getmarketingos/marketingos/internal/observability/metrics"
	postdomain "github.com/getmarketingos/marketingos/internal/post/domain"
	socialaccountdomain "github.com/getmarketingos/marketingos/internal/socialaccount/domain"
	"go.uber.org/zap"
)

// publishDue claims due scheduled posts and dispatches them through the
// platform adapters. orgID zero publishes across all organizations.
// Per-post failures mark the row failed and never abort the batch.
func (e *Engine) publishDue(ctx context.Context, orgID snowflake.ID, result *RunResult) error {
	claimStart := time.Now()
	posts, err := e.postSvc.ClaimDue(ctx, orgID, e.clock.Now(), e.cfg.PublishBatchSize)
	obsmetrics.Engine().ObserveDBLockWait(obsmetrics.LockResourcePostsForWork, time.Since(claimStart))
	if err != nil {
		return err
	}
	if len(posts) == 0 {
		obsmetrics.Engine().IncBatchDeferred(obsmetrics.EngineStagePublish, obsmetrics.EngineBatchDeferredReasonSkipLockedEmpty)
		return nil
	}

	published := 0
	for _, post := range posts {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := e.publishOne(ctx, post); err != nil {
			result.addError("post", post.ID, err)
			continue
		}
		published++
		result.PostsPublished++
		e.metrics.RecordPostPublished(ctx, post.Platform)
	}

	if published > 0 {
		obsmetrics.Engine().AddBatchProcessed(obsmetrics.EngineStagePublish, "posts", published)
	}
	return nil
}

func (e *Engine) publishOne(ctx context.Context, post postdomain.MarketingPost) error {
	log := e.log.With(
		zap.String("post_id", post.ID.String()),
		zap.String("org_id", post.OrgID.String()),
		zap.String("platform", post.Platform),
	)

	creds, err := e.accountSvc.ActiveCredentials(ctx, post.OrgID, socialaccountdomain.Platform(post.Platform))
	if err != nil {
		if errors.Is(err, socialaccountdomain.ErrAccountNotFound) || errors.Is(err, socialaccountdomain.ErrNoActiveAccount) {
			// No adapter call without an account; fail the row directly.
			failErr := fmt.Errorf("no active %s account connected", post.Platform)
			if _, markErr := e.postSvc.MarkFailed(ctx, post.ID, postdomain.PostStatusScheduled, failErr.Error()); markErr != nil {
				return markErr
			}
			log.Warn("post failed: no active account")
			return failErr
		}
		return err
	}

	moved, err := e.postSvc.MarkPublishing(ctx, post.ID)
	if err != nil {
		return err
	}
	if !moved {
		// Someone else claimed the row or it already left scheduled.
		log.Debug("post no longer scheduled, skipping")
		return nil
	}

	publisher, err := e.registry.Resolve(post.Platform)
	if err != nil {
		return e.failPost(ctx, log, post, err)
	}

	ref, err := publisher.Publish(ctx, *creds, post)
	if err != nil {
		obsmetrics.Engine().IncPublishError(post.Platform, err)
		return e.failPost(ctx, log, post, err)
	}

	if _, err := e.postSvc.MarkPublished(ctx, post.ID, ref.ExternalID, ref.URL, e.clock.Now()); err != nil {
		return err
	}
	log.Info("post published",
		zap.String("external_id", ref.ExternalID),
		zap.Bool("pending", ref.Pending),
	)
	return nil
}

func (e *Engine) failPost(ctx context.Context, log *zap.Logger, post postdomain.MarketingPost, cause error) error {
	if _, markErr := e.postSvc.MarkFailed(ctx, post.ID, postdomain.PostStatusPublishing, cause.Error()); markErr != nil {
		return errors.Join(cause, markErr)
	}
	log.Warn("post publish failed",
		zap.String("error_type", obsmetrics.ClassifyEngineErrorType(cause)),
		zap.Bool("retryable", obsmetrics.IsEngineErrorRetryable(cause)),
		zap.Error(cause),
	)
	return cause
}
