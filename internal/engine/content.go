package engine

import (
	"context"
	"errors"
	"strings"
	"time"

	contentdomain "github.com/getmarketingos/marketingos/internal/content/domain"
	"github.com/getmarketingos/marketingos/internal/content/guard"
	obsmetrics "github.com/getmarketingos/marketingos/internal/observability/metrics"
	organizationdomain "github.com/getmarketingos/marketingos/internal/organization/domain"
	postdomain "github.com/getmarketingos/marketingos/internal/post/domain"
	socialaccountdomain "github.com/getmarketingos/marketingos/internal/socialaccount/domain"
	"go.uber.org/zap"
)

// bestHours are the posting slots content generation cycles through.
var bestHours = [4]int{9, 12, 17, 20}

const fallbackPlatform = string(socialaccountdomain.PlatformInstagram)

// generateContent tops the org's queue back up to its weekly target,
// capped per pass. Individual generation failures never stop the batch.
func (e *Engine) generateContent(ctx context.Context, org organizationdomain.Organization, result *RunResult) error {
	if org.BusinessProfile == nil {
		return nil
	}

	now := e.clock.Now()
	target := 7
	if org.MarketingConfig != nil && org.MarketingConfig.PostsPerWeek > 0 {
		target = org.MarketingConfig.PostsPerWeek
	}

	scheduled, err := e.postSvc.CountScheduledInWindow(ctx, org.ID, now, now.AddDate(0, 0, 7))
	if err != nil {
		return err
	}

	needed := target - int(scheduled)
	if needed <= 0 {
		return nil
	}
	if needed > e.cfg.MaxGeneratePerPass {
		needed = e.cfg.MaxGeneratePerPass
	}

	platforms := e.connectedPlatforms(ctx, org.ID.String())
	rotation := org.MarketingConfig.ContentTypeRotation()

	generated := 0
	var batchErr error
	for i := 0; i < needed; i++ {
		if ctx.Err() != nil {
			return errors.Join(batchErr, ctx.Err())
		}

		platform := platforms[i%len(platforms)]
		contentType := rotation[i%len(rotation)]
		slot := slotTime(now, i)

		if err := e.generateOne(ctx, org, platform, contentType, slot); err != nil {
			batchErr = errors.Join(batchErr, err)
			e.log.Warn("content generation failed",
				zap.String("org_id", org.ID.String()),
				zap.String("platform", platform),
				zap.String("content_type", contentType),
				zap.Error(err),
			)
			// No post row exists yet, so the failure is org-scoped.
			result.addError("org", org.ID, err)
			continue
		}
		generated++
		result.ContentGenerated++
		e.metrics.RecordContentGenerated(ctx, platform, contentType)
	}

	if generated > 0 {
		obsmetrics.Engine().AddBatchProcessed(JobMarketingEngine, "posts_generated", generated)
	}
	// Generation failures were isolated per slot; the stage itself succeeded.
	return nil
}

func (e *Engine) generateOne(ctx context.Context, org organizationdomain.Organization, platform, contentType string, slot time.Time) error {
	profile := *org.BusinessProfile

	draft, err := e.generator.GeneratePost(ctx, contentdomain.GenerateRequest{
		Profile:     profile,
		Platform:    platform,
		ContentType: contentType,
	})
	if err != nil {
		return err
	}
	if len(draft.Hashtags) == 0 && len(profile.DefaultHashtags) > 0 {
		draft.Hashtags = append(draft.Hashtags, profile.DefaultHashtags...)
	}
	if err := guard.EnsureContentPublishable(*draft); err != nil {
		return err
	}

	var mediaURLs []string
	if platform == fallbackPlatform {
		if url := e.findImage(ctx, profile, *draft); url != "" {
			mediaURLs = []string{url}
		}
	}

	_, err = e.postSvc.CreateScheduled(ctx, postdomain.NewDraft{
		OrgID:       org.ID,
		Platform:    platform,
		Content:     draft.Content,
		Hashtags:    draft.Hashtags,
		MediaURLs:   mediaURLs,
		ContentType: contentType,
		ScheduledAt: slot,
	})
	return err
}

// findImage resolves a stock image for an Instagram draft. Enrichment is
// best effort; a miss leaves the draft image-less.
func (e *Engine) findImage(ctx context.Context, profile organizationdomain.BusinessProfile, draft contentdomain.GeneratedContent) string {
	if e.images == nil {
		return ""
	}
	query := strings.TrimSpace(draft.ImageIdea)
	if query == "" {
		query = strings.TrimSpace(profile.Industry)
	}
	if query == "" {
		return ""
	}
	url, err := e.images.FindImage(ctx, query)
	if err != nil {
		e.log.Debug("stock image lookup failed", zap.String("query", query), zap.Error(err))
		return ""
	}
	return url
}

// connectedPlatforms returns the org's active platforms for round-robin
// assignment, falling back to instagram when none are connected.
func (e *Engine) connectedPlatforms(ctx context.Context, orgID string) []string {
	accounts, err := e.accountSvc.ListByOrg(ctx, orgID)
	if err != nil {
		e.log.Warn("listing social accounts failed", zap.String("org_id", orgID), zap.Error(err))
		return []string{fallbackPlatform}
	}

	var platforms []string
	for _, account := range accounts {
		if account.IsActive {
			platforms = append(platforms, string(account.Platform))
		}
	}
	if len(platforms) == 0 {
		return []string{fallbackPlatform}
	}
	return platforms
}

// slotTime places slot i at tomorrow+i, cycling through bestHours.
func slotTime(now time.Time, i int) time.Time {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, i+1)
	return day.Add(time.Duration(bestHours[i%len(bestHours)]) * time.Hour)
}
