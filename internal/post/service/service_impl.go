package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/getmarketingos/marketingos/internal/clock"
	"github.com/getmarketingos/marketingos/internal/observability/metrics"
	"github.com/getmarketingos/marketingos/internal/post/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type service struct {
	db    *gorm.DB
	repo  domain.Repository
	genID *snowflake.Node
	clock clock.Clock
}

func NewService(conn *gorm.DB, repo domain.Repository, genID *snowflake.Node, clk clock.Clock) domain.Service {
	return &service{
		db:    conn,
		repo:  repo,
		genID: genID,
		clock: clk,
	}
}

func (s *service) CreateScheduled(ctx context.Context, draft domain.NewDraft) (*domain.MarketingPost, error) {
	if draft.OrgID == 0 || strings.TrimSpace(draft.Content) == "" || draft.ScheduledAt.IsZero() {
		return nil, domain.ErrInvalidPost
	}

	now := s.clock.Now()
	post := domain.MarketingPost{
		ID:          s.genID.Generate(),
		OrgID:       draft.OrgID,
		Platform:    strings.ToLower(strings.TrimSpace(draft.Platform)),
		Content:     draft.Content,
		Hashtags:    datatypes.NewJSONSlice(draft.Hashtags),
		MediaURLs:   datatypes.NewJSONSlice(draft.MediaURLs),
		ContentType: strings.TrimSpace(draft.ContentType),
		Status:      domain.PostStatusScheduled,
		ScheduledAt: draft.ScheduledAt.UTC(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *service) GetByID(ctx context.Context, orgID, postID string) (*domain.MarketingPost, error) {
	org, err := parseID(orgID)
	if err != nil {
		return nil, err
	}
	id, err := parseID(postID)
	if err != nil {
		return nil, err
	}

	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.OrgID != org {
		return nil, domain.ErrPostNotFound
	}
	return post, nil
}

func (s *service) List(ctx context.Context, orgID string, status, platform string, limit, offset int) ([]domain.MarketingPost, error) {
	org, err := parseID(orgID)
	if err != nil {
		return nil, err
	}

	filter := domain.ListPostsFilter{
		OrgID:    org,
		Platform: strings.ToLower(strings.TrimSpace(platform)),
		Limit:    limit,
		Offset:   offset,
	}
	if trimmed := strings.TrimSpace(status); trimmed != "" {
		parsed := domain.PostStatus(trimmed)
		if !parsed.Valid() {
			return nil, domain.ErrInvalidPost
		}
		filter.Status = parsed
	}
	return s.repo.List(ctx, filter)
}

func (s *service) CountScheduledInWindow(ctx context.Context, orgID snowflake.ID, from, to time.Time) (int64, error) {
	return s.repo.CountScheduledInWindow(ctx, orgID, from, to)
}

func (s *service) ClaimDue(ctx context.Context, orgID snowflake.ID, now time.Time, limit int) ([]domain.MarketingPost, error) {
	return s.repo.ClaimDue(ctx, orgID, now, limit)
}

func (s *service) MarkPublishing(ctx context.Context, postID snowflake.ID) (bool, error) {
	moved, err := s.repo.Transition(ctx, postID, domain.PostStatusScheduled, domain.PostStatusPublishing, nil)
	if err == nil && moved {
		metrics.Engine().IncPostTransition(string(domain.PostStatusScheduled), string(domain.PostStatusPublishing))
	}
	return moved, err
}

func (s *service) MarkPublished(ctx context.Context, postID snowflake.ID, externalID, externalURL string, publishedAt time.Time) (bool, error) {
	moved, err := s.repo.Transition(ctx, postID, domain.PostStatusPublishing, domain.PostStatusPublished, map[string]any{
		"external_id":   externalID,
		"external_url":  externalURL,
		"published_at":  publishedAt.UTC(),
		"publish_error": "",
	})
	if err == nil && moved {
		metrics.Engine().IncPostTransition(string(domain.PostStatusPublishing), string(domain.PostStatusPublished))
	}
	return moved, err
}

func (s *service) MarkFailed(ctx context.Context, postID snowflake.ID, from domain.PostStatus, publishError string) (bool, error) {
	if from != domain.PostStatusScheduled && from != domain.PostStatusPublishing {
		return false, domain.ErrInvalidTransition
	}
	moved, err := s.repo.Transition(ctx, postID, from, domain.PostStatusFailed, map[string]any{
		"publish_error": publishError,
	})
	if err == nil && moved {
		metrics.Engine().IncPostTransition(string(from), string(domain.PostStatusFailed))
	}
	return moved, err
}

func (s *service) Cancel(ctx context.Context, orgID, postID string) error {
	post, err := s.GetByID(ctx, orgID, postID)
	if err != nil {
		return err
	}
	if post.Status != domain.PostStatusScheduled {
		return domain.ErrNotCancelable
	}

	result := s.db.WithContext(ctx).
		Where("id = ? AND status = ?", post.ID, domain.PostStatusScheduled).
		Delete(&domain.MarketingPost{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotCancelable
	}
	return nil
}

func (s *service) Retry(ctx context.Context, orgID, postID string) (*domain.MarketingPost, error) {
	post, err := s.GetByID(ctx, orgID, postID)
	if err != nil {
		return nil, err
	}
	if post.Status != domain.PostStatusFailed {
		return nil, domain.ErrNotRetryable
	}

	scheduledAt := post.ScheduledAt
	if now := s.clock.Now(); scheduledAt.Before(now) {
		scheduledAt = now
	}
	moved, err := s.repo.Transition(ctx, post.ID, domain.PostStatusFailed, domain.PostStatusScheduled, map[string]any{
		"publish_error": "",
		"scheduled_at":  scheduledAt,
	})
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, domain.ErrNotRetryable
	}
	metrics.Engine().IncPostTransition(string(domain.PostStatusFailed), string(domain.PostStatusScheduled))
	return s.repo.GetByID(ctx, post.ID)
}

func parseID(raw string) (snowflake.ID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, domain.ErrInvalidPost
	}
	id, err := snowflake.ParseString(trimmed)
	if err != nil {
		return 0, domain.ErrInvalidPost
	}
	return id, nil
}
