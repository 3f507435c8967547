package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

// NewDraft describes a generated post about to be persisted as scheduled.
type NewDraft struct {
	OrgID       snowflake.ID
	Platform    string
	Content     string
	Hashtags    []string
	MediaURLs   []string
	ContentType string
	ScheduledAt time.Time
}

type Service interface {
	CreateScheduled(ctx context.Context, draft NewDraft) (*MarketingPost, error)
	GetByID(ctx context.Context, orgID, postID string) (*MarketingPost, error)
	List(ctx context.Context, orgID string, status, platform string, limit, offset int) ([]MarketingPost, error)
	CountScheduledInWindow(ctx context.Context, orgID snowflake.ID, from, to time.Time) (int64, error)
	ClaimDue(ctx context.Context, orgID snowflake.ID, now time.Time, limit int) ([]MarketingPost, error)
	// MarkPublishing guards scheduled -> publishing.
	MarkPublishing(ctx context.Context, postID snowflake.ID) (bool, error)
	// MarkPublished guards publishing -> published and stores external refs.
	MarkPublished(ctx context.Context, postID snowflake.ID, externalID, externalURL string, publishedAt time.Time) (bool, error)
	// MarkFailed stores the publish error; valid from scheduled or publishing.
	MarkFailed(ctx context.Context, postID snowflake.ID, from PostStatus, publishError string) (bool, error)
	// Cancel deletes a scheduled post before it is picked up.
	Cancel(ctx context.Context, orgID, postID string) error
	// Retry requeues a failed post as scheduled.
	Retry(ctx context.Context, orgID, postID string) (*MarketingPost, error)
}
