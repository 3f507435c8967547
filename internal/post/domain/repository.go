package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListPostsFilter struct {
	OrgID    snowflake.ID
	Status   PostStatus
	Platform string
	Limit    int
	Offset   int
}

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, post MarketingPost) error
	GetByID(ctx context.Context, postID snowflake.ID) (*MarketingPost, error)
	List(ctx context.Context, filter ListPostsFilter) ([]MarketingPost, error)
	// CountScheduledInWindow counts scheduled posts due in [from, to).
	CountScheduledInWindow(ctx context.Context, orgID snowflake.ID, from, to time.Time) (int64, error)
	// ClaimDue locks scheduled posts due at or before now, oldest first,
	// with FOR UPDATE SKIP LOCKED inside a short transaction.
	ClaimDue(ctx context.Context, orgID snowflake.ID, now time.Time, limit int) ([]MarketingPost, error)
	// Transition performs a status-guarded update and reports whether the
	// row actually moved.
	Transition(ctx context.Context, postID snowflake.ID, from, to PostStatus, updates map[string]any) (bool, error)
}
