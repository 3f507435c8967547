package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListCommentsFilter struct {
	OrgID    snowflake.ID
	Platform string
	Limit    int
	Offset   int
}

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	// Upsert inserts the comment or, when (org_id, platform,
	// external_comment_id) already exists, returns the stored row untouched
	// so webhook redeliveries stay idempotent.
	Upsert(ctx context.Context, comment SocialComment) (*SocialComment, error)
	GetByID(ctx context.Context, commentID snowflake.ID) (*SocialComment, error)
	List(ctx context.Context, filter ListCommentsFilter) ([]SocialComment, error)
	// ClaimNeedingReply locks unanswered non-spam comments for the org with
	// FOR UPDATE SKIP LOCKED inside a short transaction.
	ClaimNeedingReply(ctx context.Context, orgID snowflake.ID, limit int) ([]SocialComment, error)
	// MarkReplied records the reply on a still-unanswered row and reports
	// whether the row actually moved.
	MarkReplied(ctx context.Context, commentID snowflake.ID, replyText string, repliedAt time.Time) (bool, error)
	MarkSpam(ctx context.Context, commentID snowflake.ID) error
}
