package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	organizationdomain "github.com/getmarketingos/marketingos/internal/organization/domain"
	socialaccountdomain "github.com/getmarketingos/marketingos/internal/socialaccount/domain"
)

// ReplySender posts a reply to an external comment thread.
type ReplySender interface {
	SendReply(ctx context.Context, creds socialaccountdomain.Credentials, externalCommentID, message string) error
}

// ReplyFailure is one comment the reply pass could not answer.
type ReplyFailure struct {
	CommentID snowflake.ID
	Err       error
}

// ReplyOutcome summarizes one reply pass for an organization.
type ReplyOutcome struct {
	Replied           int
	RepliedByPlatform map[string]int
	Failures          []ReplyFailure
}

type IngestCommentRequest struct {
	Platform          string `json:"platform" binding:"required"`
	ExternalCommentID string `json:"external_comment_id" binding:"required"`
	Author            string `json:"author"`
	Text              string `json:"text" binding:"required"`
	NeedsReply        bool   `json:"needs_reply"`
	IsSpam            bool   `json:"is_spam"`
}

type Service interface {
	Ingest(ctx context.Context, orgID string, req IngestCommentRequest) (*SocialComment, error)
	ListByOrg(ctx context.Context, orgID string, filter ListCommentsFilter) ([]SocialComment, error)
	MarkSpam(ctx context.Context, orgID, commentID string) error
	// ReplyPending answers the org's unanswered non-spam comments in the
	// profile's brand voice. Individual failures never abort the pass.
	ReplyPending(ctx context.Context, org organizationdomain.Organization, limit int) (ReplyOutcome, error)
}
