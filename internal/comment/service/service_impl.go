package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/getmarketingos/marketingos/internal/clock"
	"github.com/getmarketingos/marketingos/internal/comment/domain"
	contentdomain "github.com/getmarketingos/marketingos/internal/content/domain"
	organizationdomain "github.com/getmarketingos/marketingos/internal/organization/domain"
	socialaccountdomain "github.com/getmarketingos/marketingos/internal/socialaccount/domain"
	"go.uber.org/zap"
)

type service struct {
	repo      domain.Repository
	accounts  socialaccountdomain.Service
	generator contentdomain.Generator
	sender    domain.ReplySender
	genID     *snowflake.Node
	clock     clock.Clock
	log       *zap.Logger
}

func NewService(
	repo domain.Repository,
	accounts socialaccountdomain.Service,
	generator contentdomain.Generator,
	sender domain.ReplySender,
	genID *snowflake.Node,
	clk clock.Clock,
	log *zap.Logger,
) domain.Service {
	return &service{
		repo:      repo,
		accounts:  accounts,
		generator: generator,
		sender:    sender,
		genID:     genID,
		clock:     clk,
		log:       log,
	}
}

func (s *service) Ingest(ctx context.Context, orgID string, req domain.IngestCommentRequest) (*domain.SocialComment, error) {
	org, err := parseID(orgID, domain.ErrInvalidComment)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.ExternalCommentID) == "" || strings.TrimSpace(req.Text) == "" {
		return nil, domain.ErrInvalidComment
	}

	now := s.clock.Now()
	comment := domain.SocialComment{
		ID:                s.genID.Generate(),
		OrgID:             org,
		Platform:          strings.ToLower(strings.TrimSpace(req.Platform)),
		ExternalCommentID: strings.TrimSpace(req.ExternalCommentID),
		Author:            strings.TrimSpace(req.Author),
		Text:              req.Text,
		NeedsReply:        req.NeedsReply && !req.IsSpam,
		IsSpam:            req.IsSpam,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	return s.repo.Upsert(ctx, comment)
}

func (s *service) ListByOrg(ctx context.Context, orgID string, filter domain.ListCommentsFilter) ([]domain.SocialComment, error) {
	org, err := parseID(orgID, domain.ErrInvalidComment)
	if err != nil {
		return nil, err
	}
	filter.OrgID = org
	return s.repo.List(ctx, filter)
}

func (s *service) MarkSpam(ctx context.Context, orgID, commentID string) error {
	org, err := parseID(orgID, domain.ErrInvalidComment)
	if err != nil {
		return err
	}
	id, err := parseID(commentID, domain.ErrInvalidComment)
	if err != nil {
		return err
	}

	comment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if comment.OrgID != org {
		return domain.ErrCommentNotFound
	}
	return s.repo.MarkSpam(ctx, id)
}

func (s *service) ReplyPending(ctx context.Context, org organizationdomain.Organization, limit int) (domain.ReplyOutcome, error) {
	outcome := domain.ReplyOutcome{}
	if org.BusinessProfile == nil {
		return outcome, nil
	}

	comments, err := s.repo.ClaimNeedingReply(ctx, org.ID, limit)
	if err != nil {
		return outcome, err
	}

	for _, comment := range comments {
		if err := s.replyOne(ctx, *org.BusinessProfile, comment); err != nil {
			s.log.Warn("comment reply failed",
				zap.String("comment_id", comment.ID.String()),
				zap.String("org_id", comment.OrgID.String()),
				zap.String("platform", comment.Platform),
				zap.Error(err),
			)
			outcome.Failures = append(outcome.Failures, domain.ReplyFailure{CommentID: comment.ID, Err: err})
			continue
		}
		outcome.Replied++
		if outcome.RepliedByPlatform == nil {
			outcome.RepliedByPlatform = map[string]int{}
		}
		outcome.RepliedByPlatform[comment.Platform]++
	}
	return outcome, nil
}

func (s *service) replyOne(ctx context.Context, profile organizationdomain.BusinessProfile, comment domain.SocialComment) error {
	creds, err := s.accounts.ActiveCredentials(ctx, comment.OrgID, socialaccountdomain.Platform(comment.Platform))
	if err != nil {
		return err
	}

	replyText, err := s.generator.GenerateReply(ctx, contentdomain.ReplyRequest{
		Profile:     profile,
		Platform:    comment.Platform,
		Author:      comment.Author,
		CommentText: comment.Text,
	})
	if err != nil {
		return err
	}

	if err := s.sender.SendReply(ctx, *creds, comment.ExternalCommentID, replyText); err != nil {
		return err
	}

	moved, err := s.repo.MarkReplied(ctx, comment.ID, replyText, s.clock.Now())
	if err != nil {
		return err
	}
	if !moved {
		return domain.ErrAlreadyReplied
	}
	return nil
}

func parseID(raw string, invalid error) (snowflake.ID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, invalid
	}
	id, err := snowflake.ParseString(trimmed)
	if err != nil {
		return 0, invalid
	}
	return id, nil
}
