package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/getmarketingos/marketingos/internal/comment/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) domain.Repository {
	return &repository{db: tx}
}

func (r *repository) Upsert(ctx context.Context, comment domain.SocialComment) (*domain.SocialComment, error) {
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "org_id"},
			{Name: "platform"},
			{Name: "external_comment_id"},
		},
		DoNothing: true,
	}).Create(&comment)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected > 0 {
		return &comment, nil
	}

	// Redelivered comment; hand back the row already on file.
	var existing domain.SocialComment
	err := r.db.WithContext(ctx).
		First(&existing, "org_id = ? AND platform = ? AND external_comment_id = ?",
			comment.OrgID, comment.Platform, comment.ExternalCommentID).Error
	if err != nil {
		return nil, err
	}
	return &existing, nil
}

func (r *repository) GetByID(ctx context.Context, commentID snowflake.ID) (*domain.SocialComment, error) {
	var comment domain.SocialComment
	err := r.db.WithContext(ctx).First(&comment, "id = ?", commentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCommentNotFound
		}
		return nil, err
	}
	return &comment, nil
}

func (r *repository) List(ctx context.Context, filter domain.ListCommentsFilter) ([]domain.SocialComment, error) {
	stmt := r.db.WithContext(ctx).Model(&domain.SocialComment{})
	if filter.OrgID != 0 {
		stmt = stmt.Where("org_id = ?", filter.OrgID)
	}
	if filter.Platform != "" {
		stmt = stmt.Where("platform = ?", filter.Platform)
	}
	limit := filter.Limit
	if limit <= 0 || limit > 250 {
		limit = 50
	}

	var comments []domain.SocialComment
	err := stmt.
		Order("created_at DESC").
		Limit(limit).
		Offset(filter.Offset).
		Find(&comments).Error
	return comments, err
}

func (r *repository) ClaimNeedingReply(ctx context.Context, orgID snowflake.ID, limit int) ([]domain.SocialComment, error) {
	if limit <= 0 {
		limit = 20
	}

	var comments []domain.SocialComment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.WithContext(ctx).Raw(`SELECT * FROM social_comments
		 WHERE org_id = ? AND needs_reply AND NOT replied AND NOT is_spam
		 ORDER BY created_at ASC
		 LIMIT ?
		 FOR UPDATE SKIP LOCKED`, orgID, limit).Scan(&comments).Error
	})
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *repository) MarkReplied(ctx context.Context, commentID snowflake.ID, replyText string, repliedAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.SocialComment{}).
		Where("id = ? AND NOT replied", commentID).
		Updates(map[string]any{
			"replied":    true,
			"reply_text": replyText,
			"replied_at": repliedAt,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) MarkSpam(ctx context.Context, commentID snowflake.ID) error {
	result := r.db.WithContext(ctx).
		Model(&domain.SocialComment{}).
		Where("id = ?", commentID).
		Updates(map[string]any{
			"is_spam":     true,
			"needs_reply": false,
			"updated_at":  gorm.Expr("CURRENT_TIMESTAMP"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrCommentNotFound
	}
	return nil
}
