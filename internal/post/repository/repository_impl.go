package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/getmarketingos/marketingos/internal/post/domain"
	"gorm.io/gorm"
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

func (r *repository) Create(ctx context.Context, post domain.MarketingPost) error {
	return r.db.WithContext(ctx).Create(&post).Error
}

func (r *repository) GetByID(ctx context.Context, postID snowflake.ID) (*domain.MarketingPost, error) {
	var post domain.MarketingPost
	err := r.db.WithContext(ctx).First(&post, "id = ?", postID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (r *repository) List(ctx context.Context, filter domain.ListPostsFilter) ([]domain.MarketingPost, error) {
	stmt := r.db.WithContext(ctx).Model(&domain.MarketingPost{})
	if filter.OrgID != 0 {
		stmt = stmt.Where("org_id = ?", filter.OrgID)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.Platform != "" {
		stmt = stmt.Where("platform = ?", filter.Platform)
	}
	limit := filter.Limit
	if limit <= 0 || limit > 250 {
		limit = 50
	}

	var posts []domain.MarketingPost
	err := stmt.
		Order("scheduled_at DESC").
		Limit(limit).
		Offset(filter.Offset).
		Find(&posts).Error
	return posts, err
}

func (r *repository) CountScheduledInWindow(ctx context.Context, orgID snowflake.ID, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.MarketingPost{}).
		Where("org_id = ? AND status = ? AND scheduled_at >= ? AND scheduled_at < ?",
			orgID, domain.PostStatusScheduled, from, to).
		Count(&count).Error
	return count, err
}

func (r *repository) ClaimDue(ctx context.Context, orgID snowflake.ID, now time.Time, limit int) ([]domain.MarketingPost, error) {
	if limit <= 0 {
		limit = 50
	}

	var posts []domain.MarketingPost
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := `SELECT * FROM marketing_posts
		 WHERE status = ? AND scheduled_at <= ?`
		args := []any{domain.PostStatusScheduled, now}
		if orgID != 0 {
			query += ` AND org_id = ?`
			args = append(args, orgID)
		}
		query += `
		 ORDER BY scheduled_at ASC
		 LIMIT ?
		 FOR UPDATE SKIP LOCKED`
		args = append(args, limit)
		return tx.WithContext(ctx).Raw(query, args...).Scan(&posts).Error
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *repository) Transition(ctx context.Context, postID snowflake.ID, from, to domain.PostStatus, updates map[string]any) (bool, error) {
	values := map[string]any{
		"status":     to,
		"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
	}
	for column, value := range updates {
		values[column] = value
	}

	result := r.db.WithContext(ctx).
		Model(&domain.MarketingPost{}).
		Where("id = ? AND status = ?", postID, from).
		Updates(values)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
