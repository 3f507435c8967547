package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/getmarketingos/marketingos/internal/socialaccount/domain"
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

func (r *repository) Create(ctx context.Context, account domain.SocialAccount) error {
	return r.db.WithContext(ctx).Create(&account).Error
}

func (r *repository) GetByID(ctx context.Context, accountID snowflake.ID) (*domain.SocialAccount, error) {
	var account domain.SocialAccount
	err := r.db.WithContext(ctx).First(&account, "id = ?", accountID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

func (r *repository) ListByOrg(ctx context.Context, orgID snowflake.ID) ([]domain.SocialAccount, error) {
	var accounts []domain.SocialAccount
	err := r.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("created_at ASC").
		Find(&accounts).Error
	return accounts, err
}

func (r *repository) GetActive(ctx context.Context, orgID snowflake.ID, platform domain.Platform) (*domain.SocialAccount, error) {
	var account domain.SocialAccount
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND platform = ? AND is_active = ?", orgID, platform, true).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNoActiveAccount
		}
		return nil, err
	}
	return &account, nil
}

func (r *repository) ListExpiring(ctx context.Context, cutoff time.Time) ([]domain.SocialAccount, error) {
	var accounts []domain.SocialAccount
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND token_expires_at IS NOT NULL AND token_expires_at < ?", true, cutoff).
		Order("token_expires_at ASC").
		Find(&accounts).Error
	return accounts, err
}

func (r *repository) UpdateTokens(ctx context.Context, accountID snowflake.ID, accessToken, refreshToken string, expiresAt *time.Time) error {
	updates := map[string]any{
		"access_token":     accessToken,
		"token_expires_at": expiresAt,
		"updated_at":       gorm.Expr("CURRENT_TIMESTAMP"),
	}
	if refreshToken != "" {
		updates["refresh_token"] = refreshToken
	}
	result := r.db.WithContext(ctx).
		Model(&domain.SocialAccount{}).
		Where("id = ?", accountID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (r *repository) Deactivate(ctx context.Context, accountID snowflake.ID) error {
	result := r.db.WithContext(ctx).
		Model(&domain.SocialAccount{}).
		Where("id = ?", accountID).
		Updates(map[string]any{
			"is_active":  false,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}
