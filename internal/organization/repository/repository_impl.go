package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/getmarketingos/marketingos/internal/organization/domain"
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

func (r *repository) CreateOrganization(ctx context.Context, org domain.Organization) error {
	return r.db.WithContext(ctx).Create(&org).Error
}

func (r *repository) GetOrganization(ctx context.Context, orgID snowflake.ID) (*domain.Organization, error) {
	var org domain.Organization
	err := r.db.WithContext(ctx).
		Preload("BusinessProfile").
		Preload("MarketingConfig").
		First(&org, "id = ?", orgID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrganizationNotFound
		}
		return nil, err
	}
	return &org, nil
}

func (r *repository) ListOrganizations(ctx context.Context) ([]domain.Organization, error) {
	var orgs []domain.Organization
	err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&orgs).Error
	return orgs, err
}

func (r *repository) ListEngineOrganizations(ctx context.Context) ([]domain.Organization, error) {
	var orgs []domain.Organization
	err := r.db.WithContext(ctx).
		Preload("BusinessProfile").
		Preload("MarketingConfig").
		Order("created_at ASC").
		Find(&orgs).Error
	return orgs, err
}

func (r *repository) UpsertBusinessProfile(ctx context.Context, profile domain.BusinessProfile) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "org_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"business_name",
			"industry",
			"brand_voice",
			"tone",
			"target_audience",
			"default_hashtags",
			"products",
			"is_complete",
			"updated_at",
		}),
	}).Create(&profile).Error
}

func (r *repository) GetBusinessProfile(ctx context.Context, orgID snowflake.ID) (*domain.BusinessProfile, error) {
	var profile domain.BusinessProfile
	err := r.db.WithContext(ctx).First(&profile, "org_id = ?", orgID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *repository) UpsertMarketingConfig(ctx context.Context, config domain.MarketingConfig) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "org_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"is_paused",
			"posts_per_week",
			"content_types",
			"updated_at",
		}),
	}).Create(&config).Error
}

func (r *repository) GetMarketingConfig(ctx context.Context, orgID snowflake.ID) (*domain.MarketingConfig, error) {
	var config domain.MarketingConfig
	err := r.db.WithContext(ctx).First(&config, "org_id = ?", orgID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrConfigNotFound
		}
		return nil, err
	}
	return &config, nil
}

func (r *repository) SetPaused(ctx context.Context, orgID snowflake.ID, paused bool) error {
	result := r.db.WithContext(ctx).
		Model(&domain.MarketingConfig{}).
		Where("org_id = ?", orgID).
		Updates(map[string]any{
			"is_paused":  paused,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrConfigNotFound
	}
	return nil
}
