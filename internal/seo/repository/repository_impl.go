package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/getmarketingos/marketingos/internal/seo/domain"
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

func (r *repository) GetByOrg(ctx context.Context, orgID snowflake.ID) (*domain.SeoConfig, error) {
	var config domain.SeoConfig
	err := r.db.WithContext(ctx).First(&config, "org_id = ?", orgID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrConfigNotFound
		}
		return nil, err
	}
	return &config, nil
}

func (r *repository) Upsert(ctx context.Context, config domain.SeoConfig) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "org_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"target_url",
			"updated_at",
		}),
	}).Create(&config).Error
}

func (r *repository) RecordScan(ctx context.Context, configID snowflake.ID, score int, scannedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&domain.SeoConfig{}).
		Where("id = ?", configID).
		Updates(map[string]any{
			"last_score":      score,
			"last_scanned_at": scannedAt,
			"updated_at":      gorm.Expr("CURRENT_TIMESTAMP"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrConfigNotFound
	}
	return nil
}
