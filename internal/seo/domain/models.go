// Package domain contains persistence models for SEO scanning.
package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrConfigNotFound = errors.New("seo_config_not_found")
	ErrInvalidTarget  = errors.New("invalid_seo_target")
)

// SeoConfig tracks the tenant site under periodic scan.
type SeoConfig struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID         snowflake.ID `gorm:"not null;uniqueIndex:ux_seo_configs_org" json:"org_id"`
	TargetURL     string       `gorm:"column:target_url;type:text;not null" json:"target_url"`
	LastScannedAt *time.Time   `gorm:"column:last_scanned_at" json:"last_scanned_at"`
	LastScore     *int         `gorm:"column:last_score" json:"last_score"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (SeoConfig) TableName() string { return "seo_configs" }

// ScanDue reports whether the last scan is absent or older than the interval.
func (c SeoConfig) ScanDue(now time.Time, interval time.Duration) bool {
	if c.LastScannedAt == nil {
		return true
	}
	return now.Sub(*c.LastScannedAt) >= interval
}
