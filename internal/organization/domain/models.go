// Package domain contains persistence models for the organization service.
package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Organization represents a tenant.
type Organization struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	Slug      string       `gorm:"type:text;not null;uniqueIndex:ux_organizations_slug" json:"slug"`
	Website   string       `gorm:"type:text" json:"website"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	BusinessProfile *BusinessProfile `gorm:"foreignKey:OrgID" json:"business_profile,omitempty"`
	MarketingConfig *MarketingConfig `gorm:"foreignKey:OrgID" json:"marketing_config,omitempty"`
}

// TableName sets the database table name.
func (Organization) TableName() string { return "organizations" }

// BusinessProfile carries the brand identity used for content generation.
type BusinessProfile struct {
	ID              snowflake.ID                 `gorm:"primaryKey" json:"id"`
	OrgID           snowflake.ID                 `gorm:"not null;uniqueIndex:ux_business_profiles_org" json:"org_id"`
	BusinessName    string                       `gorm:"type:text" json:"business_name"`
	Industry        string                       `gorm:"type:text" json:"industry"`
	BrandVoice      string                       `gorm:"type:text" json:"brand_voice"`
	Tone            string                       `gorm:"type:text" json:"tone"`
	TargetAudience  string                       `gorm:"type:text" json:"target_audience"`
	DefaultHashtags datatypes.JSONSlice[string]  `gorm:"type:jsonb" json:"default_hashtags"`
	Products        datatypes.JSONSlice[Product] `gorm:"type:jsonb" json:"products"`
	IsComplete      bool                         `gorm:"column:is_complete;not null;default:false" json:"is_complete"`
	CreatedAt       time.Time                    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time                    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (BusinessProfile) TableName() string { return "business_profiles" }

// Product is a sellable item mentioned in generated content.
type Product struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
}

// MarketingConfig gates and shapes automated marketing for a tenant.
type MarketingConfig struct {
	ID           snowflake.ID                `gorm:"primaryKey" json:"id"`
	OrgID        snowflake.ID                `gorm:"not null;uniqueIndex:ux_marketing_configs_org" json:"org_id"`
	IsPaused     bool                        `gorm:"column:is_paused;not null;default:false" json:"is_paused"`
	PostsPerWeek int                         `gorm:"column:posts_per_week;not null;default:7" json:"posts_per_week"`
	ContentTypes datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"content_types"`
	CreatedAt    time.Time                   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time                   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (MarketingConfig) TableName() string { return "marketing_configs" }

// DefaultContentTypes is the rotation used when a tenant has not configured one.
var DefaultContentTypes = []string{"promotional", "educational", "engagement"}

// ContentTypeRotation returns the configured rotation or the default one.
func (c *MarketingConfig) ContentTypeRotation() []string {
	if c == nil || len(c.ContentTypes) == 0 {
		return DefaultContentTypes
	}
	types := make([]string, 0, len(c.ContentTypes))
	for _, t := range c.ContentTypes {
		if strings.TrimSpace(t) != "" {
			types = append(types, strings.TrimSpace(t))
		}
	}
	if len(types) == 0 {
		return DefaultContentTypes
	}
	return types
}

// Eligible reports whether the engine should process the organization.
func (o Organization) Eligible() bool {
	if o.BusinessProfile == nil || !o.BusinessProfile.IsComplete {
		return false
	}
	if o.MarketingConfig != nil && o.MarketingConfig.IsPaused {
		return false
	}
	return true
}
