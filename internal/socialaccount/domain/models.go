// Package domain contains persistence models for connected social accounts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Platform identifies a supported social network.
type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformFacebook  Platform = "facebook"
	PlatformTikTok    Platform = "tiktok"
)

// KnownPlatforms lists every platform the engine can publish to.
var KnownPlatforms = []Platform{PlatformInstagram, PlatformFacebook, PlatformTikTok}

// Valid reports whether the platform is supported.
func (p Platform) Valid() bool {
	switch p {
	case PlatformInstagram, PlatformFacebook, PlatformTikTok:
		return true
	default:
		return false
	}
}

// SocialAccount stores a tenant's connection to one platform.
// Token columns hold ciphertext; use the token Codec at point of use.
type SocialAccount struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID          snowflake.ID `gorm:"not null;index;uniqueIndex:ux_social_accounts_org_platform,priority:1" json:"org_id"`
	Platform       Platform     `gorm:"type:text;not null;uniqueIndex:ux_social_accounts_org_platform,priority:2" json:"platform"`
	AccountName    string       `gorm:"type:text" json:"account_name"`
	AccessToken    string       `gorm:"column:access_token;type:text;not null" json:"-"`
	RefreshToken   string       `gorm:"column:refresh_token;type:text" json:"-"`
	TokenExpiresAt *time.Time   `gorm:"column:token_expires_at" json:"token_expires_at"`
	IGBusinessID   string       `gorm:"column:ig_business_id;type:text" json:"ig_business_id"`
	FBPageID       string       `gorm:"column:fb_page_id;type:text" json:"fb_page_id"`
	TikTokOpenID   string       `gorm:"column:tiktok_open_id;type:text" json:"tiktok_open_id"`
	IsActive       bool         `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (SocialAccount) TableName() string { return "social_accounts" }

// ExpiresWithin reports whether the token expires before now+window.
func (a SocialAccount) ExpiresWithin(now time.Time, window time.Duration) bool {
	if a.TokenExpiresAt == nil {
		return false
	}
	return a.TokenExpiresAt.Before(now.Add(window))
}

// Expired reports whether the token is already past its expiry.
func (a SocialAccount) Expired(now time.Time) bool {
	if a.TokenExpiresAt == nil {
		return false
	}
	return a.TokenExpiresAt.Before(now)
}
