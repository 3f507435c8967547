// Package domain contains persistence models for marketing posts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// PostStatus is the closed lifecycle enum for a marketing post.
type PostStatus string

const (
	PostStatusScheduled  PostStatus = "scheduled"
	PostStatusPublishing PostStatus = "publishing"
	PostStatusPublished  PostStatus = "published"
	PostStatusFailed     PostStatus = "failed"
)

// Valid reports whether the status is part of the enum.
func (s PostStatus) Valid() bool {
	switch s {
	case PostStatusScheduled, PostStatusPublishing, PostStatusPublished, PostStatusFailed:
		return true
	default:
		return false
	}
}

// MarketingPost is one scheduled or published piece of content.
type MarketingPost struct {
	ID           snowflake.ID                `gorm:"primaryKey" json:"id"`
	OrgID        snowflake.ID                `gorm:"not null;index" json:"org_id"`
	Platform     string                      `gorm:"type:text;not null" json:"platform"`
	Content      string                      `gorm:"type:text;not null" json:"content"`
	Hashtags     datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"hashtags"`
	MediaURLs    datatypes.JSONSlice[string] `gorm:"column:media_urls;type:jsonb" json:"media_urls"`
	ContentType  string                      `gorm:"column:content_type;type:text" json:"content_type"`
	Status       PostStatus                  `gorm:"type:text;not null;default:'scheduled';index:ix_posts_status_due,priority:1" json:"status"`
	ScheduledAt  time.Time                   `gorm:"column:scheduled_at;not null;index:ix_posts_status_due,priority:2" json:"scheduled_at"`
	PublishedAt  *time.Time                  `gorm:"column:published_at" json:"published_at"`
	ExternalID   string                      `gorm:"column:external_id;type:text" json:"external_id"`
	ExternalURL  string                      `gorm:"column:external_url;type:text" json:"external_url"`
	PublishError string                      `gorm:"column:publish_error;type:text" json:"publish_error"`
	CreatedAt    time.Time                   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time                   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (MarketingPost) TableName() string { return "marketing_posts" }

// FirstImageURL returns the first media URL, or empty when the post has none.
func (p MarketingPost) FirstImageURL() string {
	if len(p.MediaURLs) == 0 {
		return ""
	}
	return p.MediaURLs[0]
}
