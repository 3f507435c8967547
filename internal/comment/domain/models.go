// Package domain contains persistence models for inbound social comments.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// SocialComment is an inbound comment pulled from a platform. Rows with
// needs_reply set and neither replied nor is_spam are picked up by the
// engine's reply step.
type SocialComment struct {
	ID                snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID             snowflake.ID `gorm:"not null;index;uniqueIndex:ux_social_comments_external,priority:1" json:"org_id"`
	Platform          string       `gorm:"type:text;not null;uniqueIndex:ux_social_comments_external,priority:2" json:"platform"`
	ExternalCommentID string       `gorm:"column:external_comment_id;type:text;not null;uniqueIndex:ux_social_comments_external,priority:3" json:"external_comment_id"`
	Author            string       `gorm:"type:text" json:"author"`
	Text              string       `gorm:"type:text;not null" json:"text"`
	NeedsReply        bool         `gorm:"column:needs_reply;not null;default:false;index:ix_comments_reply_queue" json:"needs_reply"`
	Replied           bool         `gorm:"not null;default:false;index:ix_comments_reply_queue" json:"replied"`
	IsSpam            bool         `gorm:"column:is_spam;not null;default:false" json:"is_spam"`
	ReplyText         string       `gorm:"column:reply_text;type:text" json:"reply_text"`
	RepliedAt         *time.Time   `gorm:"column:replied_at" json:"replied_at"`
	CreatedAt         time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt         time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (SocialComment) TableName() string { return "social_comments" }
