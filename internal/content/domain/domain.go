// Package domain defines the content generation contract.
package domain

import (
	"context"

	organizationdomain "github.com/getmarketingos/marketingos/internal/organization/domain"
)

// GenerateRequest describes one post slot to fill.
type GenerateRequest struct {
	Profile     organizationdomain.BusinessProfile
	Platform    string
	ContentType string
}

// GeneratedContent is a draft returned by the generator.
type GeneratedContent struct {
	Content   string   `json:"content"`
	Hashtags  []string `json:"hashtags"`
	ImageIdea string   `json:"image_idea"`
}

// ReplyRequest describes an inbound comment to answer.
type ReplyRequest struct {
	Profile     organizationdomain.BusinessProfile
	Platform    string
	Author      string
	CommentText string
}

// Generator produces marketing copy in the tenant's brand voice.
type Generator interface {
	GeneratePost(ctx context.Context, req GenerateRequest) (*GeneratedContent, error)
	GenerateReply(ctx context.Context, req ReplyRequest) (string, error)
}
