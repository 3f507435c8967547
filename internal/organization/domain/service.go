package domain

import (
	"context"
	"time"
)

type CreateOrganizationRequest struct {
	Name    string `json:"name" binding:"required"`
	Website string `json:"website"`
}

type OrganizationResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Website   string    `json:"website"`
	CreatedAt time.Time `json:"created_at"`
}

type UpsertBusinessProfileRequest struct {
	BusinessName    string    `json:"business_name"`
	Industry        string    `json:"industry"`
	BrandVoice      string    `json:"brand_voice"`
	Tone            string    `json:"tone"`
	TargetAudience  string    `json:"target_audience"`
	DefaultHashtags []string  `json:"default_hashtags"`
	Products        []Product `json:"products"`
}

type UpsertMarketingConfigRequest struct {
	IsPaused     *bool    `json:"is_paused"`
	PostsPerWeek *int     `json:"posts_per_week"`
	ContentTypes []string `json:"content_types"`
}

type Service interface {
	Create(ctx context.Context, req CreateOrganizationRequest) (*OrganizationResponse, error)
	GetByID(ctx context.Context, id string) (*Organization, error)
	List(ctx context.Context) ([]Organization, error)
	ListEngineOrganizations(ctx context.Context) ([]Organization, error)
	UpsertBusinessProfile(ctx context.Context, orgID string, req UpsertBusinessProfileRequest) (*BusinessProfile, error)
	UpsertMarketingConfig(ctx context.Context, orgID string, req UpsertMarketingConfigRequest) (*MarketingConfig, error)
	SetPaused(ctx context.Context, orgID string, paused bool) error
}
