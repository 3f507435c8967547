package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrganization(ctx context.Context, org Organization) error
	GetOrganization(ctx context.Context, orgID snowflake.ID) (*Organization, error)
	ListOrganizations(ctx context.Context) ([]Organization, error)
	// ListEngineOrganizations loads every organization with its business
	// profile and marketing config attached.
	ListEngineOrganizations(ctx context.Context) ([]Organization, error)
	UpsertBusinessProfile(ctx context.Context, profile BusinessProfile) error
	GetBusinessProfile(ctx context.Context, orgID snowflake.ID) (*BusinessProfile, error)
	UpsertMarketingConfig(ctx context.Context, config MarketingConfig) error
	GetMarketingConfig(ctx context.Context, orgID snowflake.ID) (*MarketingConfig, error)
	SetPaused(ctx context.Context, orgID snowflake.ID, paused bool) error
}
