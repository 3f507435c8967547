package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, account SocialAccount) error
	GetByID(ctx context.Context, accountID snowflake.ID) (*SocialAccount, error)
	ListByOrg(ctx context.Context, orgID snowflake.ID) ([]SocialAccount, error)
	// GetActive returns the single active account for (org, platform).
	GetActive(ctx context.Context, orgID snowflake.ID, platform Platform) (*SocialAccount, error)
	// ListExpiring returns active accounts whose token expires before the cutoff.
	ListExpiring(ctx context.Context, cutoff time.Time) ([]SocialAccount, error)
	UpdateTokens(ctx context.Context, accountID snowflake.ID, accessToken, refreshToken string, expiresAt *time.Time) error
	Deactivate(ctx context.Context, accountID snowflake.ID) error
}
