package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Credentials is a decrypted view of an account handed to adapters.
// Never persisted.
type Credentials struct {
	AccountID    snowflake.ID
	OrgID        snowflake.ID
	Platform     Platform
	AccessToken  string
	IGBusinessID string
	FBPageID     string
	TikTokOpenID string
}

type ConnectAccountRequest struct {
	Platform     string     `json:"platform" binding:"required"`
	AccountName  string     `json:"account_name"`
	AccessToken  string     `json:"access_token" binding:"required"`
	RefreshToken string     `json:"refresh_token"`
	ExpiresAt    *time.Time `json:"expires_at"`
	IGBusinessID string     `json:"ig_business_id"`
	FBPageID     string     `json:"fb_page_id"`
	TikTokOpenID string     `json:"tiktok_open_id"`
}

type Service interface {
	Connect(ctx context.Context, orgID string, req ConnectAccountRequest) (*SocialAccount, error)
	ListByOrg(ctx context.Context, orgID string) ([]SocialAccount, error)
	Disconnect(ctx context.Context, orgID, accountID string) error
	// ActiveCredentials resolves and decrypts the active account for a platform.
	ActiveCredentials(ctx context.Context, orgID snowflake.ID, platform Platform) (*Credentials, error)
	// RefreshExpiring exchanges tokens expiring within the window and
	// deactivates expired accounts whose refresh fails.
	RefreshExpiring(ctx context.Context, window time.Duration) (int, error)
}

// RefreshedToken is the result of a provider token exchange.
type RefreshedToken struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    *time.Time
}

// TokenRefresher exchanges a near-expiry token for a fresh long-lived one.
type TokenRefresher interface {
	Refresh(ctx context.Context, platform Platform, accessToken, refreshToken string) (*RefreshedToken, error)
}
