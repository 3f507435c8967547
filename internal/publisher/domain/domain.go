// Package domain defines the publishing contract shared by platform adapters.
package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	postdomain "github.com/getmarketingos/marketingos/internal/post/domain"
	socialaccountdomain "github.com/getmarketingos/marketingos/internal/socialaccount/domain"
)

var (
	ErrUnsupportedPlatform = errors.New("unsupported_platform")
	ErrTokenExpired        = errors.New("token_expired")
	ErrNoActiveAccount     = errors.New("no_active_account")
)

// PublishedRef is the external identity of a successfully published post.
type PublishedRef struct {
	ExternalID string
	URL        string
	// Pending marks async flows (TikTok inbox upload) where the platform
	// finishes the publish after this call returns.
	Pending bool
}

// Publisher sends one post to one platform. Adapters are stateless
// functions of (credentials, content).
type Publisher interface {
	Platform() string
	Publish(ctx context.Context, creds socialaccountdomain.Credentials, post postdomain.MarketingPost) (*PublishedRef, error)
}

// ProviderError is a decoded platform API failure.
type ProviderError struct {
	Platform  string
	Code      int
	Subcode   int
	Message   string
	Retryable bool
}

func (e *ProviderError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s: %s (code %d)", e.Platform, e.Message, e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Platform, e.Message)
}

// IsRetryable reports whether the publish failure is worth retrying later.
func IsRetryable(err error) bool {
	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.Retryable
	}
	return false
}

// BuildCaption joins post content and hashtags the way every platform
// renders them: content, blank line, space-separated tags.
func BuildCaption(post postdomain.MarketingPost) string {
	caption := post.Content
	if len(post.Hashtags) > 0 {
		caption += "\n\n" + strings.Join(post.Hashtags, " ")
	}
	return caption
}
