package adapters

import (
	"context"
	"errors"
	"testing"

	postdomain "github.com/getmarketingos/marketingos/internal/post/domain"
	"github.com/getmarketingos/marketingos/internal/publisher/domain"
	socialaccountdomain "github.com/getmarketingos/marketingos/internal/socialaccount/domain"
)

type stubPublisher struct {
	platform string
}

func (s stubPublisher) Platform() string { return s.platform }

func (s stubPublisher) Publish(ctx context.Context, creds socialaccountdomain.Credentials, post postdomain.MarketingPost) (*domain.PublishedRef, error) {
	return &domain.PublishedRef{ExternalID: "ref"}, nil
}

func TestRegistryResolvesCaseInsensitive(t *testing.T) {
	registry := NewRegistry(stubPublisher{platform: "Instagram"}, nil, stubPublisher{platform: ""})

	publisher, err := registry.Resolve("INSTAGRAM")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if publisher.Platform() != "Instagram" {
		t.Fatalf("platform %q", publisher.Platform())
	}
	if !registry.PlatformExists("instagram") {
		t.Fatalf("expected instagram to exist")
	}
}

func TestRegistryUnknownPlatform(t *testing.T) {
	registry := NewRegistry(stubPublisher{platform: "facebook"})

	_, err := registry.Resolve("myspace")
	if !errors.Is(err, domain.ErrUnsupportedPlatform) {
		t.Fatalf("expected unsupported platform, got %v", err)
	}
	if registry.PlatformExists("myspace") {
		t.Fatalf("myspace must not exist")
	}
}
