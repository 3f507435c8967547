package facebook

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	postdomain "github.com/getmarketingos/marketingos/internal/post/domain"
	"github.com/getmarketingos/marketingos/internal/publisher/domain"
	socialaccountdomain "github.com/getmarketingos/marketingos/internal/socialaccount/domain"
)

func testCreds() socialaccountdomain.Credentials {
	return socialaccountdomain.Credentials{
		Platform:    socialaccountdomain.PlatformFacebook,
		AccessToken: "token-abc",
		FBPageID:    "page-1",
	}
}

func TestPublishTextPostGoesToFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/page-1/feed" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.PostFormValue("message") == "" {
			t.Fatalf("expected message")
		}
		w.Write([]byte(`{"id":"page-1_777"}`))
	}))
	defer server.Close()

	publisher := New(WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	ref, err := publisher.Publish(context.Background(), testCreds(), postdomain.MarketingPost{
		Platform: "facebook",
		Content:  "We are open late on Fridays now.",
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if ref.ExternalID != "page-1_777" {
		t.Fatalf("external id %q", ref.ExternalID)
	}
}

func TestPublishImagePostGoesToPhotos(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/page-1/photos" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.PostFormValue("url") != "https://images.example/shop.jpg" {
			t.Fatalf("unexpected url %q", r.PostFormValue("url"))
		}
		// Photo uploads return post_id alongside the photo id.
		w.Write([]byte(`{"id":"photo-5","post_id":"page-1_888"}`))
	}))
	defer server.Close()

	publisher := New(WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	ref, err := publisher.Publish(context.Background(), testCreds(), postdomain.MarketingPost{
		Platform:  "facebook",
		Content:   "Look at the new space.",
		MediaURLs: []string{"https://images.example/shop.jpg"},
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if ref.ExternalID != "page-1_888" {
		t.Fatalf("external id %q, want post_id to win", ref.ExternalID)
	}
}

func TestPublishMissingPageID(t *testing.T) {
	creds := testCreds()
	creds.FBPageID = ""

	_, err := New().Publish(context.Background(), creds, postdomain.MarketingPost{Content: "hi"})
	var providerErr *domain.ProviderError
	if !errors.As(err, &providerErr) {
		t.Fatalf("expected provider error, got %v", err)
	}
}
