package tiktok

import (
	"context"
	"encoding/json"
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
		Platform:     socialaccountdomain.PlatformTikTok,
		AccessToken:  "token-abc",
		TikTokOpenID: "open-1",
	}
}

func TestPublishInitiatesInboxUpload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/post/publish/inbox/video/init/" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token-abc" {
			t.Fatalf("authorization %q", got)
		}

		var payload struct {
			SourceInfo struct {
				Source   string `json:"source"`
				VideoURL string `json:"video_url"`
			} `json:"source_info"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if payload.SourceInfo.Source != "PULL_FROM_URL" {
			t.Fatalf("source %q", payload.SourceInfo.Source)
		}
		if payload.SourceInfo.VideoURL != "https://videos.example/clip.mp4" {
			t.Fatalf("video url %q", payload.SourceInfo.VideoURL)
		}

		w.Write([]byte(`{"data":{"publish_id":"pub-42"},"error":{"code":"ok"}}`))
	}))
	defer server.Close()

	publisher := New(WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	ref, err := publisher.Publish(context.Background(), testCreds(), postdomain.MarketingPost{
		Platform:  "tiktok",
		Content:   "Behind the counter.",
		MediaURLs: []string{"https://videos.example/clip.mp4"},
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if ref.ExternalID != "pub-42" {
		t.Fatalf("external id %q", ref.ExternalID)
	}
	if !ref.Pending {
		t.Fatalf("inbox uploads must come back pending")
	}
}

func TestPublishRequiresVideoURL(t *testing.T) {
	_, err := New().Publish(context.Background(), testCreds(), postdomain.MarketingPost{Content: "no video"})
	var providerErr *domain.ProviderError
	if !errors.As(err, &providerErr) {
		t.Fatalf("expected provider error, got %v", err)
	}
}

func TestPublishUnauthorizedMapsToTokenExpired(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	publisher := New(WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	_, err := publisher.Publish(context.Background(), testCreds(), postdomain.MarketingPost{
		MediaURLs: []string{"https://videos.example/clip.mp4"},
	})
	if !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected token expired, got %v", err)
	}
}

func TestPublishErrorCodeFromBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{},"error":{"code":"spam_risk_too_many_posts","message":"daily post cap reached"}}`))
	}))
	defer server.Close()

	publisher := New(WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	_, err := publisher.Publish(context.Background(), testCreds(), postdomain.MarketingPost{
		MediaURLs: []string{"https://videos.example/clip.mp4"},
	})
	var providerErr *domain.ProviderError
	if !errors.As(err, &providerErr) {
		t.Fatalf("expected provider error, got %v", err)
	}
	if providerErr.Message != "daily post cap reached" {
		t.Fatalf("message %q", providerErr.Message)
	}
}
