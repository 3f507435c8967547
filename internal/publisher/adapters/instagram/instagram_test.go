package instagram

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	postdomain "github.com/getmarketingos/marketingos/internal/post/domain"
	"github.com/getmarketingos/marketingos/internal/publisher/domain"
	socialaccountdomain "github.com/getmarketingos/marketingos/internal/socialaccount/domain"
)

func testCreds() socialaccountdomain.Credentials {
	return socialaccountdomain.Credentials{
		Platform:     socialaccountdomain.PlatformInstagram,
		AccessToken:  "token-abc",
		IGBusinessID: "17890",
	}
}

func testPost() postdomain.MarketingPost {
	return postdomain.MarketingPost{
		Platform:  "instagram",
		Content:   "New seasonal menu is live.",
		Hashtags:  []string{"#coffee"},
		MediaURLs: []string{"https://images.example/latte.jpg"},
	}
}

func TestPublishRunsTwoPhaseFlow(t *testing.T) {
	var calls []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		calls = append(calls, r.URL.Path)

		switch r.URL.Path {
		case "/17890/media":
			if r.PostFormValue("image_url") != "https://images.example/latte.jpg" {
				t.Fatalf("unexpected image_url %q", r.PostFormValue("image_url"))
			}
			if !strings.Contains(r.PostFormValue("caption"), "#coffee") {
				t.Fatalf("caption missing hashtags: %q", r.PostFormValue("caption"))
			}
			if r.PostFormValue("access_token") != "token-abc" {
				t.Fatalf("unexpected access_token")
			}
			w.Write([]byte(`{"id":"container-1"}`))
		case "/17890/media_publish":
			if r.PostFormValue("creation_id") != "container-1" {
				t.Fatalf("unexpected creation_id %q", r.PostFormValue("creation_id"))
			}
			w.Write([]byte(`{"id":"media-9"}`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	publisher := New(WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	ref, err := publisher.Publish(context.Background(), testCreds(), testPost())
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if ref.ExternalID != "media-9" {
		t.Fatalf("external id %q, want media-9", ref.ExternalID)
	}
	if ref.URL != "https://www.instagram.com/p/media-9" {
		t.Fatalf("url %q", ref.URL)
	}
	if len(calls) != 2 || calls[0] != "/17890/media" || calls[1] != "/17890/media_publish" {
		t.Fatalf("call order %v, want media then media_publish", calls)
	}
}

func TestPublishRequiresImage(t *testing.T) {
	publisher := New()
	post := testPost()
	post.MediaURLs = nil

	_, err := publisher.Publish(context.Background(), testCreds(), post)
	if !errors.Is(err, ErrImageRequired) {
		t.Fatalf("expected ErrImageRequired, got %v", err)
	}
	if err.Error() != "Instagram requiere una imagen" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestPublishExpiredTokenMapsToTokenExpired(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"Error validating access token","type":"OAuthException","code":190}}`))
	}))
	defer server.Close()

	publisher := New(WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	_, err := publisher.Publish(context.Background(), testCreds(), testPost())
	if !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected token expired, got %v", err)
	}
}

func TestPublishThrottlingIsRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"Application request limit reached","code":4}}`))
	}))
	defer server.Close()

	publisher := New(WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	_, err := publisher.Publish(context.Background(), testCreds(), testPost())
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsRetryable(err) {
		t.Fatalf("expected retryable error, got %v", err)
	}
}

func TestPublishMissingBusinessID(t *testing.T) {
	creds := testCreds()
	creds.IGBusinessID = ""

	_, err := New().Publish(context.Background(), creds, testPost())
	var providerErr *domain.ProviderError
	if !errors.As(err, &providerErr) {
		t.Fatalf("expected provider error, got %v", err)
	}
}
