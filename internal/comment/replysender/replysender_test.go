package replysender

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	commentdomain "github.com/getmarketingos/marketingos/internal/comment/domain"
	socialaccountdomain "github.com/getmarketingos/marketingos/internal/socialaccount/domain"
)

func TestSendReplyPostsToGraphCommentEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ig-comment-1/comments" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.PostFormValue("message") != "Thanks for asking!" {
			t.Fatalf("message %q", r.PostFormValue("message"))
		}
		if r.PostFormValue("access_token") != "token-abc" {
			t.Fatalf("access_token %q", r.PostFormValue("access_token"))
		}
		w.Write([]byte(`{"id":"reply-1"}`))
	}))
	defer server.Close()

	sender := New(WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	err := sender.SendReply(context.Background(), socialaccountdomain.Credentials{
		Platform:    socialaccountdomain.PlatformInstagram,
		AccessToken: "token-abc",
	}, "ig-comment-1", "Thanks for asking!")
	if err != nil {
		t.Fatalf("send reply: %v", err)
	}
}

func TestSendReplyTikTokUnsupported(t *testing.T) {
	sender := New()
	err := sender.SendReply(context.Background(), socialaccountdomain.Credentials{
		Platform:    socialaccountdomain.PlatformTikTok,
		AccessToken: "token-abc",
	}, "c-1", "hi")
	if !errors.Is(err, commentdomain.ErrReplyNotSupported) {
		t.Fatalf("expected ErrReplyNotSupported, got %v", err)
	}
}

func TestSendReplyMissingIDIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	sender := New(WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	err := sender.SendReply(context.Background(), socialaccountdomain.Credentials{
		Platform:    socialaccountdomain.PlatformFacebook,
		AccessToken: "token-abc",
	}, "c-1", "hi")
	if err == nil {
		t.Fatalf("expected error when response has no id")
	}
}
