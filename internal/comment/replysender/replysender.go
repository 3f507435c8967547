// Package replysender posts comment replies through the Meta Graph API.
package replysender

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	commentdomain "github.com/getmarketingos/marketingos/internal/comment/domain"
	"github.com/getmarketingos/marketingos/internal/publisher/adapters"
	socialaccountdomain "github.com/getmarketingos/marketingos/internal/socialaccount/domain"
)

type Sender struct {
	httpClient *http.Client
	baseURL    string
}

type Option func(*Sender)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Sender) { s.httpClient = client }
}

// WithBaseURL overrides the Graph API base URL.
func WithBaseURL(base string) Option {
	return func(s *Sender) { s.baseURL = strings.TrimRight(base, "/") }
}

func New(opts ...Option) *Sender {
	s := &Sender{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    adapters.GraphBaseURL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ commentdomain.ReplySender = (*Sender)(nil)

// SendReply answers an external comment thread. Instagram and Facebook
// share the Graph comment endpoint; TikTok has no supported reply API.
func (s *Sender) SendReply(ctx context.Context, creds socialaccountdomain.Credentials, externalCommentID, message string) error {
	switch creds.Platform {
	case socialaccountdomain.PlatformInstagram, socialaccountdomain.PlatformFacebook:
	default:
		return commentdomain.ErrReplyNotSupported
	}

	form := url.Values{}
	form.Set("message", message)
	form.Set("access_token", creds.AccessToken)

	endpoint := s.baseURL + "/" + url.PathEscape(externalCommentID) + "/comments"
	body, err := adapters.PostGraphForm(ctx, s.httpClient, string(creds.Platform), endpoint, form)
	if err != nil {
		return err
	}

	var decoded struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return adapters.DecodeGraphError(string(creds.Platform), http.StatusOK, body)
	}
	if decoded.ID == "" {
		return adapters.DecodeGraphError(string(creds.Platform), http.StatusOK, body)
	}
	return nil
}
