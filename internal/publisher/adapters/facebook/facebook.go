// Package facebook publishes page posts through the Graph API.
package facebook

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	postdomain "github.com/getmarketingos/marketingos/internal/post/domain"
	"github.com/getmarketingos/marketingos/internal/publisher/adapters"
	"github.com/getmarketingos/marketingos/internal/publisher/domain"
	socialaccountdomain "github.com/getmarketingos/marketingos/internal/socialaccount/domain"
)

type Publisher struct {
	httpClient *http.Client
	baseURL    string
}

type Option func(*Publisher)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Publisher) { p.httpClient = client }
}

// WithBaseURL overrides the Graph API base URL.
func WithBaseURL(base string) Option {
	return func(p *Publisher) { p.baseURL = strings.TrimRight(base, "/") }
}

func New(opts ...Option) *Publisher {
	p := &Publisher{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    adapters.GraphBaseURL,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Publisher) Platform() string { return "facebook" }

// Publish posts to the page feed, or to /photos when the post carries an
// image URL.
func (p *Publisher) Publish(ctx context.Context, creds socialaccountdomain.Credentials, post postdomain.MarketingPost) (*domain.PublishedRef, error) {
	if strings.TrimSpace(creds.FBPageID) == "" {
		return nil, &domain.ProviderError{Platform: "facebook", Message: "missing facebook page id"}
	}

	caption := domain.BuildCaption(post)
	form := url.Values{}
	form.Set("access_token", creds.AccessToken)

	var endpoint string
	if imageURL := post.FirstImageURL(); strings.TrimSpace(imageURL) != "" {
		endpoint = fmt.Sprintf("%s/%s/photos", p.baseURL, creds.FBPageID)
		form.Set("url", imageURL)
		form.Set("message", caption)
	} else {
		endpoint = fmt.Sprintf("%s/%s/feed", p.baseURL, creds.FBPageID)
		form.Set("message", caption)
	}

	body, err := adapters.PostGraphForm(ctx, p.httpClient, "facebook", endpoint, form)
	if err != nil {
		return nil, err
	}

	var payload struct {
		ID     string `json:"id"`
		PostID string `json:"post_id"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &domain.ProviderError{Platform: "facebook", Message: "invalid publish response"}
	}

	externalID := payload.PostID
	if externalID == "" {
		externalID = payload.ID
	}
	if externalID == "" {
		return nil, &domain.ProviderError{Platform: "facebook", Message: "publish response missing id"}
	}

	return &domain.PublishedRef{
		ExternalID: externalID,
		URL:        fmt.Sprintf("https://www.facebook.com/%s", externalID),
	}, nil
}

var _ domain.Publisher = (*Publisher)(nil)
