// Package instagram publishes image posts through the Graph content
// publishing flow.
package instagram

import (
	"context"
	"encoding/json"
	"errors"
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

// ErrImageRequired matches the dashboard copy shown to tenants.
var ErrImageRequired = errors.New("Instagram requiere una imagen")

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

func (p *Publisher) Platform() string { return "instagram" }

// Publish runs the two-phase flow: create a media container, then publish
// it by creation id.
func (p *Publisher) Publish(ctx context.Context, creds socialaccountdomain.Credentials, post postdomain.MarketingPost) (*domain.PublishedRef, error) {
	imageURL := post.FirstImageURL()
	if strings.TrimSpace(imageURL) == "" {
		return nil, ErrImageRequired
	}
	if strings.TrimSpace(creds.IGBusinessID) == "" {
		return nil, &domain.ProviderError{Platform: "instagram", Message: "missing instagram business id"}
	}

	creationID, err := p.createContainer(ctx, creds, imageURL, domain.BuildCaption(post))
	if err != nil {
		return nil, err
	}

	mediaID, err := p.publishContainer(ctx, creds, creationID)
	if err != nil {
		return nil, err
	}

	return &domain.PublishedRef{
		ExternalID: mediaID,
		URL:        fmt.Sprintf("https://www.instagram.com/p/%s", mediaID),
	}, nil
}

func (p *Publisher) createContainer(ctx context.Context, creds socialaccountdomain.Credentials, imageURL, caption string) (string, error) {
	form := url.Values{}
	form.Set("image_url", imageURL)
	form.Set("caption", caption)
	form.Set("access_token", creds.AccessToken)

	endpoint := fmt.Sprintf("%s/%s/media", p.baseURL, creds.IGBusinessID)
	body, err := adapters.PostGraphForm(ctx, p.httpClient, "instagram", endpoint, form)
	if err != nil {
		return "", err
	}

	var payload struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", &domain.ProviderError{Platform: "instagram", Message: "invalid media container response"}
	}
	if payload.ID == "" {
		return "", &domain.ProviderError{Platform: "instagram", Message: "media container response missing id"}
	}
	return payload.ID, nil
}

func (p *Publisher) publishContainer(ctx context.Context, creds socialaccountdomain.Credentials, creationID string) (string, error) {
	form := url.Values{}
	form.Set("creation_id", creationID)
	form.Set("access_token", creds.AccessToken)

	endpoint := fmt.Sprintf("%s/%s/media_publish", p.baseURL, creds.IGBusinessID)
	body, err := adapters.PostGraphForm(ctx, p.httpClient, "instagram", endpoint, form)
	if err != nil {
		return "", err
	}

	var payload struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", &domain.ProviderError{Platform: "instagram", Message: "invalid media publish response"}
	}
	if payload.ID == "" {
		return "", &domain.ProviderError{Platform: "instagram", Message: "media publish response missing id"}
	}
	return payload.ID, nil
}

var _ domain.Publisher = (*Publisher)(nil)
