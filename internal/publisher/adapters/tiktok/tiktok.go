// Package tiktok publishes videos through the inbox upload flow.
package tiktok

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	postdomain "github.com/getmarketingos/marketingos/internal/post/domain"
	"github.com/getmarketingos/marketingos/internal/publisher/domain"
	socialaccountdomain "github.com/getmarketingos/marketingos/internal/socialaccount/domain"
)

const defaultBaseURL = "https://open.tiktokapis.com/v2"

type Publisher struct {
	httpClient *http.Client
	baseURL    string
}

type Option func(*Publisher)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Publisher) { p.httpClient = client }
}

// WithBaseURL overrides the TikTok API base URL.
func WithBaseURL(base string) Option {
	return func(p *Publisher) { p.baseURL = strings.TrimRight(base, "/") }
}

func New(opts ...Option) *Publisher {
	p := &Publisher{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    defaultBaseURL,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Publisher) Platform() string { return "tiktok" }

// Publish initiates a PULL_FROM_URL inbox upload. TikTok finishes the
// publish asynchronously, so the ref comes back pending with no final URL.
func (p *Publisher) Publish(ctx context.Context, creds socialaccountdomain.Credentials, post postdomain.MarketingPost) (*domain.PublishedRef, error) {
	videoURL := post.FirstImageURL()
	if strings.TrimSpace(videoURL) == "" {
		return nil, &domain.ProviderError{Platform: "tiktok", Message: "tiktok requires a video url"}
	}

	payload := map[string]any{
		"source_info": map[string]any{
			"source":    "PULL_FROM_URL",
			"video_url": videoURL,
		},
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	endpoint := p.baseURL + "/post/publish/inbox/video/init/"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+creds.AccessToken)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, domain.ErrTokenExpired
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &domain.ProviderError{
			Platform:  "tiktok",
			Message:   strings.TrimSpace(string(body)),
			Retryable: resp.StatusCode >= 500,
		}
	}

	var decoded struct {
		Data struct {
			PublishID string `json:"publish_id"`
		} `json:"data"`
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, &domain.ProviderError{Platform: "tiktok", Message: "invalid inbox init response"}
	}
	if decoded.Error.Code != "" && decoded.Error.Code != "ok" {
		return nil, &domain.ProviderError{Platform: "tiktok", Message: decoded.Error.Message}
	}
	if decoded.Data.PublishID == "" {
		return nil, &domain.ProviderError{Platform: "tiktok", Message: "inbox init response missing publish_id"}
	}

	return &domain.PublishedRef{
		ExternalID: decoded.Data.PublishID,
		Pending:    true,
	}, nil
}

var _ domain.Publisher = (*Publisher)(nil)
