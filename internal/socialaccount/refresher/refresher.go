// Package refresher implements provider token exchange flows.
package refresher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/getmarketingos/marketingos/internal/clock"
	"github.com/getmarketingos/marketingos/internal/config"
	"github.com/getmarketingos/marketingos/internal/socialaccount/domain"
)

const (
	defaultGraphBaseURL  = "https://graph.facebook.com/v21.0"
	defaultTikTokBaseURL = "https://open.tiktokapis.com/v2"
)

// Refresher exchanges tokens against the Meta Graph and TikTok open APIs.
type Refresher struct {
	httpClient    *http.Client
	clock         clock.Clock
	graphBaseURL  string
	tiktokBaseURL string

	metaAppID          string
	metaAppSecret      string
	tiktokClientKey    string
	tiktokClientSecret string
}

// Option overrides Refresher defaults.
type Option func(*Refresher)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Refresher) { r.httpClient = client }
}

// WithGraphBaseURL overrides the Graph API base URL.
func WithGraphBaseURL(base string) Option {
	return func(r *Refresher) { r.graphBaseURL = strings.TrimRight(base, "/") }
}

// WithTikTokBaseURL overrides the TikTok API base URL.
func WithTikTokBaseURL(base string) Option {
	return func(r *Refresher) { r.tiktokBaseURL = strings.TrimRight(base, "/") }
}

// New builds a Refresher from app credentials.
func New(cfg config.Config, clk clock.Clock, opts ...Option) *Refresher {
	r := &Refresher{
		httpClient:         &http.Client{Timeout: 30 * time.Second},
		clock:              clk,
		graphBaseURL:       defaultGraphBaseURL,
		tiktokBaseURL:      defaultTikTokBaseURL,
		metaAppID:          cfg.MetaAppID,
		metaAppSecret:      cfg.MetaAppSecret,
		tiktokClientKey:    cfg.TikTokClientKey,
		tiktokClientSecret: cfg.TikTokClientSecret,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Refresh exchanges the token for the given platform.
func (r *Refresher) Refresh(ctx context.Context, platform domain.Platform, accessToken, refreshToken string) (*domain.RefreshedToken, error) {
	switch platform {
	case domain.PlatformInstagram, domain.PlatformFacebook:
		return r.refreshMeta(ctx, accessToken)
	case domain.PlatformTikTok:
		return r.refreshTikTok(ctx, refreshToken)
	default:
		return nil, domain.ErrInvalidPlatform
	}
}

// refreshMeta performs the long-lived token exchange.
func (r *Refresher) refreshMeta(ctx context.Context, accessToken string) (*domain.RefreshedToken, error) {
	query := url.Values{}
	query.Set("grant_type", "fb_exchange_token")
	query.Set("client_id", r.metaAppID)
	query.Set("client_secret", r.metaAppSecret)
	query.Set("fb_exchange_token", accessToken)

	endpoint := r.graphBaseURL + "/oauth/access_token?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("meta token exchange failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("meta token exchange: decode response: %w", err)
	}
	if payload.AccessToken == "" {
		return nil, fmt.Errorf("meta token exchange: empty access token")
	}

	refreshed := &domain.RefreshedToken{AccessToken: payload.AccessToken}
	if payload.ExpiresIn > 0 {
		expires := r.clock.Now().Add(time.Duration(payload.ExpiresIn) * time.Second)
		refreshed.ExpiresAt = &expires
	}
	return refreshed, nil
}

func (r *Refresher) refreshTikTok(ctx context.Context, refreshToken string) (*domain.RefreshedToken, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, fmt.Errorf("tiktok token refresh: missing refresh token")
	}

	form := url.Values{}
	form.Set("client_key", r.tiktokClientKey)
	form.Set("client_secret", r.tiktokClientSecret)
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	endpoint := r.tiktokBaseURL + "/oauth/token/"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("tiktok token refresh failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("tiktok token refresh: decode response: %w", err)
	}
	if payload.AccessToken == "" {
		return nil, fmt.Errorf("tiktok token refresh: empty access token")
	}

	refreshed := &domain.RefreshedToken{
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
	}
	if payload.ExpiresIn > 0 {
		expires := r.clock.Now().Add(time.Duration(payload.ExpiresIn) * time.Second)
		refreshed.ExpiresAt = &expires
	}
	return refreshed, nil
}

var _ domain.TokenRefresher = (*Refresher)(nil)
