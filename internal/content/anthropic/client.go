// Package anthropic implements the content generator against the
// Anthropic messages API.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/getmarketingos/marketingos/internal/content/domain"
)

const (
	defaultBaseURL = "https://api.anthropic.com/v1"
	defaultModel   = "claude-sonnet-4-20250514"
	apiVersion     = "2023-06-01"
)

var ErrMissingAPIKey = errors.New("missing_anthropic_api_key")

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

type Option func(*Client)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) { c.httpClient = client }
}

// WithBaseURL overrides the API base URL.
func WithBaseURL(base string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(base, "/") }
}

// WithModel overrides the model name.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

func New(apiKey string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	c := &Client{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		model:      defaultModel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// GeneratePost asks for a draft post and decodes the JSON reply.
func (c *Client) GeneratePost(ctx context.Context, req domain.GenerateRequest) (*domain.GeneratedContent, error) {
	system := fmt.Sprintf(
		"You are the social media manager for %s, a business in the %s industry. Brand voice: %s. Tone: %s. Target audience: %s. Respond only with a JSON object with keys content, hashtags (array of strings starting with #) and image_idea.",
		req.Profile.BusinessName,
		req.Profile.Industry,
		req.Profile.BrandVoice,
		req.Profile.Tone,
		req.Profile.TargetAudience,
	)
	prompt := fmt.Sprintf("Write one %s post for %s.", req.ContentType, req.Platform)
	if len(req.Profile.Products) > 0 {
		names := make([]string, 0, len(req.Profile.Products))
		for _, product := range req.Profile.Products {
			names = append(names, product.Name)
		}
		prompt += " Products to highlight when relevant: " + strings.Join(names, ", ") + "."
	}

	text, err := c.complete(ctx, system, prompt, 1024)
	if err != nil {
		return nil, err
	}

	var generated domain.GeneratedContent
	if err := json.Unmarshal([]byte(extractJSON(text)), &generated); err != nil {
		return nil, fmt.Errorf("decode generated content: %w", err)
	}
	return &generated, nil
}

// GenerateReply asks for a short brand-voice answer to a comment.
func (c *Client) GenerateReply(ctx context.Context, req domain.ReplyRequest) (string, error) {
	system := fmt.Sprintf(
		"You are the social media manager for %s. Brand voice: %s. Tone: %s. Reply to customer comments in one or two short sentences. Respond with the reply text only.",
		req.Profile.BusinessName,
		req.Profile.BrandVoice,
		req.Profile.Tone,
	)
	prompt := fmt.Sprintf("A %s user named %q commented: %q", req.Platform, req.Author, req.CommentText)

	text, err := c.complete(ctx, system, prompt, 256)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (c *Client) complete(ctx context.Context, system, prompt string, maxTokens int) (string, error) {
	payload := map[string]any{
		"model":      c.model,
		"max_tokens": maxTokens,
		"system":     system,
		"messages": []map[string]any{
			{"role": "user", "content": prompt},
		},
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(encoded))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("anthropic api: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("anthropic api: decode response: %w", err)
	}
	for _, block := range decoded.Content {
		if block.Type == "text" && strings.TrimSpace(block.Text) != "" {
			return block.Text, nil
		}
	}
	return "", errors.New("anthropic api: empty completion")
}

// extractJSON strips markdown code fences models sometimes wrap around
// JSON replies.
func extractJSON(text string) string {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
			trimmed = trimmed[:idx]
		}
		return strings.TrimSpace(trimmed)
	}
	if start := strings.Index(trimmed, "{"); start >= 0 {
		if end := strings.LastIndex(trimmed, "}"); end > start {
			return trimmed[start : end+1]
		}
	}
	return trimmed
}

var _ domain.Generator = (*Client)(nil)
