package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/getmarketingos/marketingos/internal/publisher/domain"
)

// GraphBaseURL is the Meta Graph API root used by the instagram and
// facebook adapters.
const GraphBaseURL = "https://graph.facebook.com/v21.0"

type graphErrorPayload struct {
	Error struct {
		Message      string `json:"message"`
		Type         string `json:"type"`
		Code         int    `json:"code"`
		ErrorSubcode int    `json:"error_subcode"`
	} `json:"error"`
}

// PostGraphForm sends a form-encoded POST to a Graph endpoint and returns
// the raw body, decoding Graph error payloads into typed errors.
func PostGraphForm(ctx context.Context, client *http.Client, platform, endpoint string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, DecodeGraphError(platform, resp.StatusCode, body)
	}
	return body, nil
}

// DecodeGraphError maps a Graph API error payload to a typed error.
func DecodeGraphError(platform string, status int, body []byte) error {
	var payload graphErrorPayload
	if err := json.Unmarshal(body, &payload); err != nil || payload.Error.Message == "" {
		return &domain.ProviderError{
			Platform:  platform,
			Message:   fmt.Sprintf("unexpected status %d", status),
			Retryable: status >= 500,
		}
	}

	// OAuth code 190: the access token is invalid or expired.
	if payload.Error.Code == 190 {
		return fmt.Errorf("%w: %s", domain.ErrTokenExpired, payload.Error.Message)
	}

	return &domain.ProviderError{
		Platform:  platform,
		Code:      payload.Error.Code,
		Subcode:   payload.Error.ErrorSubcode,
		Message:   payload.Error.Message,
		Retryable: graphCodeRetryable(payload.Error.Code),
	}
}

// Graph transient classes: API unknown (1), service (2), throttling (4,
// 17, 32, 613).
func graphCodeRetryable(code int) bool {
	switch code {
	case 1, 2, 4, 17, 32, 613:
		return true
	default:
		return false
	}
}
