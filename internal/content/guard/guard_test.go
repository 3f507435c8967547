package guard

import (
	"errors"
	"strings"
	"testing"

	contentdomain "github.com/getmarketingos/marketingos/internal/content/domain"
)

func TestEnsureContentPublishable(t *testing.T) {
	tests := []struct {
		name    string
		content contentdomain.GeneratedContent
		wantErr error
	}{
		{
			name: "valid draft",
			content: contentdomain.GeneratedContent{
				Content:  "Come try the new roast.",
				Hashtags: []string{"#coffee", "#local"},
			},
		},
		{
			name:    "empty content",
			content: contentdomain.GeneratedContent{Content: "   "},
			wantErr: ErrEmptyContent,
		},
		{
			name: "content over platform cap",
			content: contentdomain.GeneratedContent{
				Content: strings.Repeat("a", 2201),
			},
			wantErr: ErrContentTooLong,
		},
		{
			name: "too many hashtags",
			content: contentdomain.GeneratedContent{
				Content:  "ok",
				Hashtags: make([]string, 31),
			},
			wantErr: ErrTooManyHashtags,
		},
		{
			name: "hashtag with whitespace",
			content: contentdomain.GeneratedContent{
				Content:  "ok",
				Hashtags: []string{"#two words"},
			},
			wantErr: ErrInvalidHashtag,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// The hashtag-count case needs non-empty tags to reach the cap check.
			for i := range tt.content.Hashtags {
				if tt.content.Hashtags[i] == "" {
					tt.content.Hashtags[i] = "#tag"
				}
			}
			err := EnsureContentPublishable(tt.content)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}
