package guard

import (
	"errors"
	"strings"

	contentdomain "github.com/getmarketingos/marketingos/internal/content/domain"
)

var (
	ErrEmptyContent    = errors.New("empty_content")
	ErrContentTooLong  = errors.New("content_too_long")
	ErrTooManyHashtags = errors.New("too_many_hashtags")
	ErrInvalidHashtag  = errors.New("invalid_hashtag")
)

const (
	// Instagram caps captions at 2200 characters; the lowest common limit wins.
	maxContentLength = 2200
	maxHashtags      = 30
)

// EnsureContentPublishable validates a generated draft before it is
// persisted as a scheduled post.
func EnsureContentPublishable(generated contentdomain.GeneratedContent) error {
	content := strings.TrimSpace(generated.Content)
	if content == "" {
		return ErrEmptyContent
	}
	if len(content) > maxContentLength {
		return ErrContentTooLong
	}
	if len(generated.Hashtags) > maxHashtags {
		return ErrTooManyHashtags
	}
	for _, tag := range generated.Hashtags {
		if strings.TrimSpace(tag) == "" || strings.ContainsAny(tag, " \t\n") {
			return ErrInvalidHashtag
		}
	}
	return nil
}
