// Package adapters routes posts to the platform publisher that owns them.
package adapters

import (
	"strings"

	"github.com/getmarketingos/marketingos/internal/publisher/domain"
)

type Registry struct {
	publishers map[string]domain.Publisher
}

func NewRegistry(publishers ...domain.Publisher) *Registry {
	registry := &Registry{publishers: map[string]domain.Publisher{}}
	for _, publisher := range publishers {
		if publisher == nil {
			continue
		}
		platform := strings.ToLower(strings.TrimSpace(publisher.Platform()))
		if platform == "" {
			continue
		}
		registry.publishers[platform] = publisher
	}
	return registry
}

func (r *Registry) PlatformExists(platform string) bool {
	if r == nil {
		return false
	}
	platform = strings.ToLower(strings.TrimSpace(platform))
	_, ok := r.publishers[platform]
	return ok
}

func (r *Registry) Resolve(platform string) (domain.Publisher, error) {
	if r == nil {
		return nil, domain.ErrUnsupportedPlatform
	}
	platform = strings.ToLower(strings.TrimSpace(platform))
	publisher, ok := r.publishers[platform]
	if !ok {
		return nil, domain.ErrUnsupportedPlatform
	}
	return publisher, nil
}
