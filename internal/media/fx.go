package media

import (
	"context"

	"github.com/getmarketingos/marketingos/internal/config"
	"github.com/getmarketingos/marketingos/internal/media/pexels"
	"go.uber.org/fx"
)

// ImageFinder resolves a stock image URL for a draft without one.
type ImageFinder interface {
	FindImage(ctx context.Context, query string) (string, error)
}

var Module = fx.Module("media",
	fx.Provide(provideImageFinder),
)

// provideImageFinder returns nil when no API key is configured; media
// enrichment is optional.
func provideImageFinder(cfg config.Config) ImageFinder {
	client, err := pexels.New(cfg.PexelsAPIKey)
	if err != nil {
		return nil
	}
	return client
}
