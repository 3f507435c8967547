package content

import (
	"github.com/getmarketingos/marketingos/internal/config"
	"github.com/getmarketingos/marketingos/internal/content/anthropic"
	"github.com/getmarketingos/marketingos/internal/content/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("content",
	fx.Provide(provideGenerator),
)

func provideGenerator(cfg config.Config) (domain.Generator, error) {
	return anthropic.New(cfg.AnthropicAPIKey)
}
