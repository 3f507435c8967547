package socialaccount

import (
	"github.com/getmarketingos/marketingos/internal/clock"
	"github.com/getmarketingos/marketingos/internal/config"
	"github.com/getmarketingos/marketingos/internal/socialaccount/domain"
	"github.com/getmarketingos/marketingos/internal/socialaccount/refresher"
	"github.com/getmarketingos/marketingos/internal/socialaccount/repository"
	"github.com/getmarketingos/marketingos/internal/socialaccount/service"
	"github.com/getmarketingos/marketingos/internal/socialaccount/token"
	"go.uber.org/fx"
)

var Module = fx.Module("socialaccount.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(provideCodec),
	fx.Provide(provideRefresher),
	fx.Provide(service.NewService),
)

func provideCodec(cfg config.Config) (*token.Codec, error) {
	return token.NewCodec(cfg.TokenEncryptionSecret)
}

func provideRefresher(cfg config.Config, clk clock.Clock) domain.TokenRefresher {
	return refresher.New(cfg, clk)
}
