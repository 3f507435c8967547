package seo

import (
	"github.com/getmarketingos/marketingos/internal/config"
	"github.com/getmarketingos/marketingos/internal/seo/domain"
	"github.com/getmarketingos/marketingos/internal/seo/pagespeed"
	"github.com/getmarketingos/marketingos/internal/seo/repository"
	"github.com/getmarketingos/marketingos/internal/seo/service"
	"go.uber.org/fx"
)

var Module = fx.Module("seo.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(provideAnalyzer),
	fx.Provide(service.NewService),
)

func provideAnalyzer(cfg config.Config) domain.Analyzer {
	return pagespeed.New(cfg.PageSpeedAPIKey)
}
