package organization

import (
	"github.com/getmarketingos/marketingos/internal/organization/repository"
	"github.com/getmarketingos/marketingos/internal/organization/service"
	"go.uber.org/fx"
)

var Module = fx.Module("organization.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
