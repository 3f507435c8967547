package cronlog

import (
	"github.com/getmarketingos/marketingos/internal/cronlog/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("cronlog",
	fx.Provide(repository.NewRepository),
)
