package publisher

import (
	"github.com/getmarketingos/marketingos/internal/publisher/adapters"
	"github.com/getmarketingos/marketingos/internal/publisher/adapters/facebook"
	"github.com/getmarketingos/marketingos/internal/publisher/adapters/instagram"
	"github.com/getmarketingos/marketingos/internal/publisher/adapters/tiktok"
	"go.uber.org/fx"
)

var Module = fx.Module("publisher",
	fx.Provide(NewRegistry),
)

func NewRegistry() *adapters.Registry {
	return adapters.NewRegistry(
		instagram.New(),
		facebook.New(),
		tiktok.New(),
	)
}
