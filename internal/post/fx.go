package post

import (
	"github.com/getmarketingos/marketingos/internal/post/repository"
	"github.com/getmarketingos/marketingos/internal/post/service"
	"go.uber.org/fx"
)

var Module = fx.Module("post.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
