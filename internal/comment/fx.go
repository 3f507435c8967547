package comment

import (
	"github.com/getmarketingos/marketingos/internal/comment/domain"
	"github.com/getmarketingos/marketingos/internal/comment/replysender"
	"github.com/getmarketingos/marketingos/internal/comment/repository"
	"github.com/getmarketingos/marketingos/internal/comment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("comment.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(provideReplySender),
	fx.Provide(service.NewService),
)

func provideReplySender() domain.ReplySender {
	return replysender.New()
}
