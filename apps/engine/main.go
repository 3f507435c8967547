package main

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/getmarketingos/marketingos/internal/clock"
	"github.com/getmarketingos/marketingos/internal/comment"
	"github.com/getmarketingos/marketingos/internal/config"
	"github.com/getmarketingos/marketingos/internal/content"
	"github.com/getmarketingos/marketingos/internal/cronlog"
	"github.com/getmarketingos/marketingos/internal/engine"
	"github.com/getmarketingos/marketingos/internal/media"
	"github.com/getmarketingos/marketingos/internal/observability"
	"github.com/getmarketingos/marketingos/internal/organization"
	"github.com/getmarketingos/marketingos/internal/post"
	"github.com/getmarketingos/marketingos/internal/publisher"
	"github.com/getmarketingos/marketingos/internal/ratelimit"
	"github.com/getmarketingos/marketingos/internal/seo"
	"github.com/getmarketingos/marketingos/internal/socialaccount"
	"github.com/getmarketingos/marketingos/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		// Domain services required by the engine
		organization.Module,
		socialaccount.Module,
		post.Module,
		publisher.Module,
		content.Module,
		media.Module,
		seo.Module,
		comment.Module,
		cronlog.Module,
		ratelimit.Module,
		engine.Module,

		// No server module!
		fx.Invoke(StartEngine),
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

func StartEngine(lc fx.Lifecycle, e *engine.Engine) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go e.RunForever(context.Background())
			return nil
		},
	})
}
