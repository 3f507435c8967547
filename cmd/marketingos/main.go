package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/getmarketingos/marketingos/internal/clock"
	"github.com/getmarketingos/marketingos/internal/migration"
	"github.com/getmarketingos/marketingos/internal/observability"
	"github.com/getmarketingos/marketingos/internal/server"
	"github.com/getmarketingos/marketingos/pkg/db"
	"go.uber.org/fx"
)

// Single-binary deployment: migrations, seed and the full HTTP surface.
// Engine runs are triggered through the /api/cron routes.
func main() {
	app := fx.New(
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
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
