package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/getmarketingos/marketingos/internal/clock"
	"github.com/getmarketingos/marketingos/internal/observability"
	"github.com/getmarketingos/marketingos/internal/server"
	"github.com/getmarketingos/marketingos/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		// server.Module wires config, every feature domain and the engine.
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
