package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/kasirhq/kasira/internal/clock"
	"github.com/kasirhq/kasira/internal/config"
	"github.com/kasirhq/kasira/internal/migration"
	"github.com/kasirhq/kasira/internal/observability"
	"github.com/kasirhq/kasira/internal/server"
	"github.com/kasirhq/kasira/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
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
