package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/ratecard/internal/clock"
	"github.com/smallbiznis/ratecard/internal/config"
	"github.com/smallbiznis/ratecard/internal/migration"
	"github.com/smallbiznis/ratecard/internal/observability"
	"github.com/smallbiznis/ratecard/internal/server"
	"github.com/smallbiznis/ratecard/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		clock.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.NodeID)
}
