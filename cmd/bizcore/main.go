package main

import (
	"github.com/Cachi0001/bizcore/internal/catalog"
	"github.com/Cachi0001/bizcore/internal/clock"
	"github.com/Cachi0001/bizcore/internal/config"
	"github.com/Cachi0001/bizcore/internal/directory"
	"github.com/Cachi0001/bizcore/internal/gateway"
	"github.com/Cachi0001/bizcore/internal/history"
	"github.com/Cachi0001/bizcore/internal/logger"
	"github.com/Cachi0001/bizcore/internal/ltv"
	"github.com/Cachi0001/bizcore/internal/observability"
	"github.com/Cachi0001/bizcore/internal/sale"
	"github.com/Cachi0001/bizcore/internal/server"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		observability.Module,
		clock.Module,
		fx.Provide(RegisterSnowflake),

		// Upstream access and local snapshot store
		gateway.Module,
		history.Module,

		// Functional domains
		catalog.Module,
		directory.Module,
		sale.Module,
		ltv.Module,

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
