package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/storeops/salescore/internal/catalog"
	"github.com/storeops/salescore/internal/clock"
	"github.com/storeops/salescore/internal/config"
	"github.com/storeops/salescore/internal/customer"
	"github.com/storeops/salescore/internal/employee"
	"github.com/storeops/salescore/internal/logger"
	"github.com/storeops/salescore/internal/migration"
	"github.com/storeops/salescore/internal/notification"
	"github.com/storeops/salescore/internal/observability/metrics"
	"github.com/storeops/salescore/internal/providers/pdf"
	"github.com/storeops/salescore/internal/report"
	"github.com/storeops/salescore/internal/sale"
	"github.com/storeops/salescore/internal/sequence"
	"github.com/storeops/salescore/internal/server"
	"github.com/storeops/salescore/internal/store"
	"github.com/storeops/salescore/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		clock.Module,
		db.Module,
		migration.Module,
		metrics.Module,
		notification.Module,
		pdf.Module,

		// Domain modules
		catalog.Module,
		sequence.Module,
		customer.Module,
		store.Module,
		employee.Module,
		sale.Module,
		report.Module,

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
