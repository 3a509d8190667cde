package fx

import (
	"osrs-tracker/internal/config"
	"osrs-tracker/internal/database"
	"osrs-tracker/internal/hiscores"
	"osrs-tracker/internal/logger"
	"osrs-tracker/internal/repository"
	"osrs-tracker/internal/server"
	"osrs-tracker/internal/service"

	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	fx.Provide(repository.NewSnapshotRepository),
	// hiscores client
	fx.Provide(hiscores.NewClient),
	// svc
	fx.Provide(service.NewNeighborResolver),
	fx.Provide(service.NewRosterService),
	fx.Provide(service.NewCollector),
	// server
	fx.Provide(server.NewDashboardServer),
)
