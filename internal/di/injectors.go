//go:build wireinject
// +build wireinject

package di

import (
	"eigenkey/internal"
	"eigenkey/internal/controllers"
	"eigenkey/internal/lifecycle"
	"eigenkey/internal/providers"
	"eigenkey/internal/services"
	"eigenkey/internal/structures"

	wire "github.com/google/wire"
)

var trackerSet = wire.NewSet(
	providers.NewMetricsProvider,
	providers.NewInstrumentedCacheProvider,
	lifecycle.NewKeySource,
	lifecycle.NewFileKeyStore,
	lifecycle.NewUsageLog,
	lifecycle.NewTracker,
	services.NewAccessService,
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		trackerSet,

		lifecycle.NewZstdCompressor,
		lifecycle.NewArchiver,
		lifecycle.NewScheduler,
		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}

func InitAccessService(cfg *structures.CliFlags) (services.AccessServiceInterface, func(), error) {

	wire.Build(
		providers.NewConfigProvider,
		provideClosingLogger,
		trackerSet,
	)

	return nil, nil, nil
}

func InitUsageHistory(cfg *structures.CliFlags) (*lifecycle.UsageHistory, func(), error) {

	wire.Build(
		providers.NewConfigProvider,
		provideClosingLogger,
		lifecycle.NewUsageLog,
		lifecycle.NewZstdCompressor,
		lifecycle.NewArchiver,
		lifecycle.NewUsageHistory,
	)

	return nil, nil, nil
}
