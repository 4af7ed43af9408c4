//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/learnmate/internal/bootstrap"
	"github.com/yanqian/learnmate/internal/domain/roadmap"
	"github.com/yanqian/learnmate/internal/infra/config"
	httpiface "github.com/yanqian/learnmate/internal/interface/http"
	"github.com/yanqian/learnmate/pkg/logger"
	"github.com/yanqian/learnmate/pkg/metrics"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		metrics.New,
		provideCatalog,
		provideRoadmapConfig,
		provideEngine,
		providePostgresPool,
		provideRoadmapStore,
		provideJobRepository,
		provideValkeyClient,
		provideRoadmapCache,
		provideHandlerQueue,
		provideJobQueue,
		roadmap.NewService,
		httpiface.NewRoadmapHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
