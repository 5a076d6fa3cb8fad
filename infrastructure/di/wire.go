//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"hard-backend/application/services"
	"hard-backend/infrastructure/config"
	"hard-backend/interfaces/http/rest"

	"github.com/google/wire"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideStore,
	ProvideEventPublisher,
	ProvideMetrics,
	ProvidePrometheus,
	ProvideTracer,
	ProvideWorkoutService,
	ProvideExerciseService,
	ProvideSetService,
	ProvideTagService,
	ProvideExerciseJoinService,
	ProvideTagJoinService,
	ProvideTemplateService,
	services.NewRelations,
	wire.Struct(new(rest.Services), "*"),
	ProvideErrorHandler,
	ProvideAuthOptions,
	ProvideRouterOptions,
	rest.NewRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
