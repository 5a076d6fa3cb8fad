package di

import (
	"hard-backend/application/ports"
	"hard-backend/infrastructure/config"
	"hard-backend/interfaces/http/rest"
	"hard-backend/pkg/observability"

	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config     *config.Config
	Logger     *zap.Logger
	Store      ports.Store
	Events     ports.EventPublisher
	Metrics    *observability.Metrics
	Prometheus *observability.Collector
	Tracer     *observability.Tracer
	Services   rest.Services
	Router     *rest.Router
}
