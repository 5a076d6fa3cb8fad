package di

import (
	"context"

	"hard-backend/application/ports"
	"hard-backend/application/services"
	"hard-backend/domain/core/entities"
	"hard-backend/infrastructure/config"
	"hard-backend/infrastructure/messaging/eventbridge"
	"hard-backend/infrastructure/persistence/dynamodb"
	"hard-backend/infrastructure/persistence/memory"
	"hard-backend/infrastructure/persistence/resilience"
	"hard-backend/interfaces/http/rest"
	"hard-backend/interfaces/http/rest/middleware"
	"hard-backend/pkg/auth"
	pkgerrors "hard-backend/pkg/errors"
	"hard-backend/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-xray-sdk-go/instrumentation/awsv2"
	"go.uber.org/zap"
)

const (
	serviceName         = "hard-backend"
	prometheusNamespace = "hard"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	zapCfg.Level = level

	return zapCfg.Build(zap.Fields(zap.String("service", serviceName)))
}

// ProvideAWSConfig creates AWS configuration. SDK calls are attempted once;
// failures surface to the caller instead of being retried.
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
		awsconfig.WithRetryer(func() aws.Retryer {
			return retry.AddWithMaxAttempts(retry.NewStandard(), 1)
		}),
	)
	if err != nil {
		return aws.Config{}, err
	}

	if cfg.EnableTracing {
		awsv2.AWSV2Instrumentor(&awsCfg.APIOptions)
	}
	return awsCfg, nil
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config, cfg *config.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg, func(o *awsdynamodb.Options) {
		if cfg.DynamoDBEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoDBEndpoint)
		}
	})
}

// ProvideStore selects the table implementation for the configured driver.
// The DynamoDB table sits behind a circuit breaker unless it is disabled.
func ProvideStore(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.Store {
	if cfg.StoreDriver == config.StoreDriverMemory {
		logger.Warn("Using in-memory store; data is lost on restart")
		return memory.NewStore(logger)
	}

	table := dynamodb.NewTable(client, cfg.DynamoDBTable, cfg.ItemIndexName, logger)
	if !cfg.EnableCircuitBreaker {
		return table
	}
	return resilience.NewBreakerStore(table, resilience.DefaultBreakerConfig(cfg.DynamoDBTable), logger)
}

// ProvideEventPublisher creates the EventBridge publisher, or a no-op
// publisher when events are disabled.
func ProvideEventPublisher(awsCfg aws.Config, cfg *config.Config, logger *zap.Logger) ports.EventPublisher {
	if !cfg.EnableEvents {
		return eventbridge.NoopPublisher{}
	}
	return eventbridge.NewPublisher(awseventbridge.NewFromConfig(awsCfg), cfg.EventBusName, logger)
}

// ProvideMetrics creates metrics instance. Nil disables metrics.
func ProvideMetrics(awsCfg aws.Config, cfg *config.Config, logger *zap.Logger) *observability.Metrics {
	if !cfg.EnableMetrics {
		return nil
	}
	return observability.NewMetrics(cfg.MetricsNamespace, awscloudwatch.NewFromConfig(awsCfg), logger)
}

// ProvidePrometheus creates the Prometheus collector. Nil disables /metrics.
func ProvidePrometheus(cfg *config.Config) *observability.Collector {
	if !cfg.EnablePrometheus {
		return nil
	}
	return observability.NewCollector(prometheusNamespace)
}

// ProvideTracer creates the X-Ray tracer. Nil disables tracing.
func ProvideTracer(cfg *config.Config) *observability.Tracer {
	if !cfg.EnableTracing {
		return nil
	}
	return observability.NewTracer(serviceName)
}

func ProvideWorkoutService(store ports.Store, publisher ports.EventPublisher, logger *zap.Logger) *services.WorkoutService {
	return services.NewObjects[entities.Workout](store, publisher, logger)
}

func ProvideExerciseService(store ports.Store, publisher ports.EventPublisher, logger *zap.Logger) *services.ExerciseService {
	return services.NewObjects[entities.Exercise](store, publisher, logger)
}

func ProvideSetService(store ports.Store, publisher ports.EventPublisher, logger *zap.Logger) *services.SetService {
	return services.NewObjects[entities.Set](store, publisher, logger)
}

func ProvideTagService(store ports.Store, publisher ports.EventPublisher, logger *zap.Logger) *services.TagService {
	return services.NewObjects[entities.Tag](store, publisher, logger)
}

func ProvideExerciseJoinService(store ports.Store, publisher ports.EventPublisher, logger *zap.Logger) *services.ExerciseJoinService {
	return services.NewObjects[entities.ExerciseJoin](store, publisher, logger)
}

func ProvideTagJoinService(store ports.Store, publisher ports.EventPublisher, logger *zap.Logger) *services.TagJoinService {
	return services.NewObjects[entities.TagJoin](store, publisher, logger)
}

func ProvideTemplateService(store ports.Store, publisher ports.EventPublisher, logger *zap.Logger) *services.TemplateService {
	return services.NewObjects[entities.Template](store, publisher, logger)
}

// ProvideErrorHandler creates the HTTP error handler. Development builds
// include stack traces in responses.
func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *pkgerrors.ErrorHandler {
	return pkgerrors.NewErrorHandler(logger, cfg.IsDevelopment())
}

// ProvideAuthOptions configures request authentication. Behind API Gateway
// the authorizer has already validated the token and the forwarded identity
// is trusted; elsewhere bearer tokens are checked with JWT_SECRET.
func ProvideAuthOptions(cfg *config.Config) (middleware.AuthOptions, error) {
	opts := middleware.AuthOptions{
		TrustGateway: cfg.IsLambda,
		Limiter:      auth.NewUserRateLimiter(cfg.RateLimitPerMinute),
	}
	if cfg.JWTSecret != "" {
		validator, err := auth.NewJWTValidator(auth.JWTConfig{
			SecretKey: cfg.JWTSecret,
			Issuer:    cfg.JWTIssuer,
		})
		if err != nil {
			return middleware.AuthOptions{}, err
		}
		opts.Validator = validator
	}
	return opts, nil
}

// ProvideRouterOptions collects the optional middleware.
func ProvideRouterOptions(
	cfg *config.Config,
	authOpts middleware.AuthOptions,
	metrics *observability.Metrics,
	collector *observability.Collector,
	tracer *observability.Tracer,
) rest.Options {
	return rest.Options{
		Auth:        authOpts,
		CORSOrigins: cfg.AllowedOrigins(),
		Metrics:     metrics,
		Prometheus:  collector,
		Tracer:      tracer,
	}
}
