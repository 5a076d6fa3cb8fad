package di

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hard-backend/infrastructure/config"
	"hard-backend/infrastructure/messaging/eventbridge"
	"hard-backend/infrastructure/persistence/dynamodb"
	"hard-backend/infrastructure/persistence/memory"
	"hard-backend/infrastructure/persistence/resilience"
)

func TestInitializeContainer_MemoryDriver(t *testing.T) {
	t.Setenv("AWS_REGION", "us-east-1")
	cfg := &config.Config{
		Environment: "test",
		AWSRegion:   "us-east-1",
		StoreDriver: config.StoreDriverMemory,
		LogLevel:    "error",
		JWTSecret:   "secret",
	}

	container, err := InitializeContainer(context.Background(), cfg)

	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, container.Store)
	assert.Equal(t, eventbridge.NoopPublisher{}, container.Events)
	assert.Nil(t, container.Metrics)
	assert.Nil(t, container.Prometheus)
	assert.Nil(t, container.Tracer)
	assert.NotNil(t, container.Services.Relations)
	assert.NotNil(t, container.Router.Setup())
}

func TestProvideStore_DynamoDBDriver(t *testing.T) {
	cfg := &config.Config{
		StoreDriver:   config.StoreDriverDynamoDB,
		DynamoDBTable: "hard",
		ItemIndexName: "ItemSearch",
	}

	store := ProvideStore(nil, cfg, zap.NewNop())

	assert.IsType(t, &dynamodb.Table{}, store)
}

func TestProvideStore_CircuitBreaker(t *testing.T) {
	cfg := &config.Config{
		StoreDriver:          config.StoreDriverDynamoDB,
		DynamoDBTable:        "hard",
		ItemIndexName:        "ItemSearch",
		EnableCircuitBreaker: true,
	}

	store := ProvideStore(nil, cfg, zap.NewNop())

	assert.IsType(t, &resilience.BreakerStore{}, store)
}

func TestProvidePrometheus(t *testing.T) {
	assert.Nil(t, ProvidePrometheus(&config.Config{}))
	assert.NotNil(t, ProvidePrometheus(&config.Config{EnablePrometheus: true}))
}

func TestProvideAuthOptions(t *testing.T) {
	opts, err := ProvideAuthOptions(&config.Config{IsLambda: true, RateLimitPerMinute: 10})
	require.NoError(t, err)
	assert.True(t, opts.TrustGateway)
	assert.Nil(t, opts.Validator)
	assert.NotNil(t, opts.Limiter)

	opts, err = ProvideAuthOptions(&config.Config{JWTSecret: "secret"})
	require.NoError(t, err)
	assert.False(t, opts.TrustGateway)
	assert.NotNil(t, opts.Validator)
	assert.Nil(t, opts.Limiter)
}

func TestProvideLogger_RejectsUnknownLevel(t *testing.T) {
	_, err := ProvideLogger(&config.Config{LogLevel: "loud"})

	assert.Error(t, err)
}
