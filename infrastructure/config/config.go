package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Store drivers
const (
	StoreDriverDynamoDB = "dynamodb"
	StoreDriverMemory   = "memory"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string `yaml:"server_address"`
	Environment   string `yaml:"environment"`

	// AWS configuration
	AWSRegion        string `yaml:"aws_region"`
	DynamoDBTable    string `yaml:"dynamodb_table"`
	ItemIndexName    string `yaml:"item_index_name"`   // object_id index
	DynamoDBEndpoint string `yaml:"dynamodb_endpoint"` // local DynamoDB, empty for AWS
	StoreDriver      string `yaml:"store_driver"`
	EventBusName     string `yaml:"event_bus_name"`
	MetricsNamespace string `yaml:"metrics_namespace"`

	// Lambda configuration
	IsLambda           bool   `yaml:"is_lambda"`
	LambdaFunctionName string `yaml:"-"`

	// Logging
	LogLevel string `yaml:"log_level"`

	// Authentication
	JWTSecret          string   `yaml:"-"`
	JWTIssuer          string   `yaml:"jwt_issuer"`
	RateLimitPerMinute int      `yaml:"rate_limit_per_minute"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`

	// Feature flags
	EnableEvents         bool `yaml:"enable_events"`
	EnableMetrics        bool `yaml:"enable_metrics"`
	EnablePrometheus     bool `yaml:"enable_prometheus"`
	EnableTracing        bool `yaml:"enable_tracing"`
	EnableCORS           bool `yaml:"enable_cors"`
	EnableCircuitBreaker bool `yaml:"enable_circuit_breaker"`
}

// LoadConfig builds the configuration. The loading order, from lowest to
// highest priority, is:
//  1. Default values
//  2. The YAML file named by CONFIG_FILE, when set
//  3. Environment variables
func LoadConfig() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.loadEnvironmentVariables()
	if cfg.MetricsNamespace == "" {
		cfg.MetricsNamespace = fmt.Sprintf("Hard/%s", cfg.Environment)
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		ServerAddress:        ":8080",
		Environment:          "development",
		AWSRegion:            "us-east-1",
		DynamoDBTable:        "hard",
		ItemIndexName:        "ItemSearch",
		StoreDriver:          StoreDriverDynamoDB,
		EventBusName:         "hard-events",
		LogLevel:             "info",
		CORSAllowedOrigins:   []string{"http://localhost:3000"},
		EnableCORS:           true,
		EnableCircuitBreaker: true,
	}
}

// loadFile overlays the keys present in a YAML file. Secrets are never read
// from files.
func (c *Config) loadFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// loadEnvironmentVariables overlays environment variables on the configuration
func (c *Config) loadEnvironmentVariables() {
	c.ServerAddress = getEnv("SERVER_ADDRESS", c.ServerAddress)
	c.Environment = getEnv("ENVIRONMENT", c.Environment)
	c.AWSRegion = getEnv("AWS_REGION", c.AWSRegion)
	c.DynamoDBTable = getEnv("DYNAMO_TABLE_NAME", getEnv("TABLE_NAME", c.DynamoDBTable))
	c.ItemIndexName = getEnv("ITEM_INDEX_NAME", c.ItemIndexName)
	c.DynamoDBEndpoint = getEnv("DYNAMODB_ENDPOINT", c.DynamoDBEndpoint)
	c.StoreDriver = strings.ToLower(getEnv("STORE_DRIVER", c.StoreDriver))
	c.EventBusName = getEnv("EVENT_BUS_NAME", c.EventBusName)
	c.MetricsNamespace = getEnv("METRICS_NAMESPACE", c.MetricsNamespace)

	// Lambda configuration
	c.LambdaFunctionName = getEnv("AWS_LAMBDA_FUNCTION_NAME", "")
	c.IsLambda = getEnvBool("IS_LAMBDA", c.IsLambda || c.LambdaFunctionName != "")

	// Authentication
	c.JWTSecret = getEnv("JWT_SECRET", "")
	c.JWTIssuer = getEnv("JWT_ISSUER", c.JWTIssuer)
	c.RateLimitPerMinute = getEnvInt("RATE_LIMIT_PER_MINUTE", c.RateLimitPerMinute)
	c.CORSAllowedOrigins = getEnvList("CORS_ALLOWED_ORIGINS", c.CORSAllowedOrigins)

	// Logging and features
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.EnableEvents = getEnvBool("ENABLE_EVENTS", c.EnableEvents)
	c.EnableMetrics = getEnvBool("ENABLE_METRICS", c.EnableMetrics)
	c.EnablePrometheus = getEnvBool("ENABLE_PROMETHEUS", c.EnablePrometheus)
	c.EnableTracing = getEnvBool("ENABLE_TRACING", c.EnableTracing)
	c.EnableCORS = getEnvBool("ENABLE_CORS", c.EnableCORS)
	c.EnableCircuitBreaker = getEnvBool("ENABLE_CIRCUIT_BREAKER", c.EnableCircuitBreaker)
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreDriverDynamoDB:
		if c.DynamoDBTable == "" {
			return fmt.Errorf("DYNAMO_TABLE_NAME is required")
		}
		if c.ItemIndexName == "" {
			return fmt.Errorf("ITEM_INDEX_NAME is required")
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	if c.EnableEvents && c.EventBusName == "" {
		return fmt.Errorf("EVENT_BUS_NAME is required when events are enabled")
	}

	if c.IsProduction() {
		if !c.IsLambda && c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		if c.StoreDriver == StoreDriverMemory {
			return fmt.Errorf("the memory store cannot be used in production")
		}
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowedOrigins returns the CORS origins, or nil when CORS is disabled.
func (c *Config) AllowedOrigins() []string {
	if !c.EnableCORS {
		return nil
	}
	return c.CORSAllowedOrigins
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvList splits a comma separated environment variable
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
