package config

import (
	"fmt"
	"os"
	"strconv"
)

// Store drivers selectable through STORE_DRIVER.
const (
	StoreDriverMemory   = "memory"
	StoreDriverSQLite   = "sqlite"
	StoreDriverDynamoDB = "dynamodb"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// Document store configuration
	StoreDriver string
	SQLitePath  string

	// AWS configuration (dynamodb driver)
	AWSRegion     string
	DynamoDBTable string

	// Export configuration
	ExportDir          string
	ExportCleanupHours int
	ExportMaxAgeHours  int

	// Logging
	LogLevel string

	// Feature flags
	EnableCORS bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8081"),
		Environment:   getEnv("ENVIRONMENT", "development"),

		StoreDriver: getEnv("STORE_DRIVER", StoreDriverSQLite),
		SQLitePath:  getEnv("SQLITE_PATH", "sheethub.db"),

		AWSRegion:     getEnv("AWS_REGION", "us-west-2"),
		DynamoDBTable: getEnv("DYNAMODB_TABLE", "sheethub-sessions"),

		ExportDir:          getEnv("EXPORT_DIR", "exports"),
		ExportCleanupHours: getEnvInt("EXPORT_CLEANUP_HOURS", 12),
		ExportMaxAgeHours:  getEnvInt("EXPORT_MAX_AGE_HOURS", 24),

		LogLevel:   getEnv("LOG_LEVEL", "info"),
		EnableCORS: getEnvBool("ENABLE_CORS", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreDriverMemory, StoreDriverSQLite, StoreDriverDynamoDB:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	if c.StoreDriver == StoreDriverSQLite && c.SQLitePath == "" {
		return fmt.Errorf("SQLITE_PATH is required with the sqlite driver")
	}
	if c.StoreDriver == StoreDriverDynamoDB && c.DynamoDBTable == "" {
		return fmt.Errorf("DYNAMODB_TABLE is required with the dynamodb driver")
	}
	if c.ExportCleanupHours <= 0 || c.ExportMaxAgeHours <= 0 {
		return fmt.Errorf("export cleanup intervals must be positive")
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
