// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"os"
)

// Config holds every resource name and runtime knob the service needs.
type Config struct {
	// DynamoDB
	TableName     string
	CityIndexName string

	// EventBridge
	EventBusName string

	// Aurora Serverless (RDS Data API)
	AuroraClusterARN string
	AuroraSecretARN  string
	AuroraDatabase   string
	ReviewsTable     string

	Region        string
	Environment   string
	LogLevel      string
	ServerAddress string
}

// Load reads configuration from the environment, applying local-development
// defaults for everything except the Aurora ARNs, which have no sensible
// default.
func Load() Config {
	return Config{
		TableName:        getEnv("TABLE_NAME", "tablescout-dev"),
		CityIndexName:    getEnv("CITY_INDEX_NAME", "CityIndex"),
		EventBusName:     getEnv("EVENT_BUS_NAME", "tablescout-events"),
		AuroraClusterARN: os.Getenv("AURORA_CLUSTER_ARN"),
		AuroraSecretARN:  os.Getenv("AURORA_SECRET_ARN"),
		AuroraDatabase:   getEnv("AURORA_DATABASE", "tablescout"),
		ReviewsTable:     getEnv("REVIEWS_TABLE", "reviews"),
		Region:           getEnv("AWS_REGION", "us-east-1"),
		Environment:      getEnv("ENVIRONMENT", "development"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		ServerAddress:    getEnv("SERVER_ADDRESS", ":8080"),
	}
}

// Validate reports the first missing required setting.
func (c Config) Validate() error {
	if c.TableName == "" {
		return fmt.Errorf("TABLE_NAME is required")
	}
	if c.EventBusName == "" {
		return fmt.Errorf("EVENT_BUS_NAME is required")
	}
	if c.AuroraClusterARN == "" {
		return fmt.Errorf("AURORA_CLUSTER_ARN is required")
	}
	if c.AuroraSecretARN == "" {
		return fmt.Errorf("AURORA_SECRET_ARN is required")
	}
	return nil
}

// IsProduction reports whether the service runs in the production
// environment.
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
