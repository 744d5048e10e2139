package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Storage driver identifiers accepted by Config.StorageDriver
const (
	StorageDriverFile     = "file"
	StorageDriverMemory   = "memory"
	StorageDriverPostgres = "postgres"
)

// Config represents the application configuration structure
type Config struct {
	Environment string `default:"prod"`

	// APIBaseURL is the base URL every backend path is resolved against
	APIBaseURL string `split_words:"true" default:"http://localhost:8000/api/"`

	StorageDriver string `split_words:"true" default:"file"`
	StoragePath   string `split_words:"true" default:"posctl-session.json"`
	PostgresDSN   string `split_words:"true"`

	// StorageNamespace separates terminals sharing one PostgreSQL database
	StorageNamespace string `split_words:"true" default:"default"`

	// ProductCacheLifetime defines how long product lookups are cached; 0 disables caching
	ProductCacheLifetime time.Duration `split_words:"true" default:"1m"`

	// RateLimit caps the amount of requests per second sent to the backend; 0 disables the limit
	RateLimit float64 `split_words:"true" default:"0"`
}

// IsEnvProduction returns whether the application runs in production mode
func (config *Config) IsEnvProduction() bool {
	return strings.ToLower(config.Environment) == "prod"
}

// LoadFromEnv loads a new configuration structure using environment variables and an optional .env file
func LoadFromEnv() (*Config, error) {
	// Load a .env file if it exists
	_ = godotenv.Overload()

	// Load a new configuration structure using environment variables
	config := new(Config)
	if err := envconfig.Process("pos", config); err != nil {
		return nil, err
	}
	return config, nil
}
