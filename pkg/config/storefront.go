package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	LocalStoreSQLite = "sqlite"
	LocalStoreRedis  = "redis"
	LocalStoreMemory = "memory"
)

// StorefrontConfig configures the storefront client (cmd/storefront).
type StorefrontConfig struct {
	LogLevel string `envconfig:"WEBMARKET_LOG_LEVEL" default:"warn"`

	APIURL     string        `envconfig:"WEBMARKET_STOREFRONT_API_URL" default:"http://localhost:8080/api/v1"`
	// APITimeout bounds every API call except order creation.
	APITimeout time.Duration `envconfig:"WEBMARKET_STOREFRONT_API_TIMEOUT" default:"15s"`

	Store     string `envconfig:"WEBMARKET_STOREFRONT_STORE" default:"sqlite"`
	StorePath string `envconfig:"WEBMARKET_STOREFRONT_STORE_PATH" default:".webmarket/storefront.db"`
	Namespace string `envconfig:"WEBMARKET_STOREFRONT_NAMESPACE" default:"default"`

	MinProcessing  time.Duration `envconfig:"WEBMARKET_STOREFRONT_MIN_PROCESSING" default:"1500ms"`
	SuccessDisplay time.Duration `envconfig:"WEBMARKET_STOREFRONT_SUCCESS_DISPLAY" default:"2000ms"`

	Redis RedisConfig
}

// LoadStorefront reads the storefront configuration from the environment.
func LoadStorefront() (*StorefrontConfig, error) {
	var cfg StorefrontConfig
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing storefront config: %w", err)
	}
	switch strings.ToLower(cfg.Store) {
	case LocalStoreSQLite, LocalStoreRedis, LocalStoreMemory:
		cfg.Store = strings.ToLower(cfg.Store)
	default:
		return nil, fmt.Errorf("%s must be one of sqlite, redis, memory (got %q)", EnvStorefrontStore, cfg.Store)
	}
	if cfg.Store == LocalStoreRedis && cfg.Redis.URL == "" && cfg.Redis.Address == "" {
		return nil, fmt.Errorf("%s is required when %s=redis", EnvRedisURL, EnvStorefrontStore)
	}
	return &cfg, nil
}
