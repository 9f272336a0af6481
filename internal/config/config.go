package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/Radioacti1ve/MEOWShop/pkg/config"
	"github.com/Radioacti1ve/MEOWShop/pkg/database"
)

// Config holds all configuration for the catalog service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort       int      `env:"HTTP_PORT" envDefault:"8080"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Search engine selection (elasticsearch or memory)
	SearchEngine string `env:"SEARCH_ENGINE" envDefault:"elasticsearch"`

	// Elasticsearch
	ElasticsearchURL            string `env:"ELASTICSEARCH_URL" envDefault:"http://localhost:9200"`
	ElasticsearchAlias          string `env:"ELASTICSEARCH_ALIAS" envDefault:"products"`
	ElasticsearchConnectRetries int    `env:"ELASTICSEARCH_CONNECT_RETRIES" envDefault:"5"`

	// PostgreSQL
	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"meowshop"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:"meowshop_secret"`
	PostgresDB       string `env:"POSTGRES_DB" envDefault:"meowshop"`
	PostgresSSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`

	// Redis
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Rating cache TTLs, in seconds
	RatingDetailTTL int `env:"RATING_DETAIL_TTL" envDefault:"3600"`
	RatingListTTL   int `env:"RATING_LIST_TTL" envDefault:"300"`

	// Kafka
	KafkaBrokers     []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	KafkaGroupID     string   `env:"KAFKA_GROUP_ID" envDefault:"catalog-indexer"`
	KafkaSyncEnabled bool     `env:"KAFKA_SYNC_ENABLED" envDefault:"true"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load catalog config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.SearchEngine != "elasticsearch" && c.SearchEngine != "memory" {
		return fmt.Errorf("invalid search engine: %q (must be elasticsearch or memory)", c.SearchEngine)
	}
	if c.RatingDetailTTL < 1 || c.RatingListTTL < 1 {
		return fmt.Errorf("rating TTLs must be positive")
	}
	return nil
}

// Postgres returns the connection pool configuration.
func (c *Config) Postgres() database.PostgresConfig {
	pg := database.DefaultPostgresConfig()
	pg.Host = c.PostgresHost
	pg.Port = c.PostgresPort
	pg.User = c.PostgresUser
	pg.Password = c.PostgresPassword
	pg.DBName = c.PostgresDB
	pg.SSLMode = c.PostgresSSLMode
	return pg
}

// Redis returns the Redis client configuration.
func (c *Config) Redis() database.RedisConfig {
	return database.RedisConfig{
		Host:     c.RedisHost,
		Port:     c.RedisPort,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}

// DetailTTL returns the detail-view rating cache TTL.
func (c *Config) DetailTTL() time.Duration {
	return time.Duration(c.RatingDetailTTL) * time.Second
}

// ListTTL returns the list-view rating cache TTL.
func (c *Config) ListTTL() time.Duration {
	return time.Duration(c.RatingListTTL) * time.Second
}
