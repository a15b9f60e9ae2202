// Package config loads application configuration from file and environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Log configuration
	Log LogConfig `mapstructure:"log"`

	// Server configuration
	Server ServerConfig `mapstructure:"server"`

	// Corpus configuration
	Corpus CorpusConfig `mapstructure:"corpus"`

	// Policy configuration
	Policy PolicyConfig `mapstructure:"policy"`

	// Retrieval configuration
	Retrieval RetrievalConfig `mapstructure:"retrieval"`

	// Embedding configuration
	Embedding EmbeddingConfig `mapstructure:"embedding"`

	// VectorIndex configuration
	VectorIndex VectorIndexConfig `mapstructure:"vector_index"`

	// CircuitBreaker configuration
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`

	// Cache configuration
	Cache CacheConfig `mapstructure:"cache"`

	// Audit configuration
	Audit AuditConfig `mapstructure:"audit"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin mode: debug, release, test
}

// CorpusConfig holds document corpus configuration
type CorpusConfig struct {
	Path string `mapstructure:"path"`
}

// PolicyConfig holds access policy configuration
type PolicyConfig struct {
	// Path to a YAML policy file; empty uses the built-in tables.
	Path string `mapstructure:"path"`
}

// RetrievalConfig holds hybrid retrieval configuration
type RetrievalConfig struct {
	SemanticWeight float64 `mapstructure:"semantic_weight"`
	LexicalWeight  float64 `mapstructure:"lexical_weight"`
	DefaultK       int     `mapstructure:"default_k"`
	MaxK           int     `mapstructure:"max_k"`
}

// EmbeddingConfig holds embedding configuration
type EmbeddingConfig struct {
	Provider string `mapstructure:"provider"` // openai, embedeverything, none
	Model    string `mapstructure:"model"`
	APIKey   string `mapstructure:"api_key"`
	BaseURL  string `mapstructure:"base_url"`
}

// VectorIndexConfig holds vector index configuration
type VectorIndexConfig struct {
	Backend string `mapstructure:"backend"` // memory, badger
	Path    string `mapstructure:"path"`
}

// CircuitBreakerConfig holds configuration for the vector-index breaker
type CircuitBreakerConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	MaxRequests      uint32  `mapstructure:"max_requests"`
	Interval         int     `mapstructure:"interval"`   // in seconds
	OpenTimeout      int     `mapstructure:"timeout"`    // in seconds
	SearchTimeoutMS  int     `mapstructure:"search_timeout_ms"`
	ReadyToTripRatio float64 `mapstructure:"ready_to_trip_ratio"`
}

// CacheConfig holds query-result cache configuration
type CacheConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Backend    string `mapstructure:"backend"` // memory, redis
	RedisURL   string `mapstructure:"redis_url"`
	MaxEntries int    `mapstructure:"max_entries"`
	TTLSeconds int    `mapstructure:"ttl_seconds"`
}

// AuditConfig holds decision-trail configuration
type AuditConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ParquetPath string `mapstructure:"parquet_path"`
	BatchSize   int    `mapstructure:"batch_size"`
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	// Set defaults
	setDefaults()

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Override with environment variables if present
	overrideWithEnv(config)

	return config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Log defaults
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	// Server defaults
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "debug")

	// Corpus defaults
	viper.SetDefault("corpus.path", "./corpus.yaml")

	// Retrieval defaults
	viper.SetDefault("retrieval.semantic_weight", 0.6)
	viper.SetDefault("retrieval.lexical_weight", 0.4)
	viper.SetDefault("retrieval.default_k", 5)
	viper.SetDefault("retrieval.max_k", 50)

	// Embedding defaults
	viper.SetDefault("embedding.provider", "none")
	viper.SetDefault("embedding.model", "text-embedding-3-small")

	// Vector index defaults
	viper.SetDefault("vector_index.backend", "memory")
	viper.SetDefault("vector_index.path", "./veridoc_index")

	// Circuit breaker defaults
	viper.SetDefault("circuit_breaker.enabled", true)
	viper.SetDefault("circuit_breaker.max_requests", 3)
	viper.SetDefault("circuit_breaker.interval", 60)
	viper.SetDefault("circuit_breaker.timeout", 30)
	viper.SetDefault("circuit_breaker.search_timeout_ms", 300)
	viper.SetDefault("circuit_breaker.ready_to_trip_ratio", 0.6)

	// Cache defaults
	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.backend", "memory")
	viper.SetDefault("cache.max_entries", 1000)
	viper.SetDefault("cache.ttl_seconds", 300)

	// Audit defaults
	viper.SetDefault("audit.enabled", false)
	viper.SetDefault("audit.batch_size", 100)
	home, err := os.UserHomeDir()
	if err == nil {
		viper.SetDefault("audit.parquet_path", fmt.Sprintf("%s/.veridoc/audit", home))
	}
}

// overrideWithEnv overrides config with environment variables
func overrideWithEnv(config *Config) {
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		config.Embedding.APIKey = apiKey
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		config.Embedding.BaseURL = baseURL
	}

	if url := os.Getenv("REDIS_URL"); url != "" {
		config.Cache.RedisURL = url
		config.Cache.Backend = "redis"
	}

	// Server settings
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if path := os.Getenv("VERIDOC_CORPUS_PATH"); path != "" {
		config.Corpus.Path = path
	}
	if path := os.Getenv("VERIDOC_POLICY_PATH"); path != "" {
		config.Policy.Path = path
	}
	if path := os.Getenv("VERIDOC_INDEX_PATH"); path != "" {
		config.VectorIndex.Path = path
	}
}

// Validate checks values the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Retrieval.SemanticWeight < 0 || c.Retrieval.LexicalWeight < 0 {
		return fmt.Errorf("retrieval weights cannot be negative")
	}
	if c.Retrieval.SemanticWeight+c.Retrieval.LexicalWeight == 0 {
		return fmt.Errorf("retrieval weights cannot both be zero")
	}
	if c.Retrieval.DefaultK <= 0 {
		return fmt.Errorf("retrieval.default_k must be positive")
	}
	if c.Corpus.Path == "" {
		return fmt.Errorf("corpus path is required")
	}
	return nil
}
