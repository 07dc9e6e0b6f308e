package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration settings
type Config struct {
	// Backend discriminator: "local" selects the Gremlin server, any other
	// recognised environment selects Azure Cosmos DB.
	Environment string `yaml:"environment" mapstructure:"environment"`

	Gremlin GremlinConfig `yaml:"gremlin" mapstructure:"gremlin"`
	Cosmos  CosmosConfig  `yaml:"cosmos" mapstructure:"cosmos"`
	Cache   CacheConfig   `yaml:"cache" mapstructure:"cache"`
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
}

type GremlinConfig struct {
	URL             string `yaml:"url" mapstructure:"url"` // ws://localhost:8182/gremlin
	TraversalSource string `yaml:"traversal_source" mapstructure:"traversal_source"`
}

type CosmosConfig struct {
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"` // wss://<account>.gremlin.cosmos.azure.com:443/
	Key      string `yaml:"key" mapstructure:"key"`
	Database string `yaml:"database" mapstructure:"database"`

	// Client-side pacing against the provisioned RU budget; 0 disables it.
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
}

type CacheConfig struct {
	Enabled       bool          `yaml:"enabled" mapstructure:"enabled"`
	RedisAddr     string        `yaml:"redis_addr" mapstructure:"redis_addr"`
	RedisPassword string        `yaml:"redis_password" mapstructure:"redis_password"`
	RedisDB       int           `yaml:"redis_db" mapstructure:"redis_db"`
	TTL           time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

type LoggingConfig struct {
	Level string `yaml:"level" mapstructure:"level"` // debug, info, warn, error
	JSON  bool   `yaml:"json" mapstructure:"json"`
	File  string `yaml:"file" mapstructure:"file"` // empty = stdout only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Environment: string(EnvLocal),
		Gremlin: GremlinConfig{
			URL:             "ws://localhost:8182/gremlin",
			TraversalSource: "g",
		},
		Cosmos: CosmosConfig{
			Database: "decisions",
			Burst:    1,
		},
		Cache: CacheConfig{
			RedisAddr: "localhost:6379",
			TTL:       5 * time.Minute,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from file, .env files and environment variables.
// A missing config file is not an error.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetConfigType("yaml")

	cfg := Default()
	setDefaults(v, cfg)

	// DAGRAPH_GREMLIN_URL overrides gremlin.url, etc.
	v.SetEnvPrefix("DAGRAPH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".dagraph")
		v.AddConfigPath(".")
		homeDir, _ := os.UserHomeDir()
		v.AddConfigPath(filepath.Join(homeDir, ".dagraph"))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(cfg)

	if _, err := ParseEnvironment(cfg.Environment); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("environment", cfg.Environment)
	v.SetDefault("gremlin.url", cfg.Gremlin.URL)
	v.SetDefault("gremlin.traversal_source", cfg.Gremlin.TraversalSource)
	v.SetDefault("cosmos.endpoint", cfg.Cosmos.Endpoint)
	v.SetDefault("cosmos.key", cfg.Cosmos.Key)
	v.SetDefault("cosmos.database", cfg.Cosmos.Database)
	v.SetDefault("cosmos.requests_per_second", cfg.Cosmos.RequestsPerSecond)
	v.SetDefault("cosmos.burst", cfg.Cosmos.Burst)
	v.SetDefault("cache.enabled", cfg.Cache.Enabled)
	v.SetDefault("cache.redis_addr", cfg.Cache.RedisAddr)
	v.SetDefault("cache.redis_password", cfg.Cache.RedisPassword)
	v.SetDefault("cache.redis_db", cfg.Cache.RedisDB)
	v.SetDefault("cache.ttl", cfg.Cache.TTL)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.json", cfg.Logging.JSON)
	v.SetDefault("logging.file", cfg.Logging.File)
}

// applyEnvOverrides applies the unprefixed variables used by deployments.
func applyEnvOverrides(cfg *Config) {
	if env := os.Getenv("ENVIRONMENT"); env != "" && os.Getenv("DAGRAPH_ENVIRONMENT") == "" {
		cfg.Environment = env
	}

	if url := os.Getenv("GREMLIN_URL"); url != "" {
		cfg.Gremlin.URL = url
	}

	if endpoint := os.Getenv("COSMOS_ENDPOINT"); endpoint != "" {
		cfg.Cosmos.Endpoint = endpoint
	}
	if key := os.Getenv(CosmosKeyEnv); key != "" {
		cfg.Cosmos.Key = key
	}
	if db := os.Getenv("COSMOS_DATABASE"); db != "" {
		cfg.Cosmos.Database = db
	}
	cfg.Cosmos.RequestsPerSecond = GetFloat("COSMOS_REQUESTS_PER_SECOND", cfg.Cosmos.RequestsPerSecond)

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Cache.RedisAddr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.Cache.RedisPassword = password
	}
	cfg.Cache.Enabled = GetBool("CACHE_ENABLED", cfg.Cache.Enabled)

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		cfg.Logging.JSON = strings.EqualFold(format, "json")
	}
	if file := os.Getenv("LOG_FILE"); file != "" {
		cfg.Logging.File = expandPath(file)
	}
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}
	return path
}

// Save writes the configuration as YAML. The Cosmos key is never written.
func (c *Config) Save(path string) error {
	v := viper.New()
	v.SetConfigType("yaml")

	v.Set("environment", c.Environment)
	v.Set("gremlin", map[string]any{
		"url":              c.Gremlin.URL,
		"traversal_source": c.Gremlin.TraversalSource,
	})
	v.Set("cosmos", map[string]any{
		"endpoint":            c.Cosmos.Endpoint,
		"database":            c.Cosmos.Database,
		"requests_per_second": c.Cosmos.RequestsPerSecond,
		"burst":               c.Cosmos.Burst,
	})
	v.Set("cache", map[string]any{
		"enabled":    c.Cache.Enabled,
		"redis_addr": c.Cache.RedisAddr,
		"redis_db":   c.Cache.RedisDB,
		"ttl":        c.Cache.TTL.String(),
	})
	v.Set("logging", map[string]any{
		"level": c.Logging.Level,
		"json":  c.Logging.JSON,
		"file":  c.Logging.File,
	})

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
