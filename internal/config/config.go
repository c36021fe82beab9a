// Package config loads CLI configuration from defaults, an optional YAML
// file, BIODIV_* environment variables, and bound command-line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/Sternrassler/biodiv-client/pkg/client"
	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. BIODIV_REDIS_ADDR.
const EnvPrefix = "BIODIV"

// DefaultUserAgent identifies the CLI to the APIs.
const DefaultUserAgent = "biodiv-client/0.1.0 (+https://github.com/Sternrassler/biodiv-client)"

// Config is the CLI configuration.
type Config struct {
	UserAgent        string        `mapstructure:"user_agent" validate:"required"`
	Timeout          time.Duration `mapstructure:"timeout" validate:"gt=0"`
	Concurrency      int           `mapstructure:"concurrency" validate:"gte=1,lte=64"`
	ProgressInterval time.Duration `mapstructure:"progress_interval" validate:"gte=0"`
	MetricsAddr      string        `mapstructure:"metrics_addr" validate:"omitempty,hostname_port"`

	ChecklistBankURL string `mapstructure:"checklistbank_url" validate:"required,url"`
	GBIFURL          string `mapstructure:"gbif_url" validate:"required,url"`

	Redis   RedisConfig   `mapstructure:"redis"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Breaker BreakerConfig `mapstructure:"breaker"`
	Log     LogConfig     `mapstructure:"log"`
}

// RedisConfig enables the lookup cache and shared cooldowns when Addr is set.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" validate:"omitempty,hostname_port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
}

// CacheConfig configures the lookup cache.
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl" validate:"gte=0"`
}

// BreakerConfig configures the per-service circuit breaker.
type BreakerConfig struct {
	Failures uint32        `mapstructure:"failures"`
	Timeout  time.Duration `mapstructure:"timeout" validate:"gte=0"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn warning error"`
	Pretty bool   `mapstructure:"pretty"`
}

// SetDefaults registers every key with its default so environment
// overrides apply to all of them.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("user_agent", DefaultUserAgent)
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("concurrency", 2)
	v.SetDefault("progress_interval", 2*time.Second)
	v.SetDefault("metrics_addr", "")
	v.SetDefault("checklistbank_url", client.DefaultChecklistBankURL)
	v.SetDefault("gbif_url", client.DefaultGBIFURL)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("cache.ttl", 10*time.Minute)
	v.SetDefault("breaker.failures", 5)
	v.SetDefault("breaker.timeout", 30*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
}

// Load reads configuration into a Config. path is an optional YAML file;
// v may already carry bound flags.
func Load(v *viper.Viper, path string) (*Config, error) {
	if v == nil {
		v = viper.New()
	}

	SetDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDotEnv loads environment variables from a .env file if it exists.
// Variables already set in the environment win.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate reports every invalid field.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}

	var result *multierror.Error
	for _, fe := range verrs {
		result = multierror.Append(result, fmt.Errorf("config %s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return result.ErrorOrNil()
}

// RedisClient returns a Redis client, or nil when no address is configured.
func (c *Config) RedisClient() *redis.Client {
	if c.Redis.Addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     c.Redis.Addr,
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
	})
}

// ClientConfig builds the HTTP client configuration. redisClient may be nil.
func (c *Config) ClientConfig(redisClient *redis.Client) client.Config {
	cfg := client.DefaultConfig(c.UserAgent)
	cfg.Redis = redisClient
	cfg.Timeout = c.Timeout
	cfg.BaseURLs = map[string]string{
		client.ServiceChecklistBank: c.ChecklistBankURL,
		client.ServiceGBIF:          c.GBIFURL,
	}
	cfg.CacheTTL = c.Cache.TTL
	cfg.BreakerFailures = c.Breaker.Failures
	cfg.BreakerTimeout = c.Breaker.Timeout
	return cfg
}
