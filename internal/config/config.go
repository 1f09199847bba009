package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env       string          `yaml:"env" env:"APP_ENV" env-default:"local"`
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Pool      PoolConfig      `yaml:"pool"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

type HTTPConfig struct {
	Address         string        `yaml:"address" env:"HTTP_ADDRESS" env-default:""`
	ReadTimeout     time.Duration `yaml:"read_timeout" env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env-default:"10s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"15s"`
	AllowOrigins    []string      `yaml:"allow_origins" env:"HTTP_ALLOW_ORIGINS" env-separator:","`
	// TrustedProxies lists proxies whose X-Forwarded-For is believed. Empty
	// means the peer address is the client.
	TrustedProxies []string `yaml:"trusted_proxies" env:"HTTP_TRUSTED_PROXIES" env-separator:","`
}

type DatabaseConfig struct {
	DSN             string        `yaml:"dsn" env:"DATABASE_DSN"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env-default:"10"`
	MaxOpenConns    int           `yaml:"max_open_conns" env-default:"25"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env-default:"30m"`
	Migrate         bool          `yaml:"migrate" env:"DATABASE_MIGRATE"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	TokenTTL  time.Duration `yaml:"token_ttl" env:"JWT_TOKEN_TTL" env-default:"168h"`
}

// PoolConfig tunes invite code generation and the participant preview.
// MaxCodeLength matches the width of pools.code.
const MaxCodeLength = 16

type PoolConfig struct {
	CodeLength   int `yaml:"code_length" env-default:"6"`
	CodeAttempts int `yaml:"code_attempts" env-default:"5"`
	PreviewSize  int `yaml:"preview_size" env-default:"4"`
}

type RateLimitConfig struct {
	Enabled           bool          `yaml:"enabled" env:"RATE_LIMIT_ENABLED"`
	RequestsPerMinute int           `yaml:"requests_per_minute" env-default:"30"`
	Burst             int           `yaml:"burst" env-default:"10"`
	CleanupInterval   time.Duration `yaml:"cleanup_interval" env-default:"5m"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" env:"METRICS_ENABLED"`
	Path    string `yaml:"path" env-default:"/metrics"`
}

func MustLoad() *Config {
	configPath := fetchConfigPath()
	if configPath == "" {
		panic("config path is empty")
	}

	return MustLoadPath(configPath)
}

func MustLoadPath(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(err.Error())
	}
	return cfg
}

// Load reads the YAML file at configPath, applies environment overrides
// and fills in defaults.
func Load(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	if res == "" {
		res = "config/local.yaml"
	}

	return res
}

func (c *Config) setDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":3333"
	}
	if len(c.HTTP.AllowOrigins) == 0 {
		c.HTTP.AllowOrigins = []string{"http://localhost:3000"}
	}
	if c.Pool.CodeLength <= 0 {
		c.Pool.CodeLength = 6
	}
	if c.Pool.CodeAttempts <= 0 {
		c.Pool.CodeAttempts = 5
	}
	if c.Pool.PreviewSize <= 0 {
		c.Pool.PreviewSize = 4
	}
	if c.RateLimit.RequestsPerMinute <= 0 {
		c.RateLimit.RequestsPerMinute = 30
	}
	if c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = 10
	}
	if c.RateLimit.CleanupInterval <= 0 {
		c.RateLimit.CleanupInterval = 5 * time.Minute
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

func (c *Config) validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("auth.token_ttl must be positive")
	}
	if c.Pool.CodeLength > MaxCodeLength {
		return fmt.Errorf("pool.code_length must be between 1 and %d", MaxCodeLength)
	}
	return nil
}
