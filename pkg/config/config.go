package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "FESTCART"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	StorageDriverMemory   = "memory"
	StorageDriverRedis    = "redis"
	StorageDriverSQLite   = "sqlite"
	StorageDriverPostgres = "postgres"
)

// Environment variable names, kept in one place for tests and docs.
const (
	EnvAppEnv        = "FESTCART_APP_ENV"
	EnvPort          = "FESTCART_APP_PORT"
	EnvLogLevel      = "FESTCART_LOG_LEVEL"
	EnvCORSOrigins   = "FESTCART_CORS_ORIGINS"
	EnvStorageDriver = "FESTCART_STORAGE_DRIVER"
	EnvStorageTTL    = "FESTCART_STORAGE_TTL"
	EnvDBDSN         = "FESTCART_DB_DSN"
	EnvRedisURL      = "FESTCART_REDIS_URL"
	EnvRedisAddr     = "FESTCART_REDIS_ADDR"
	EnvCheckoutDelay = "FESTCART_CHECKOUT_DELAY"
	EnvToastTTL      = "FESTCART_TOAST_TTL"
	EnvCatalogPath   = "FESTCART_CATALOG_PATH"
	EnvAutoMigrate   = "FESTCART_AUTO_MIGRATE"
	EnvCronInterval  = "FESTCART_CRON_INTERVAL"
)

type Config struct {
	App          AppConfig
	Storage      StorageConfig
	DB           DBConfig
	Redis        RedisConfig
	Cart         CartConfig
	Cron         CronConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"FESTCART_APP_ENV" default:"dev"`
	Port         string   `envconfig:"FESTCART_APP_PORT" default:"8080"`
	LogLevel     string   `envconfig:"FESTCART_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"FESTCART_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"FESTCART_CORS_ORIGINS" default:"http://localhost:5173,http://127.0.0.1:5173"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type StorageConfig struct {
	Driver string `envconfig:"FESTCART_STORAGE_DRIVER" default:"memory"`
	// TTL bounds how long an untouched cart snapshot survives. Redis applies it as the
	// key expiry, SQL stores prune by it. Zero keeps snapshots forever.
	TTL time.Duration `envconfig:"FESTCART_STORAGE_TTL" default:"720h"`
}

// Normalized returns the lower-cased driver name.
func (s StorageConfig) Normalized() string {
	return strings.ToLower(strings.TrimSpace(s.Driver))
}

// UsesSQL reports whether the configured driver needs a database connection.
func (s StorageConfig) UsesSQL() bool {
	switch s.Normalized() {
	case StorageDriverSQLite, StorageDriverPostgres:
		return true
	}
	return false
}

type DBConfig struct {
	DSN string `envconfig:"FESTCART_DB_DSN"`

	MaxOpenConns    int           `envconfig:"FESTCART_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"FESTCART_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"FESTCART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FESTCART_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FESTCART_REDIS_URL"`
	Address      string        `envconfig:"FESTCART_REDIS_ADDR"`
	Password     string        `envconfig:"FESTCART_REDIS_PASSWORD"`
	DB           int           `envconfig:"FESTCART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FESTCART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FESTCART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FESTCART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FESTCART_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"FESTCART_REDIS_WRITE_TIMEOUT" default:"3s"`
}

type CartConfig struct {
	CheckoutDelay time.Duration `envconfig:"FESTCART_CHECKOUT_DELAY" default:"2s"`
	ToastTTL      time.Duration `envconfig:"FESTCART_TOAST_TTL" default:"4s"`
	ToastLimit    int           `envconfig:"FESTCART_TOAST_LIMIT" default:"20"`
	CatalogPath   string        `envconfig:"FESTCART_CATALOG_PATH" default:"data/events.json"`
	SessionHeader string        `envconfig:"FESTCART_SESSION_HEADER" default:"X-Cart-Session"`
}

// CronConfig drives the in-process maintenance jobs.
type CronConfig struct {
	Enabled   bool          `envconfig:"FESTCART_CRON_ENABLED" default:"true"`
	Interval  time.Duration `envconfig:"FESTCART_CRON_INTERVAL" default:"5m"`
	IdleAfter time.Duration `envconfig:"FESTCART_CRON_IDLE_AFTER" default:"30m"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"FESTCART_AUTO_MIGRATE" default:"false"`
}

func (c *Config) validate() error {
	switch c.Storage.Normalized() {
	case StorageDriverMemory:
	case StorageDriverRedis:
		if c.Redis.URL == "" && c.Redis.Address == "" {
			return fmt.Errorf("%s=redis requires %s or %s", EnvStorageDriver, EnvRedisURL, EnvRedisAddr)
		}
	case StorageDriverSQLite, StorageDriverPostgres:
		if c.DB.DSN == "" {
			return fmt.Errorf("%s=%s requires %s", EnvStorageDriver, c.Storage.Normalized(), EnvDBDSN)
		}
	default:
		return fmt.Errorf("unsupported %s %q", EnvStorageDriver, c.Storage.Driver)
	}
	if c.Cart.CheckoutDelay < 0 {
		return fmt.Errorf("%s must not be negative", EnvCheckoutDelay)
	}
	if c.Cron.Enabled && c.Cron.Interval <= 0 {
		return fmt.Errorf("%s must be positive", EnvCronInterval)
	}
	if c.Cart.ToastTTL <= 0 {
		return fmt.Errorf("%s must be positive", EnvToastTTL)
	}
	return nil
}
