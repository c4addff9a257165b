package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Sync         SyncConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"VENTAHUB_APP_ENV" required:"true"`
	Port         string `envconfig:"VENTAHUB_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"VENTAHUB_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"VENTAHUB_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"VENTAHUB_DB_DSN"`
	Driver string `envconfig:"VENTAHUB_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"VENTAHUB_DB_HOST"`
	Port     int    `envconfig:"VENTAHUB_DB_PORT" default:"5432"`
	User     string `envconfig:"VENTAHUB_DB_USER"`
	Password string `envconfig:"VENTAHUB_DB_PASSWORD"`
	Name     string `envconfig:"VENTAHUB_DB_NAME"`
	SSLMode  string `envconfig:"VENTAHUB_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"VENTAHUB_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"VENTAHUB_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"VENTAHUB_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"VENTAHUB_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("either VENTAHUB_DB_DSN or host/user/name parts are required")
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.Name,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	d.DSN = u.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"VENTAHUB_REDIS_URL"`
	Address      string        `envconfig:"VENTAHUB_REDIS_ADDR"`
	Password     string        `envconfig:"VENTAHUB_REDIS_PASSWORD"`
	DB           int           `envconfig:"VENTAHUB_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"VENTAHUB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"VENTAHUB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"VENTAHUB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"VENTAHUB_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"VENTAHUB_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"VENTAHUB_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"VENTAHUB_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"VENTAHUB_JWT_EXPIRATION_MINUTES" default:"60"`
}

// SyncConfig bounds the orchestrator fan-out and the external API calls it
// issues. ChannelTimeout covers one adapter operation end to end.
type SyncConfig struct {
	MaxConcurrency int           `envconfig:"VENTAHUB_SYNC_MAX_CONCURRENCY" default:"4"`
	ChannelTimeout time.Duration `envconfig:"VENTAHUB_SYNC_CHANNEL_TIMEOUT" default:"30s"`
	LockTTL        time.Duration `envconfig:"VENTAHUB_SYNC_LOCK_TTL" default:"2m"`

	ShopifyAPIVersion string `envconfig:"VENTAHUB_SHOPIFY_API_VERSION" default:"2024-01"`
	ShopifyBaseURL    string `envconfig:"VENTAHUB_SHOPIFY_BASE_URL"`
	SiigoBaseURL      string `envconfig:"VENTAHUB_SIIGO_BASE_URL" default:"https://api.siigo.com"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"VENTAHUB_FEATURE_AUTO_MIGRATE" default:"false"`
}
