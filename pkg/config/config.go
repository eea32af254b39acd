package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Backend       BackendConfig
	DB            DBConfig
	Redis         RedisConfig
	Cart          CartConfig
	JWT           JWTConfig
	AuthRateLimit AuthRateLimitConfig
	CORS          CORSConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Backend.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Cart.validate(); err != nil {
		return nil, err
	}
	if cfg.Cart.UsesDatabase() && cfg.DB.DSN == "" && !cfg.FeatureFlags.UseSQLite {
		return nil, fmt.Errorf("%s is required when %s=%s", EnvDBDSN, EnvCartStore, CartStoreDatabase)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SMARTSALES_APP_ENV" required:"true"`
	Port         string `envconfig:"SMARTSALES_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SMARTSALES_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"SMARTSALES_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"SMARTSALES_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// BackendConfig points the gateway at the SmartSales REST API.
type BackendConfig struct {
	BaseURL            string        `envconfig:"SMARTSALES_BACKEND_URL" required:"true"`
	Timeout            time.Duration `envconfig:"SMARTSALES_BACKEND_TIMEOUT" default:"15s"`
	BreakerMaxFailures uint32        `envconfig:"SMARTSALES_BACKEND_BREAKER_MAX_FAILURES" default:"5"`
	BreakerOpenTimeout time.Duration `envconfig:"SMARTSALES_BACKEND_BREAKER_OPEN_TIMEOUT" default:"30s"`
}

func (b BackendConfig) validate() error {
	parsed, err := url.Parse(strings.TrimSpace(b.BaseURL))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", EnvBackendURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) url", EnvBackendURL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s must include a host", EnvBackendURL)
	}
	return nil
}

type DBConfig struct {
	DSN             string        `envconfig:"SMARTSALES_DB_DSN"`
	MaxOpenConns    int           `envconfig:"SMARTSALES_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"SMARTSALES_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"SMARTSALES_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SMARTSALES_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	SQLitePath      string        `envconfig:"SMARTSALES_DB_SQLITE_PATH" default:"smartsales.db"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SMARTSALES_REDIS_URL"`
	Address      string        `envconfig:"SMARTSALES_REDIS_ADDR"`
	Password     string        `envconfig:"SMARTSALES_REDIS_PASSWORD"`
	DB           int           `envconfig:"SMARTSALES_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SMARTSALES_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SMARTSALES_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SMARTSALES_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SMARTSALES_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SMARTSALES_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// CartConfig selects where visitor carts are persisted.
type CartConfig struct {
	Store        string        `envconfig:"SMARTSALES_CART_STORE" default:"redis"`
	TTL          time.Duration `envconfig:"SMARTSALES_CART_TTL" default:"720h"`
	CookieName   string        `envconfig:"SMARTSALES_CART_COOKIE" default:"smartsales_cart"`
	CookieSecure bool          `envconfig:"SMARTSALES_CART_COOKIE_SECURE" default:"true"`
}

func (c CartConfig) UsesDatabase() bool {
	return strings.EqualFold(c.Store, CartStoreDatabase)
}

func (c CartConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Store)) {
	case CartStoreMemory, CartStoreRedis, CartStoreDatabase:
		return nil
	}
	return fmt.Errorf("%s must be one of %s, %s, %s", EnvCartStore, CartStoreMemory, CartStoreRedis, CartStoreDatabase)
}

type JWTConfig struct {
	Secret            string `envconfig:"SMARTSALES_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SMARTSALES_JWT_ISSUER" default:"smartsales-gateway"`
	ExpirationMinutes int    `envconfig:"SMARTSALES_JWT_EXPIRATION_MINUTES" default:"480"`
}

// SessionTTL matches the server-side session lifetime to the access token lifetime.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"SMARTSALES_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"SMARTSALES_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"SMARTSALES_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"SMARTSALES_CORS_ORIGINS" default:"http://localhost:5173,http://127.0.0.1:5173"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SMARTSALES_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SMARTSALES_AUTO_MIGRATE" default:"false"`
}
