package config

// EnvPrefix is handed to envconfig; every field carries its full variable name.
const EnvPrefix = "SMARTSALES"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	CartStoreMemory   = "memory"
	CartStoreRedis    = "redis"
	CartStoreDatabase = "database"
)

const (
	EnvAppEnv         = "SMARTSALES_APP_ENV"
	EnvPort           = "SMARTSALES_APP_PORT"
	EnvBackendURL     = "SMARTSALES_BACKEND_URL"
	EnvDBDSN          = "SMARTSALES_DB_DSN"
	EnvRedisURL       = "SMARTSALES_REDIS_URL"
	EnvCartStore      = "SMARTSALES_CART_STORE"
	EnvJWTSecret      = "SMARTSALES_JWT_SECRET"
	EnvJWTIssuer      = "SMARTSALES_JWT_ISSUER"
	EnvJWTExpMins     = "SMARTSALES_JWT_EXPIRATION_MINUTES"
	EnvCORSOrigins    = "SMARTSALES_CORS_ORIGINS"
	EnvUseSQLite      = "SMARTSALES_USE_SQLITE"
	EnvBackendTimeout = "SMARTSALES_BACKEND_TIMEOUT"
)
