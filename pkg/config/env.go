package config

const EnvPrefix = "WEBMARKET"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

const (
	EnvAppEnv   = "WEBMARKET_APP_ENV"
	EnvPort     = "WEBMARKET_APP_PORT"
	EnvLogLevel = "WEBMARKET_LOG_LEVEL"

	EnvDBDSN    = "WEBMARKET_DB_DSN"
	EnvDBDriver = "WEBMARKET_DB_DRIVER"
	EnvDBHost   = "WEBMARKET_DB_HOST"
	EnvDBUser   = "WEBMARKET_DB_USER"
	EnvDBName   = "WEBMARKET_DB_NAME"

	EnvRedisURL = "WEBMARKET_REDIS_URL"

	EnvJWTSecret              = "WEBMARKET_JWT_SECRET"
	EnvJWTIssuer              = "WEBMARKET_JWT_ISSUER"
	EnvJWTExpMins             = "WEBMARKET_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "WEBMARKET_REFRESH_TOKEN_TTL_MINUTES"

	EnvAMQPURL = "WEBMARKET_AMQP_URL"

	EnvStorefrontAPIURL     = "WEBMARKET_STOREFRONT_API_URL"
	EnvStorefrontStore      = "WEBMARKET_STOREFRONT_STORE"
	EnvStorefrontStorePath  = "WEBMARKET_STOREFRONT_STORE_PATH"
	EnvStorefrontProcessing = "WEBMARKET_STOREFRONT_MIN_PROCESSING"
)

var splitDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
