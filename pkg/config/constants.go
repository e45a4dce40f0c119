package config

const (
	EnvPrefix = "GROCEREASE"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv    = "GROCEREASE_APP_ENV"
	EnvPort      = "GROCEREASE_APP_PORT"
	EnvClientURL = "GROCEREASE_CLIENT_URL"

	EnvDBDSN  = "GROCEREASE_DB_DSN"
	EnvDBHost = "GROCEREASE_DB_HOST"
	EnvDBUser = "GROCEREASE_DB_USER"
	EnvDBName = "GROCEREASE_DB_NAME"

	EnvRedisURL = "GROCEREASE_REDIS_URL"

	EnvJWTSecret  = "GROCEREASE_JWT_SECRET"
	EnvJWTIssuer  = "GROCEREASE_JWT_ISSUER"
	EnvJWTExpMins = "GROCEREASE_JWT_EXPIRATION_MINUTES"

	EnvSearchRateLimit = "GROCEREASE_SEARCH_RATE_LIMIT"
	EnvFilterCacheTTL  = "GROCEREASE_FILTER_CACHE_TTL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
