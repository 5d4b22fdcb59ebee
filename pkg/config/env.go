package config

// EnvPrefix is passed to envconfig; every field carries an explicit name so it is informational.
const EnvPrefix = "QUANTY"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	EnvAppEnv                 = "QUANTY_APP_ENV"
	EnvPort                   = "QUANTY_APP_PORT"
	EnvDBDSN                  = "QUANTY_DB_DSN"
	EnvDBHost                 = "QUANTY_DB_HOST"
	EnvDBUser                 = "QUANTY_DB_USER"
	EnvDBName                 = "QUANTY_DB_NAME"
	EnvRedisURL               = "QUANTY_REDIS_URL"
	EnvJWTSecret              = "QUANTY_JWT_SECRET"
	EnvJWTIssuer              = "QUANTY_JWT_ISSUER"
	EnvJWTExpMins             = "QUANTY_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "QUANTY_REFRESH_TOKEN_TTL_MINUTES"
	EnvMasterAdminEmail       = "QUANTY_MASTER_ADMIN_EMAIL"
	EnvUseSQLite              = "QUANTY_USE_SQLITE"
	EnvGoogleClientID         = "QUANTY_GOOGLE_CLIENT_ID"
	EnvGoogleClientSecret     = "QUANTY_GOOGLE_CLIENT_SECRET"
	EnvGoogleRedirectURL      = "QUANTY_GOOGLE_REDIRECT_URL"
	EnvAPIURL                 = "QUANTY_API_URL"
	EnvStatePath              = "QUANTY_STATE_PATH"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
