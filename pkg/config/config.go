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
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Admin         AdminConfig
	Google        GoogleConfig
	CORS          CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"QUANTY_APP_ENV" required:"true"`
	Port         string `envconfig:"QUANTY_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"QUANTY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"QUANTY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN        string `envconfig:"QUANTY_DB_DSN"`
	Driver     string `envconfig:"QUANTY_DB_DRIVER" default:"postgres"`
	SQLitePath string `envconfig:"QUANTY_DB_SQLITE_PATH" default:"quanty.db"`

	LegacyHost     string `envconfig:"QUANTY_DB_HOST"`
	LegacyPort     int    `envconfig:"QUANTY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"QUANTY_DB_USER"`
	LegacyPassword string `envconfig:"QUANTY_DB_PASSWORD"`
	LegacyName     string `envconfig:"QUANTY_DB_NAME"`
	LegacySSLMode  string `envconfig:"QUANTY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"QUANTY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"QUANTY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"QUANTY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"QUANTY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"QUANTY_REDIS_URL"`
	Address      string        `envconfig:"QUANTY_REDIS_ADDR"`
	Password     string        `envconfig:"QUANTY_REDIS_PASSWORD"`
	DB           int           `envconfig:"QUANTY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"QUANTY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"QUANTY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"QUANTY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"QUANTY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"QUANTY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"QUANTY_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"QUANTY_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"QUANTY_JWT_EXPIRATION_MINUTES" default:"60"`
	RefreshTokenTTLMinutes int    `envconfig:"QUANTY_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// AccessTokenTTL returns the access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"QUANTY_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"QUANTY_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"QUANTY_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"QUANTY_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"QUANTY_ARGON_KEY_LEN" default:"32"`
	MinLength        int `envconfig:"QUANTY_PASSWORD_MIN_LENGTH" default:"6"`
}

type AuthRateLimitConfig struct {
	LoginWindow      time.Duration `envconfig:"QUANTY_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit  int           `envconfig:"QUANTY_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit     int           `envconfig:"QUANTY_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	SignupWindow     time.Duration `envconfig:"QUANTY_AUTH_RATE_LIMIT_SIGNUP_WINDOW" default:"5m"`
	SignupEmailLimit int           `envconfig:"QUANTY_AUTH_RATE_LIMIT_SIGNUP_EMAIL_LIMIT" default:"3"`
	SignupIPLimit    int           `envconfig:"QUANTY_AUTH_RATE_LIMIT_SIGNUP_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"QUANTY_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"QUANTY_AUTO_MIGRATE" default:"false"`
}

type AdminConfig struct {
	MasterEmail string `envconfig:"QUANTY_MASTER_ADMIN_EMAIL" required:"true"`
}

// IsMasterEmail reports whether email belongs to the master admin.
func (a AdminConfig) IsMasterEmail(email string) bool {
	master := NormalizeEmail(a.MasterEmail)
	return master != "" && master == NormalizeEmail(email)
}

type GoogleConfig struct {
	ClientID           string   `envconfig:"QUANTY_GOOGLE_CLIENT_ID"`
	ClientSecret       string   `envconfig:"QUANTY_GOOGLE_CLIENT_SECRET"`
	RedirectURL        string   `envconfig:"QUANTY_GOOGLE_REDIRECT_URL"`
	AllowedReturnHosts []string `envconfig:"QUANTY_GOOGLE_ALLOWED_RETURN_HOSTS"`
}

// Enabled reports whether Google sign-in is configured.
func (g GoogleConfig) Enabled() bool {
	return g.ClientID != "" && g.ClientSecret != "" && g.RedirectURL != ""
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"QUANTY_CORS_ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:8080"`
}

// NormalizeEmail lowercases and trims an email address for comparisons.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if useSQLite {
		db.Driver = DriverSQLite
		return nil
	}
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
