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
	Idempotency   IdempotencyConfig
	FeatureFlags  FeatureFlagsConfig
	Events        EventsConfig
	Outbox        OutboxConfig
	Maintenance   MaintenanceConfig
	Bootstrap     BootstrapConfig
}

// Load reads the API configuration from the environment.
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
	Env            string   `envconfig:"WEBMARKET_APP_ENV" required:"true"`
	Port           string   `envconfig:"WEBMARKET_APP_PORT" default:"8080"`
	LogLevel       string   `envconfig:"WEBMARKET_LOG_LEVEL" default:"info"`
	LogWarnStack   bool     `envconfig:"WEBMARKET_LOG_WARN_STACK" default:"false"`
	AllowedOrigins []string `envconfig:"WEBMARKET_CORS_ALLOWED_ORIGINS" default:"*"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev) || strings.EqualFold(a.Env, "development")
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

type DBConfig struct {
	DSN    string `envconfig:"WEBMARKET_DB_DSN"`
	Driver string `envconfig:"WEBMARKET_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"WEBMARKET_DB_HOST"`
	Port     int    `envconfig:"WEBMARKET_DB_PORT" default:"5432"`
	User     string `envconfig:"WEBMARKET_DB_USER"`
	Password string `envconfig:"WEBMARKET_DB_PASSWORD"`
	Name     string `envconfig:"WEBMARKET_DB_NAME"`
	SSLMode  string `envconfig:"WEBMARKET_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"WEBMARKET_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"WEBMARKET_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"WEBMARKET_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"WEBMARKET_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver is sqlite.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"WEBMARKET_REDIS_URL"`
	Address      string        `envconfig:"WEBMARKET_REDIS_ADDR"`
	Password     string        `envconfig:"WEBMARKET_REDIS_PASSWORD"`
	DB           int           `envconfig:"WEBMARKET_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"WEBMARKET_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"WEBMARKET_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"WEBMARKET_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"WEBMARKET_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"WEBMARKET_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"WEBMARKET_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"WEBMARKET_JWT_ISSUER" default:"webmarket"`
	ExpirationMinutes      int    `envconfig:"WEBMARKET_JWT_EXPIRATION_MINUTES" default:"60"`
	RefreshTokenTTLMinutes int    `envconfig:"WEBMARKET_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
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
	ArgonMemoryKB    int `envconfig:"WEBMARKET_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"WEBMARKET_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"WEBMARKET_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"WEBMARKET_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"WEBMARKET_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"WEBMARKET_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"WEBMARKET_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"WEBMARKET_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"WEBMARKET_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"WEBMARKET_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"WEBMARKET_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type IdempotencyConfig struct {
	TTL time.Duration `envconfig:"WEBMARKET_IDEMPOTENCY_TTL" default:"24h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"WEBMARKET_AUTO_MIGRATE" default:"false"`
}

type EventsConfig struct {
	AMQPURL  string `envconfig:"WEBMARKET_AMQP_URL"`
	Exchange string `envconfig:"WEBMARKET_AMQP_EXCHANGE" default:"webmarket.events"`
}

// Enabled reports whether an AMQP broker is configured.
func (e EventsConfig) Enabled() bool {
	return strings.TrimSpace(e.AMQPURL) != ""
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"WEBMARKET_OUTBOX_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"WEBMARKET_OUTBOX_POLL_INTERVAL_MS" default:"500"`
	MaxAttempts    int `envconfig:"WEBMARKET_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type MaintenanceConfig struct {
	Interval            time.Duration `envconfig:"WEBMARKET_MAINTENANCE_INTERVAL" default:"1h"`
	OutboxRetentionDays int           `envconfig:"WEBMARKET_OUTBOX_RETENTION_DAYS" default:"30"`
	OutboxBacklogWarn   int64         `envconfig:"WEBMARKET_OUTBOX_BACKLOG_WARN" default:"1000"`
}

type BootstrapConfig struct {
	AdminName     string `envconfig:"WEBMARKET_ADMIN_NAME" default:"Admin"`
	AdminEmail    string `envconfig:"WEBMARKET_ADMIN_EMAIL"`
	AdminPassword string `envconfig:"WEBMARKET_ADMIN_PASSWORD"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = "file:webmarket.db?cache=shared"
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range splitDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
