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
	Esewa         EsewaConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
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
	Env          string `envconfig:"FASALBAJAR_APP_ENV" required:"true"`
	Port         string `envconfig:"FASALBAJAR_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"FASALBAJAR_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FASALBAJAR_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"FASALBAJAR_DB_DSN"`
	Driver string `envconfig:"FASALBAJAR_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"FASALBAJAR_DB_HOST"`
	LegacyPort     int    `envconfig:"FASALBAJAR_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FASALBAJAR_DB_USER"`
	LegacyPassword string `envconfig:"FASALBAJAR_DB_PASSWORD"`
	LegacyName     string `envconfig:"FASALBAJAR_DB_NAME"`
	LegacySSLMode  string `envconfig:"FASALBAJAR_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FASALBAJAR_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FASALBAJAR_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FASALBAJAR_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FASALBAJAR_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FASALBAJAR_REDIS_URL" required:"true"`
	Address      string        `envconfig:"FASALBAJAR_REDIS_ADDR"`
	Password     string        `envconfig:"FASALBAJAR_REDIS_PASSWORD"`
	DB           int           `envconfig:"FASALBAJAR_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FASALBAJAR_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FASALBAJAR_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FASALBAJAR_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FASALBAJAR_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FASALBAJAR_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"FASALBAJAR_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"FASALBAJAR_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"FASALBAJAR_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"FASALBAJAR_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"FASALBAJAR_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"FASALBAJAR_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"FASALBAJAR_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"FASALBAJAR_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"FASALBAJAR_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"FASALBAJAR_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"FASALBAJAR_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"FASALBAJAR_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"FASALBAJAR_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"FASALBAJAR_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"FASALBAJAR_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"FASALBAJAR_AUTO_MIGRATE" default:"false"`
}

type EsewaConfig struct {
	ProductCode string        `envconfig:"FASALBAJAR_ESEWA_PRODUCT_CODE" required:"true"`
	SecretKey   string        `envconfig:"FASALBAJAR_ESEWA_SECRET_KEY" required:"true"`
	Env         string        `envconfig:"FASALBAJAR_ESEWA_ENV" default:"sandbox"`
	SuccessURL  string        `envconfig:"FASALBAJAR_ESEWA_SUCCESS_URL" required:"true"`
	FailureURL  string        `envconfig:"FASALBAJAR_ESEWA_FAILURE_URL" required:"true"`
	Timeout     time.Duration `envconfig:"FASALBAJAR_ESEWA_TIMEOUT" default:"15s"`
}

// Environment returns the normalized eSewa environment (sandbox/production).
func (e EsewaConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(e.Env))
	if env == "" {
		return "sandbox"
	}
	return env
}

type GCPConfig struct {
	ProjectID string `envconfig:"FASALBAJAR_GCP_PROJECT_ID" required:"true"`
}

type PubSubConfig struct {
	NotificationTopic        string `envconfig:"FASALBAJAR_PUBSUB_NOTIFICATION_TOPIC" default:"fb-notification-events"`
	NotificationSubscription string `envconfig:"FASALBAJAR_PUBSUB_NOTIFICATION_SUBSCRIPTION" required:"true"`
}

func (db *DBConfig) ensureDSN() error {
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
