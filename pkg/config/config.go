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

	AppEnvDev  = "development"
	AppEnvProd = "production"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Access        AccessConfig
	Payment       PaymentConfig
	Tron          TronConfig
	Gemini        GeminiConfig
	SMTP          SMTPConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	FeatureFlags  FeatureFlagsConfig
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
	Env          string `envconfig:"ALGOBROS_APP_ENV" required:"true"`
	Port         string `envconfig:"ALGOBROS_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"ALGOBROS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ALGOBROS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"ALGOBROS_DB_DSN"`
	Driver string `envconfig:"ALGOBROS_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"ALGOBROS_DB_HOST"`
	Port     int    `envconfig:"ALGOBROS_DB_PORT" default:"5432"`
	User     string `envconfig:"ALGOBROS_DB_USER"`
	Password string `envconfig:"ALGOBROS_DB_PASSWORD"`
	Name     string `envconfig:"ALGOBROS_DB_NAME"`
	SSLMode  string `envconfig:"ALGOBROS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ALGOBROS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ALGOBROS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ALGOBROS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ALGOBROS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (d *DBConfig) ensureDSN() error {
	if strings.TrimSpace(d.DSN) != "" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("database DSN or host/user/name settings are required")
	}
	d.DSN = fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(d.User),
		url.QueryEscape(d.Password),
		d.Host,
		d.Port,
		d.Name,
		d.SSLMode,
	)
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"ALGOBROS_REDIS_URL"`
	Address      string        `envconfig:"ALGOBROS_REDIS_ADDR"`
	Password     string        `envconfig:"ALGOBROS_REDIS_PASSWORD"`
	DB           int           `envconfig:"ALGOBROS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ALGOBROS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ALGOBROS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ALGOBROS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ALGOBROS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ALGOBROS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"ALGOBROS_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"ALGOBROS_JWT_ISSUER" default:"algobros-terminal"`
	ExpirationMinutes      int    `envconfig:"ALGOBROS_JWT_EXPIRATION_MINUTES" default:"60"`
	RefreshTokenTTLMinutes int    `envconfig:"ALGOBROS_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"ALGOBROS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"ALGOBROS_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"ALGOBROS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"ALGOBROS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"ALGOBROS_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"ALGOBROS_LOGIN_RATE_WINDOW" default:"1m"`
	LoginIPLimit    int64         `envconfig:"ALGOBROS_LOGIN_RATE_IP_LIMIT" default:"10"`
	LoginEmailLimit int64         `envconfig:"ALGOBROS_LOGIN_RATE_EMAIL_LIMIT" default:"5"`

	RegisterWindow     time.Duration `envconfig:"ALGOBROS_REGISTER_RATE_WINDOW" default:"1h"`
	RegisterIPLimit    int64         `envconfig:"ALGOBROS_REGISTER_RATE_IP_LIMIT" default:"10"`
	RegisterEmailLimit int64         `envconfig:"ALGOBROS_REGISTER_RATE_EMAIL_LIMIT" default:"3"`

	VerifyWindow  time.Duration `envconfig:"ALGOBROS_VERIFY_RATE_WINDOW" default:"1m"`
	VerifyIPLimit int64         `envconfig:"ALGOBROS_VERIFY_RATE_IP_LIMIT" default:"10"`
}

// AccessConfig tunes access-state evaluation. The grace window absorbs
// clock/replication skew between payment confirmation and profile refresh.
type AccessConfig struct {
	GraceSeconds int `envconfig:"ALGOBROS_ACCESS_GRACE_SECONDS" default:"10"`
}

func (a AccessConfig) Grace() time.Duration {
	return time.Duration(a.GraceSeconds) * time.Second
}

// PaymentConfig carries the activation-code rules and USDT thresholds. The
// defaults mirror the launch values; the override codes and operator address
// are deployment configuration, not law.
type PaymentConfig struct {
	OperatorEmail string   `envconfig:"ALGOBROS_OPERATOR_EMAIL" default:"AlgobrosIA@gmail.com"`
	AdminCodes    []string `envconfig:"ALGOBROS_ADMIN_CODES" default:"ADMIN2025,ALGOBROS_ADMIN,MASTER,BYPASS,ADMIN,ALGOBROSADMIN"`
	Gift24hPrefix string   `envconfig:"ALGOBROS_GIFT_24H_PREFIX" default:"ALG-BROS-24H-"`
	GiftPrefix    string   `envconfig:"ALGOBROS_GIFT_PREFIX" default:"ALG-BROS-"`
	MinCodeLength int      `envconfig:"ALGOBROS_MIN_CODE_LENGTH" default:"20"`

	ReceivingAddress string `envconfig:"ALGOBROS_RECEIVING_ADDRESS" default:"TNWsbmaDnAwiGha6D6ymwQjPvYb7VePgJV"`
	TokenSymbol      string `envconfig:"ALGOBROS_TOKEN_SYMBOL" default:"USDT"`
	MinAmount        string `envconfig:"ALGOBROS_MIN_AMOUNT" default:"8"`
	YearlyAmount     string `envconfig:"ALGOBROS_YEARLY_AMOUNT" default:"80"`
}

type TronConfig struct {
	BaseURL string        `envconfig:"ALGOBROS_TRONSCAN_BASE_URL" default:"https://apilist.tronscan.org/api"`
	Timeout time.Duration `envconfig:"ALGOBROS_TRONSCAN_TIMEOUT" default:"15s"`
}

type GeminiConfig struct {
	APIKey         string        `envconfig:"ALGOBROS_GEMINI_API_KEY"`
	Model          string        `envconfig:"ALGOBROS_GEMINI_MODEL" default:"gemini-3-pro-preview"`
	BaseURL        string        `envconfig:"ALGOBROS_GEMINI_BASE_URL" default:"https://generativelanguage.googleapis.com/v1beta"`
	Timeout        time.Duration `envconfig:"ALGOBROS_GEMINI_TIMEOUT" default:"120s"`
	ThinkingBudget int           `envconfig:"ALGOBROS_GEMINI_THINKING_BUDGET" default:"32768"`
}

type SMTPConfig struct {
	Host     string `envconfig:"ALGOBROS_SMTP_HOST"`
	Port     string `envconfig:"ALGOBROS_SMTP_PORT" default:"587"`
	User     string `envconfig:"ALGOBROS_SMTP_USER"`
	Password string `envconfig:"ALGOBROS_SMTP_PASSWORD"`
	From     string `envconfig:"ALGOBROS_SMTP_FROM"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"ALGOBROS_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	DomainTopic        string `envconfig:"ALGOBROS_PUBSUB_DOMAIN_TOPIC" default:"terminal-domain-events"`
	DomainSubscription string `envconfig:"ALGOBROS_PUBSUB_DOMAIN_SUBSCRIPTION" default:"terminal-domain-events-worker"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"ALGOBROS_AUTO_MIGRATE" default:"false"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"ALGOBROS_OUTBOX_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"ALGOBROS_OUTBOX_POLL_INTERVAL_MS" default:"500"`
	MaxAttempts    int `envconfig:"ALGOBROS_OUTBOX_MAX_ATTEMPTS" default:"10"`
}
