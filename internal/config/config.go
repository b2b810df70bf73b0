package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Routing  RoutingConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// RoutingConfig tunes the AI routing pipeline: where the scorer lives,
// how the call is bounded, and the policy knobs that previously lived
// as hardcoded constants.
type RoutingConfig struct {
	ScorerBaseURL      string
	AssignThreshold    float64
	TopN               int
	RequestTimeoutSec  int
	RetryAttempts      int
	RetryBackoffBaseMs int
	WorkerCount        int
	QueueCapacity      int
	TicketLockTTLSec   int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	threshold, err := strconv.ParseFloat(getEnv("ROUTING_ASSIGN_THRESHOLD", "80"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ROUTING_ASSIGN_THRESHOLD: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "ticket-routing-api"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Routing: RoutingConfig{
			ScorerBaseURL:      getEnv("ROUTING_SCORER_BASE_URL", "http://127.0.0.1:8000/pdf_search/query"),
			AssignThreshold:    threshold,
			TopN:               getEnvAsInt("ROUTING_TOP_N", 3),
			RequestTimeoutSec:  getEnvAsInt("ROUTING_REQUEST_TIMEOUT_SECONDS", 5),
			RetryAttempts:      getEnvAsInt("ROUTING_RETRY_ATTEMPTS", 2),
			RetryBackoffBaseMs: getEnvAsInt("ROUTING_RETRY_BACKOFF_BASE_MS", 200),
			WorkerCount:        getEnvAsInt("ROUTING_WORKER_COUNT", 4),
			QueueCapacity:      getEnvAsInt("ROUTING_QUEUE_CAPACITY", 256),
			TicketLockTTLSec:   getEnvAsInt("ROUTING_TICKET_LOCK_TTL_SECONDS", 30),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// RequestTimeout returns the per-attempt deadline for scorer calls.
func (r RoutingConfig) RequestTimeout() time.Duration {
	if r.RequestTimeoutSec <= 0 {
		return 5 * time.Second
	}
	return time.Duration(r.RequestTimeoutSec) * time.Second
}

// RetryBackoffBase returns the first retry delay; each further retry doubles it.
func (r RoutingConfig) RetryBackoffBase() time.Duration {
	if r.RetryBackoffBaseMs <= 0 {
		return 200 * time.Millisecond
	}
	return time.Duration(r.RetryBackoffBaseMs) * time.Millisecond
}

// TicketLockTTL returns how long a per-ticket routing lock may be held.
func (r RoutingConfig) TicketLockTTL() time.Duration {
	if r.TicketLockTTLSec <= 0 {
		return 30 * time.Second
	}
	return time.Duration(r.TicketLockTTLSec) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
