package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Mongo        MongoConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Notification NotificationConfig
	Assignment   AssignmentConfig
	Lock         LockConfig
	Seed         SeedConfig
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
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MongoConfig holds the document store connection used by the mongo notification backend.
type MongoConfig struct {
	URI      string
	Database string
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

// Notification store backends.
const (
	NotificationStorePostgres = "postgres"
	NotificationStoreMongo    = "mongo"
)

// NotificationConfig selects where notifications live and where they are forwarded.
type NotificationConfig struct {
	Store                string
	WebhookURL           string
	WebhookTimeoutMillis int
}

// Load policies for the ticket load aggregator.
const (
	LoadPolicyLifetime = "lifetime"
	LoadPolicyOpen     = "open"
)

// AssignmentConfig tunes staff auto-assignment.
type AssignmentConfig struct {
	LoadPolicy                string
	CollaboratorTimeoutMillis int
}

// Lock backends.
const (
	LockBackendLocal = "local"
	LockBackendRedis = "redis"
)

// LockConfig configures the per-ticket serialization point.
type LockConfig struct {
	Backend         string
	TTLMillis       int
	RetryIntervalMs int
}

// SeedConfig controls the bootstrap account set.
type SeedConfig struct {
	Bootstrap       bool
	DefaultPassword string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "helpdesk-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "7000"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Mongo: MongoConfig{
			URI:      os.Getenv("MONGO_URL"),
			Database: getEnv("MONGO_DATABASE", "Ticketing"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Notification: NotificationConfig{
			Store:                strings.ToLower(getEnv("NOTIFY_STORE", NotificationStorePostgres)),
			WebhookURL:           getEnv("NOTIFY_WEBHOOK_URL", ""),
			WebhookTimeoutMillis: getEnvAsInt("NOTIFY_WEBHOOK_TIMEOUT_MS", 3000),
		},
		Assignment: AssignmentConfig{
			LoadPolicy:                strings.ToLower(getEnv("ASSIGNMENT_LOAD_POLICY", LoadPolicyLifetime)),
			CollaboratorTimeoutMillis: getEnvAsInt("ASSIGNMENT_COLLABORATOR_TIMEOUT_MS", 5000),
		},
		Lock: LockConfig{
			Backend:         strings.ToLower(getEnv("LOCK_BACKEND", LockBackendLocal)),
			TTLMillis:       getEnvAsInt("LOCK_TTL_MS", 10000),
			RetryIntervalMs: getEnvAsInt("LOCK_RETRY_INTERVAL_MS", 50),
		},
		Seed: SeedConfig{
			Bootstrap:       getEnvAsBool("SEED_BOOTSTRAP", true),
			DefaultPassword: getEnv("SEED_DEFAULT_PASSWORD", ""),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Notification.Store {
	case NotificationStorePostgres:
	case NotificationStoreMongo:
		if c.Mongo.URI == "" {
			return fmt.Errorf("NOTIFY_STORE=mongo requires MONGO_URL")
		}
	default:
		return fmt.Errorf("invalid NOTIFY_STORE: %q", c.Notification.Store)
	}
	switch c.Assignment.LoadPolicy {
	case LoadPolicyLifetime, LoadPolicyOpen:
	default:
		return fmt.Errorf("invalid ASSIGNMENT_LOAD_POLICY: %q", c.Assignment.LoadPolicy)
	}
	switch c.Lock.Backend {
	case LockBackendLocal:
	case LockBackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("LOCK_BACKEND=redis requires REDIS_ADDR")
		}
	default:
		return fmt.Errorf("invalid LOCK_BACKEND: %q", c.Lock.Backend)
	}
	return nil
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

// CollaboratorTimeout bounds directory and aggregator reads during assignment.
func (a AssignmentConfig) CollaboratorTimeout() time.Duration {
	return millis(a.CollaboratorTimeoutMillis)
}

// WebhookTimeout bounds a single webhook delivery.
func (n NotificationConfig) WebhookTimeout() time.Duration {
	return millis(n.WebhookTimeoutMillis)
}

// TTL returns the lease duration for distributed locks.
func (l LockConfig) TTL() time.Duration {
	return millis(l.TTLMillis)
}

// RetryInterval returns the wait between lock acquisition attempts.
func (l LockConfig) RetryInterval() time.Duration {
	return millis(l.RetryIntervalMs)
}

func millis(v int) time.Duration {
	if v <= 0 {
		return 0
	}
	return time.Duration(v) * time.Millisecond
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
