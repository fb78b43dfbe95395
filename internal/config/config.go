package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
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
	Seed     SeedConfig
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

// SeedConfig controls first-run provisioning of demo data.
type SeedConfig struct {
	Enabled bool
}

const devJWTSecret = "helpdesk-dev-key-change-in-prod"

// Load reads configuration from the environment after applying envFiles
// through godotenv; a missing file is not an error. Malformed values and
// failed validation are reported together.
func Load(envFiles ...string) (*Config, error) {
	_ = godotenv.Load(envFiles...)

	var env envReader
	cfg := &Config{
		App: AppConfig{
			Name:                  env.text("APP_NAME", "HelpDesk Pro"),
			Env:                   env.text("APP_ENV", "development"),
			Host:                  env.text("APP_HOST", "0.0.0.0"),
			Port:                  env.text("APP_PORT", "8080"),
			Version:               env.text("APP_VERSION", "1.0.0"),
			RequestTimeoutSeconds: env.integer("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            env.text("POSTGRES_DSN", ""),
			MaxConns:       int32(env.integer("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(env.integer("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  env.boolean("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(env.integer("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(env.integer("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     env.text("REDIS_ADDR", "127.0.0.1:6379"),
			Password: env.text("REDIS_PASSWORD", ""),
			DB:       env.integer("REDIS_DB", 0),
		},
		Logger: LoggerConfig{
			Level: env.text("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             env.text("AUTH_JWT_SECRET", devJWTSecret),
			AccessTokenTTLMinutes: env.integer("AUTH_ACCESS_TOKEN_TTL_MINUTES", 480),
			BcryptCost:            env.integer("AUTH_BCRYPT_COST", 12),
		},
		Seed: SeedConfig{
			Enabled: env.boolean("SEED_DEMO_DATA", false),
		},
	}
	if err := errors.Join(env.errs, cfg.Validate()); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	var errs []error
	if c.Postgres.DSN == "" {
		errs = append(errs, errors.New("POSTGRES_DSN is required"))
	}
	if port, err := strconv.Atoi(c.App.Port); err != nil || port <= 0 || port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT %q is not a valid port", c.App.Port))
	}
	if c.Postgres.MinConns > c.Postgres.MaxConns {
		errs = append(errs, fmt.Errorf("POSTGRES_MIN_CONNS (%d) exceeds POSTGRES_MAX_CONNS (%d)", c.Postgres.MinConns, c.Postgres.MaxConns))
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("AUTH_BCRYPT_COST %d outside 4..31", c.Auth.BcryptCost))
	}
	if c.App.Env == "production" && (c.Auth.JWTSecret == "" || c.Auth.JWTSecret == devJWTSecret) {
		errs = append(errs, errors.New("AUTH_JWT_SECRET must be set in production"))
	}
	return errors.Join(errs...)
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

// TokenTTL returns the access token lifetime.
func (a AuthConfig) TokenTTL() time.Duration {
	if a.AccessTokenTTLMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(a.AccessTokenTTLMinutes) * time.Minute
}

// envReader reads typed variables and remembers every malformed one.
type envReader struct {
	errs error
}

func (r *envReader) text(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func (r *envReader) integer(key string, fallback int) int {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		r.errs = errors.Join(r.errs, fmt.Errorf("invalid %s: %q is not an integer", key, val))
		return fallback
	}
	return parsed
}

func (r *envReader) boolean(key string, fallback bool) bool {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		r.errs = errors.Join(r.errs, fmt.Errorf("invalid %s: %q is not a boolean", key, val))
		return fallback
	}
	return parsed
}
