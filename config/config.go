// Package config handles loading and validation of application configuration
// from environment variables.
package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/NomadCrew/feedback-desk/logger"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Environment represents the application's running environment (development or production).
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"

	minJWTLength = 32
)

// StoreDriver selects the feedback persistence backend.
type StoreDriver string

const (
	StoreDriverMemory   StoreDriver = "memory"
	StoreDriverPostgres StoreDriver = "postgres"
)

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Environment    Environment `mapstructure:"ENVIRONMENT" yaml:"environment"`
	Port           string      `mapstructure:"PORT" yaml:"port"`
	AllowedOrigins []string    `mapstructure:"ALLOWED_ORIGINS" yaml:"allowed_origins"`
	Version        string      `mapstructure:"VERSION" yaml:"version"`
	// TrustedProxies lists the proxy IPs or CIDRs whose X-Forwarded-For is
	// believed. Empty means the client IP is the socket peer.
	TrustedProxies []string `mapstructure:"TRUSTED_PROXIES" yaml:"trusted_proxies"`
	// StaffJWTSecret signs staff tokens. Empty leaves staff routes open,
	// which is only accepted outside production.
	StaffJWTSecret string `mapstructure:"STAFF_JWT_SECRET" yaml:"staff_jwt_secret"`
}

// StoreConfig picks where feedback lives.
type StoreConfig struct {
	Driver   StoreDriver `mapstructure:"DRIVER" yaml:"driver"`
	SeedFile string      `mapstructure:"SEED_FILE" yaml:"seed_file"`
}

// DatabaseConfig holds PostgreSQL database connection details.
type DatabaseConfig struct {
	Host           string `mapstructure:"HOST" yaml:"host"`
	Port           int    `mapstructure:"PORT" yaml:"port"`
	User           string `mapstructure:"USER" yaml:"user"`
	Password       string `mapstructure:"PASSWORD" yaml:"password"`
	Name           string `mapstructure:"NAME" yaml:"name"`
	MaxConnections int    `mapstructure:"MAX_CONNECTIONS" yaml:"max_connections"`
	SSLMode        string `mapstructure:"SSL_MODE" yaml:"ssl_mode"`
	ConnMaxLife    string `mapstructure:"CONN_MAX_LIFE" yaml:"conn_max_life"`
}

// URL returns a postgres:// connection URL suitable for golang-migrate and
// pgxpool.
func (c *DatabaseConfig) URL() string {
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(c.User),
		url.QueryEscape(c.Password),
		c.Host,
		c.Port,
		c.Name,
		sslmode,
	)
}

// RedisConfig holds Redis connection details.
type RedisConfig struct {
	Enabled      bool   `mapstructure:"ENABLED" yaml:"enabled"`
	Address      string `mapstructure:"ADDRESS" yaml:"address"`
	Password     string `mapstructure:"PASSWORD" yaml:"password"`
	DB           int    `mapstructure:"DB" yaml:"db"`
	UseTLS       bool   `mapstructure:"USE_TLS" yaml:"use_tls"`
	PoolSize     int    `mapstructure:"POOL_SIZE" yaml:"pool_size"`
	MinIdleConns int    `mapstructure:"MIN_IDLE_CONNS" yaml:"min_idle_conns"`
}

// EmailConfig holds configuration for sending emails.
type EmailConfig struct {
	Enabled      bool   `mapstructure:"ENABLED" yaml:"enabled"`
	FromAddress  string `mapstructure:"FROM_ADDRESS" yaml:"from_address"`
	FromName     string `mapstructure:"FROM_NAME" yaml:"from_name"`
	ResendAPIKey string `mapstructure:"RESEND_API_KEY" yaml:"resend_api_key"`
}

// FeedbackConfig tunes the submission flow.
type FeedbackConfig struct {
	// StrictStatus rejects status values outside new, in-progress and
	// resolved.
	StrictStatus    bool `mapstructure:"STRICT_STATUS" yaml:"strict_status"`
	SubmitLatencyMs int  `mapstructure:"SUBMIT_LATENCY_MS" yaml:"submit_latency_ms"`
	ConfirmationMs  int  `mapstructure:"CONFIRMATION_MS" yaml:"confirmation_ms"`
}

func (c FeedbackConfig) SubmitLatency() time.Duration {
	return time.Duration(c.SubmitLatencyMs) * time.Millisecond
}

func (c FeedbackConfig) Confirmation() time.Duration {
	return time.Duration(c.ConfirmationMs) * time.Millisecond
}

// RateLimitConfig holds configuration for the public submission limiter.
type RateLimitConfig struct {
	SubmitRequestsPerMinute int `mapstructure:"SUBMIT_REQUESTS_PER_MINUTE" yaml:"submit_requests_per_minute"`
	WindowSeconds           int `mapstructure:"WINDOW_SECONDS" yaml:"window_seconds"`
}

// WorkerPoolConfig sizes the background pool that sends confirmation emails.
type WorkerPoolConfig struct {
	// MaxWorkers is the number of concurrent senders (default: 2)
	MaxWorkers int `mapstructure:"MAX_WORKERS" yaml:"max_workers"`
	// QueueSize is the maximum number of pending emails (default: 100)
	QueueSize int `mapstructure:"QUEUE_SIZE" yaml:"queue_size"`
	// ShutdownTimeoutSeconds bounds the wait for queued emails on shutdown (default: 10)
	ShutdownTimeoutSeconds int `mapstructure:"SHUTDOWN_TIMEOUT_SECONDS" yaml:"shutdown_timeout_seconds"`
}

func (c WorkerPoolConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// Config aggregates all configuration sections.
type Config struct {
	Server     ServerConfig     `mapstructure:"SERVER" yaml:"server"`
	Store      StoreConfig      `mapstructure:"STORE" yaml:"store"`
	Database   DatabaseConfig   `mapstructure:"DATABASE" yaml:"database"`
	Redis      RedisConfig      `mapstructure:"REDIS" yaml:"redis"`
	Email      EmailConfig      `mapstructure:"EMAIL" yaml:"email"`
	Feedback   FeedbackConfig   `mapstructure:"FEEDBACK" yaml:"feedback"`
	RateLimit  RateLimitConfig  `mapstructure:"RATE_LIMIT" yaml:"rate_limit"`
	WorkerPool WorkerPoolConfig `mapstructure:"WORKER_POOL" yaml:"worker_pool"`
}

// IsDevelopment returns true if the application is running in development environment.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == EnvDevelopment
}

// IsProduction returns true if the application is running in production environment.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == EnvProduction
}

// bindEnvVars binds multiple environment variables to config keys.
// Format: []{configKey, envVar}
func bindEnvVars(v *viper.Viper, bindings [][2]string) error {
	for _, b := range bindings {
		if err := v.BindEnv(b[0], b[1]); err != nil {
			return fmt.Errorf("failed to bind %s: %w", b[0], err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER.ENVIRONMENT", EnvDevelopment)
	v.SetDefault("SERVER.PORT", "8080")
	v.SetDefault("SERVER.ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("SERVER.VERSION", "dev")
	v.SetDefault("SERVER.TRUSTED_PROXIES", []string{})
	v.SetDefault("SERVER.STAFF_JWT_SECRET", "")
	v.SetDefault("STORE.DRIVER", StoreDriverMemory)
	v.SetDefault("STORE.SEED_FILE", "")
	v.SetDefault("DATABASE.HOST", "localhost")
	v.SetDefault("DATABASE.PORT", 5432)
	v.SetDefault("DATABASE.USER", "postgres")
	v.SetDefault("DATABASE.PASSWORD", "")
	v.SetDefault("DATABASE.NAME", "feedback_dev")
	v.SetDefault("DATABASE.SSL_MODE", "disable")
	v.SetDefault("DATABASE.MAX_CONNECTIONS", 10)
	v.SetDefault("DATABASE.CONN_MAX_LIFE", "1h")
	v.SetDefault("REDIS.ENABLED", false)
	v.SetDefault("REDIS.ADDRESS", "localhost:6379")
	v.SetDefault("REDIS.PASSWORD", "")
	v.SetDefault("REDIS.DB", 0)
	v.SetDefault("REDIS.USE_TLS", false)
	v.SetDefault("REDIS.POOL_SIZE", 3)
	v.SetDefault("REDIS.MIN_IDLE_CONNS", 1)
	v.SetDefault("EMAIL.ENABLED", false)
	v.SetDefault("EMAIL.FROM_ADDRESS", "")
	v.SetDefault("EMAIL.FROM_NAME", "Feedback Desk")
	v.SetDefault("EMAIL.RESEND_API_KEY", "")
	v.SetDefault("FEEDBACK.STRICT_STATUS", true)
	v.SetDefault("FEEDBACK.SUBMIT_LATENCY_MS", 0)
	v.SetDefault("FEEDBACK.CONFIRMATION_MS", 2000)
	v.SetDefault("RATE_LIMIT.SUBMIT_REQUESTS_PER_MINUTE", 10)
	v.SetDefault("RATE_LIMIT.WINDOW_SECONDS", 60)
	v.SetDefault("WORKER_POOL.MAX_WORKERS", 2)
	v.SetDefault("WORKER_POOL.QUEUE_SIZE", 100)
	v.SetDefault("WORKER_POOL.SHUTDOWN_TIMEOUT_SECONDS", 10)
	v.SetDefault("LOG_LEVEL", "info")
}

var envBindings = [][2]string{
	// Server config
	{"SERVER.ENVIRONMENT", "SERVER_ENVIRONMENT"},
	{"SERVER.PORT", "PORT"},
	{"SERVER.ALLOWED_ORIGINS", "ALLOWED_ORIGINS"},
	{"SERVER.VERSION", "VERSION"},
	{"SERVER.TRUSTED_PROXIES", "TRUSTED_PROXIES"},
	{"SERVER.STAFF_JWT_SECRET", "STAFF_JWT_SECRET"},
	// Store config
	{"STORE.DRIVER", "STORE_DRIVER"},
	{"STORE.SEED_FILE", "STORE_SEED_FILE"},
	// Database config
	{"DATABASE.HOST", "DB_HOST"},
	{"DATABASE.PORT", "DB_PORT"},
	{"DATABASE.USER", "DB_USER"},
	{"DATABASE.PASSWORD", "DB_PASSWORD"},
	{"DATABASE.NAME", "DB_NAME"},
	{"DATABASE.SSL_MODE", "DB_SSL_MODE"},
	{"DATABASE.MAX_CONNECTIONS", "DB_MAX_CONNECTIONS"},
	// Redis config
	{"REDIS.ENABLED", "REDIS_ENABLED"},
	{"REDIS.ADDRESS", "REDIS_ADDRESS"},
	{"REDIS.PASSWORD", "REDIS_PASSWORD"},
	{"REDIS.DB", "REDIS_DB"},
	{"REDIS.USE_TLS", "REDIS_USE_TLS"},
	// Email config
	{"EMAIL.ENABLED", "EMAIL_ENABLED"},
	{"EMAIL.FROM_ADDRESS", "EMAIL_FROM_ADDRESS"},
	{"EMAIL.FROM_NAME", "EMAIL_FROM_NAME"},
	{"EMAIL.RESEND_API_KEY", "RESEND_API_KEY"},
	// Feedback config
	{"FEEDBACK.STRICT_STATUS", "FEEDBACK_STRICT_STATUS"},
	{"FEEDBACK.SUBMIT_LATENCY_MS", "FEEDBACK_SUBMIT_LATENCY_MS"},
	{"FEEDBACK.CONFIRMATION_MS", "FEEDBACK_CONFIRMATION_MS"},
	// Rate limit config
	{"RATE_LIMIT.SUBMIT_REQUESTS_PER_MINUTE", "RATE_LIMIT_SUBMIT_REQUESTS_PER_MINUTE"},
	{"RATE_LIMIT.WINDOW_SECONDS", "RATE_LIMIT_WINDOW_SECONDS"},
	// WorkerPool config
	{"WORKER_POOL.MAX_WORKERS", "WORKER_POOL_MAX_WORKERS"},
	{"WORKER_POOL.QUEUE_SIZE", "WORKER_POOL_QUEUE_SIZE"},
	{"WORKER_POOL.SHUTDOWN_TIMEOUT_SECONDS", "WORKER_POOL_SHUTDOWN_TIMEOUT_SECONDS"},
}

// LoadConfig loads configuration from environment variables using Viper,
// sets default values, binds environment variables to config struct fields,
// unmarshals the configuration, and validates it.
func LoadConfig() (*Config, error) {
	v := viper.New()
	log := logger.GetLogger()

	setDefaults(v)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := bindEnvVars(v, envBindings); err != nil {
		return nil, err
	}

	log.Infow("Configuration loaded",
		"environment", v.GetString("SERVER.ENVIRONMENT"),
		"server_port", v.GetString("SERVER.PORT"),
		"store_driver", v.GetString("STORE.DRIVER"),
		"redis_enabled", v.GetBool("REDIS.ENABLED"),
		"email_enabled", v.GetBool("EMAIL.ENABLED"),
		"strict_status", v.GetBool("FEEDBACK.STRICT_STATUS"),
		"allowed_origins", v.GetStringSlice("SERVER.ALLOWED_ORIGINS"),
	)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal failed: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	log.Info("Configuration validated successfully")
	return &cfg, nil
}

// validateConfig checks if the loaded configuration values are valid.
func validateConfig(cfg *Config) error {
	log := logger.GetLogger()

	// Validate Server Config
	switch cfg.Server.Environment {
	case EnvDevelopment, EnvProduction:
	default:
		return fmt.Errorf("unknown environment %q", cfg.Server.Environment)
	}
	if cfg.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if cfg.Server.StaffJWTSecret == "" {
		if cfg.IsProduction() {
			return fmt.Errorf("staff JWT secret is required in production")
		}
		log.Warn("Staff JWT secret is not set; staff routes will be open. Do not use outside development.")
	} else if len(cfg.Server.StaffJWTSecret) < minJWTLength {
		return fmt.Errorf("staff JWT secret must be at least %d characters long", minJWTLength)
	}
	if !containsWildcard(cfg.Server.AllowedOrigins) {
		for _, origin := range cfg.Server.AllowedOrigins {
			if _, err := url.ParseRequestURI(origin); err != nil {
				return fmt.Errorf("invalid allowed origin '%s': %w", origin, err)
			}
		}
	}

	for _, proxy := range cfg.Server.TrustedProxies {
		if net.ParseIP(proxy) != nil {
			continue
		}
		if _, _, err := net.ParseCIDR(proxy); err != nil {
			return fmt.Errorf("invalid trusted proxy '%s': must be an IP or CIDR", proxy)
		}
	}

	// Validate Store Config
	switch cfg.Store.Driver {
	case StoreDriverMemory:
	case StoreDriverPostgres:
		if err := validateDatabaseConfig(&cfg.Database, log); err != nil {
			return err
		}
		if cfg.Store.SeedFile != "" {
			log.Warn("Seed file is only loaded by the memory store; ignoring it")
		}
	default:
		return fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	// Validate Redis Config
	if cfg.Redis.Enabled && cfg.Redis.Address == "" {
		return fmt.Errorf("redis address is required when redis is enabled")
	}
	if cfg.Redis.Password == "" && cfg.Redis.UseTLS {
		log.Warn("Redis password is not set, but TLS is enabled. Ensure this is correct for your Redis provider.")
	}

	if err := validateEmailConfig(&cfg.Email, log); err != nil {
		return err
	}

	// The worker pool only runs when confirmation emails are sent.
	if cfg.Email.Enabled {
		if cfg.WorkerPool.MaxWorkers <= 0 {
			return fmt.Errorf("worker pool max workers must be positive")
		}
		if cfg.WorkerPool.QueueSize <= 0 {
			return fmt.Errorf("worker pool queue size must be positive")
		}
		if cfg.WorkerPool.ShutdownTimeoutSeconds <= 0 {
			return fmt.Errorf("worker pool shutdown timeout must be positive")
		}
	}

	// Validate Feedback Config
	if cfg.Feedback.SubmitLatencyMs < 0 {
		return fmt.Errorf("submit latency must not be negative")
	}
	if cfg.Feedback.ConfirmationMs < 0 {
		return fmt.Errorf("confirmation interval must not be negative")
	}

	// Validate RateLimit config
	if cfg.RateLimit.SubmitRequestsPerMinute <= 0 {
		return fmt.Errorf("rate limit submit requests per minute must be positive")
	}
	if cfg.RateLimit.WindowSeconds <= 0 {
		return fmt.Errorf("rate limit window seconds must be positive")
	}

	return nil
}

func validateDatabaseConfig(db *DatabaseConfig, log *zap.SugaredLogger) error {
	if db.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if db.User == "" {
		return fmt.Errorf("database user is required")
	}
	if db.Password == "" {
		log.Warn("Database password is not set. Ensure this is intended (e.g., using trusted auth).")
	}
	if db.Name == "" {
		return fmt.Errorf("database name is required")
	}
	if db.MaxConnections <= 0 {
		return fmt.Errorf("database max connections must be positive")
	}
	return nil
}

// validateEmailConfig auto-disables confirmation emails when no API key is
// configured.
func validateEmailConfig(cfg *EmailConfig, log *zap.SugaredLogger) error {
	if !cfg.Enabled {
		return nil
	}
	if cfg.ResendAPIKey == "" {
		log.Warn("Resend API key not set, auto-disabling confirmation emails")
		cfg.Enabled = false
		return nil
	}
	if cfg.FromAddress == "" {
		return fmt.Errorf("email from address is required when email is enabled")
	}
	return nil
}

// containsWildcard checks if the list of allowed origins contains the wildcard "*".
func containsWildcard(origins []string) bool {
	for _, origin := range origins {
		if origin == "*" {
			return true
		}
	}
	return false
}
