package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"

	SessionDriverMemory = "memory"
	SessionDriverRedis  = "redis"
)

type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	App      AppConfig
	Wizard   WizardConfig
	SMTP     SMTPConfig
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

type RedisConfig struct {
	URL      string
	PoolSize int
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration time.Duration
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	Version     string
	FrontendURL string
}

// SMTPConfig holds outgoing mail settings. An empty Host disables sending.
type SMTPConfig struct {
	Host              string
	Port              int
	Username          string
	Password          string
	From              string
	FromName          string
	InvitationBaseURL string
}

// WizardConfig holds wizard session configuration
type WizardConfig struct {
	SessionDriver string
	SessionTTL    time.Duration
	SweepInterval time.Duration
	StrictEmail   bool // validator.IsValidEmail instead of the local@domain.tld pattern
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
		slog.Debug("No .env file found, using process environment")
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	dbMaxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	dbMinConns, err := strconv.Atoi(getEnv("DB_MIN_CONNS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	config.Database = DatabaseConfig{
		Driver:   getEnv("STORAGE_DRIVER", StorageDriverPostgres),
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "mindlinks"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(dbMaxConns),
		MinConns: int32(dbMinConns),
	}

	// Redis configuration
	redisPoolSize, err := strconv.Atoi(getEnv("REDIS_POOL_SIZE", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_POOL_SIZE: %w", err)
	}

	config.Redis = RedisConfig{
		URL:      getEnv("REDIS_URL", "redis://localhost:6379/0"),
		PoolSize: redisPoolSize,
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Version:     getEnv("APP_VERSION", "v1.0.0"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
	}

	// JWT configuration
	jwtAccessExpiration, err := time.ParseDuration(getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}

	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: jwtAccessExpiration,
	}

	// Wizard configuration
	sessionTTL, err := time.ParseDuration(getEnv("WIZARD_SESSION_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid WIZARD_SESSION_TTL: %w", err)
	}

	sweepInterval, err := time.ParseDuration(getEnv("WIZARD_SWEEP_INTERVAL", "10m"))
	if err != nil {
		return nil, fmt.Errorf("invalid WIZARD_SWEEP_INTERVAL: %w", err)
	}

	config.Wizard = WizardConfig{
		SessionDriver: getEnv("SESSION_DRIVER", SessionDriverMemory),
		SessionTTL:    sessionTTL,
		SweepInterval: sweepInterval,
		StrictEmail:   getEnv("WIZARD_STRICT_EMAIL", "false") == "true",
	}

	// SMTP configuration
	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	invitationBaseURL := "http://localhost:3000/invitations"
	if origins := config.AllowedOrigins(); len(origins) > 0 {
		invitationBaseURL = origins[0] + "/invitations"
	}

	config.SMTP = SMTPConfig{
		Host:              getEnv("SMTP_HOST", ""),
		Port:              smtpPort,
		Username:          getEnv("SMTP_USERNAME", ""),
		Password:          getEnv("SMTP_PASSWORD", ""),
		From:              getEnv("SMTP_FROM", "no-reply@mind-links.io"),
		FromName:          getEnv("SMTP_FROM_NAME", "Mind-Links"),
		InvitationBaseURL: getEnv("INVITATION_BASE_URL", invitationBaseURL),
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.JWT.AccessExpiration <= 0 {
		return fmt.Errorf("JWT_ACCESS_EXPIRATION_TIME must be positive")
	}

	switch c.Database.Driver {
	case StorageDriverPostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required when STORAGE_DRIVER is %s", StorageDriverPostgres)
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.Database.Driver)
	}

	switch c.Wizard.SessionDriver {
	case SessionDriverRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("REDIS_URL is required when SESSION_DRIVER is %s", SessionDriverRedis)
		}
	case SessionDriverMemory:
	default:
		return fmt.Errorf("unsupported SESSION_DRIVER %q", c.Wizard.SessionDriver)
	}

	if c.Wizard.SessionTTL <= 0 {
		return fmt.Errorf("WIZARD_SESSION_TTL must be positive")
	}
	if c.Wizard.SweepInterval <= 0 {
		return fmt.Errorf("WIZARD_SWEEP_INTERVAL must be positive")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// AllowedOrigins returns the CORS origins from FRONTEND_URL (comma separated)
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.App.FrontendURL, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
