package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	Log      LogConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Payroll  PayrollConfig
	CORS     CORSConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Name    string `envconfig:"APP_NAME" default:"payroll-engine"`
	Version string `envconfig:"APP_VERSION" default:"v1.0.0"`
	Env     string `envconfig:"APP_ENV" default:"development"`
	Port    int    `envconfig:"APP_PORT" default:"8080"`
}

type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"json"`
}

type DatabaseConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD"`
	Name     string `envconfig:"DB_NAME" default:"payroll"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
}

// RedisConfig holds the address used for distributed locks and the job
// queue. An empty address runs the API with in-process locks and no queue.
type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string `envconfig:"JWT_SECRET_KEY"`
	AccessExpiration string `envconfig:"JWT_ACCESS_EXPIRATION_TIME" default:"1h"`
}

type PayrollConfig struct {
	GenerationConcurrency int           `envconfig:"PAYROLL_GENERATION_CONCURRENCY" default:"4"`
	LockTTL               time.Duration `envconfig:"PAYROLL_LOCK_TTL" default:"30s"`
	ScheduleEnabled       bool          `envconfig:"PAYROLL_SCHEDULE_ENABLED" default:"false"`
	ScheduleInterval      time.Duration `envconfig:"PAYROLL_SCHEDULE_INTERVAL" default:"1h"`
	GenerateRateLimit     int           `envconfig:"PAYROLL_GENERATE_RATE_LIMIT" default:"10"`
	WorkerConcurrency     int           `envconfig:"PAYROLL_WORKER_CONCURRENCY" default:"2"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{}
	sections := []interface{}{
		&config.App,
		&config.Log,
		&config.Database,
		&config.Redis,
		&config.JWT,
		&config.Payroll,
		&config.CORS,
	}
	for _, section := range sections {
		if err := envconfig.Process("", section); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if !c.IsDevelopment() {
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
		if c.JWT.Secret == "" {
			return fmt.Errorf("JWT_SECRET_KEY is required")
		}
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}
	if c.Payroll.GenerationConcurrency < 1 {
		return fmt.Errorf("PAYROLL_GENERATION_CONCURRENCY must be at least 1")
	}
	if c.Payroll.LockTTL <= 0 {
		return fmt.Errorf("PAYROLL_LOCK_TTL must be positive")
	}
	if c.Payroll.ScheduleEnabled && c.Redis.Addr == "" {
		return fmt.Errorf("REDIS_ADDR is required when PAYROLL_SCHEDULE_ENABLED is set")
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or text")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
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
