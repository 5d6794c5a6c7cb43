package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Query     QueryConfig
	Breaker   BreakerConfig
}

type AppConfig struct {
	Name            string        `mapstructure:"name" validate:"required"`
	Environment     string        `mapstructure:"environment" validate:"oneof=development staging production"`
	Port            string        `mapstructure:"port" validate:"required,numeric"`
	LogsPath        string        `mapstructure:"logs_path" validate:"required"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host" validate:"required"`
	Port            int           `mapstructure:"port" validate:"gt=0,lte=65535"`
	Name            string        `mapstructure:"name" validate:"required"`
	User            string        `mapstructure:"user" validate:"required"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"sslmode" validate:"oneof=disable allow prefer require verify-ca verify-full"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"gte=0"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"gt=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"gte=0"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time" validate:"gte=0"`
}

type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Host         string        `mapstructure:"host" validate:"required_if=Enabled true"`
	Port         int           `mapstructure:"port" validate:"gt=0,lte=65535"`
	Password     string        `mapstructure:"password"`
	Database     int           `mapstructure:"database" validate:"gte=0"`
	PoolSize     int           `mapstructure:"pool_size" validate:"gt=0"`
	MinIdleConns int           `mapstructure:"min_idle_conns" validate:"gte=0"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	CountTTL     time.Duration `mapstructure:"count_ttl" validate:"gt=0"`
}

type RateLimitConfig struct {
	Request  int           `mapstructure:"request" validate:"gte=0"`
	Duration time.Duration `mapstructure:"duration" validate:"gt=0"`
}

type QueryConfig struct {
	Timeout         time.Duration `mapstructure:"timeout" validate:"gt=0"`
	MaxLimit        int           `mapstructure:"max_limit" validate:"gte=0"`
	DatasetsFile    string        `mapstructure:"datasets_file"`
	DiscoverColumns bool          `mapstructure:"discover_columns"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval" validate:"gte=0"`
}

type BreakerConfig struct {
	Threshold        int           `mapstructure:"threshold" validate:"gt=0"`
	Timeout          time.Duration `mapstructure:"timeout" validate:"gt=0"`
	SuccessThreshold int           `mapstructure:"success_threshold" validate:"gt=0"`
}

func LoadConfig() (*Config, error) {
	// A missing .env file is fine; the process environment still applies.
	_ = godotenv.Load()

	config := &Config{
		App: AppConfig{
			Name:            getEnv("APP_NAME", "openpayments-api"),
			Environment:     getEnv("APP_ENV", "development"),
			Port:            getEnv("APP_PORT", "3000"),
			LogsPath:        getEnv("LOGS_PATH", "./logs"),
			ShutdownTimeout: getEnvAsDuration("APP_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			Name:            getEnv("DB_NAME", "openpaymentdata"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 50),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", time.Hour),
			ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 10*time.Minute),
		},
		Redis: RedisConfig{
			Enabled:      getEnvAsBool("REDIS_ENABLED", false),
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnvAsInt("REDIS_PORT", 6379),
			Password:     getEnv("REDIS_PASSWORD", ""),
			Database:     getEnvAsInt("REDIS_DB", 0),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getEnvAsDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getEnvAsDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getEnvAsDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
			CountTTL:     getEnvAsDuration("COUNT_CACHE_TTL", time.Minute),
		},
		RateLimit: RateLimitConfig{
			Request:  getEnvAsInt("RATE_LIMIT_MAX_REQUEST", 100),
			Duration: getEnvAsDuration("RATE_LIMIT_DURATION", time.Minute),
		},
		Query: QueryConfig{
			Timeout:         getEnvAsDuration("QUERY_TIMEOUT", 15*time.Second),
			MaxLimit:        getEnvAsInt("QUERY_MAX_LIMIT", 0),
			DatasetsFile:    getEnv("DATASETS_FILE", ""),
			DiscoverColumns: getEnvAsBool("DATASET_DISCOVER_COLUMNS", true),
			RefreshInterval: getEnvAsDuration("DATASET_REFRESH_INTERVAL", 0),
		},
		Breaker: BreakerConfig{
			Threshold:        getEnvAsInt("BREAKER_THRESHOLD", 5),
			Timeout:          getEnvAsDuration("BREAKER_TIMEOUT", 30*time.Second),
			SuccessThreshold: getEnvAsInt("BREAKER_SUCCESS_THRESHOLD", 2),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the loaded values against the struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func (c *Config) DatabaseConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func (c *Config) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		boolValue, err := strconv.ParseBool(value)
		if err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
