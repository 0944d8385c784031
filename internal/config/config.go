// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage backends accepted by STORAGE_BACKEND.
const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Env  string `mapstructure:"APP_ENV"`
	Host string `mapstructure:"HOST"`
	Port string `mapstructure:"PORT"`

	CORSOrigins string `mapstructure:"CORS_ORIGINS"`

	SessionExpirySeconds  int  `mapstructure:"SESSION_EXPIRY_TIME"`
	SessionCleanupSeconds int  `mapstructure:"SESSION_CLEANUP_INTERVAL"`
	CookieSecure          bool `mapstructure:"COOKIE_SECURE"`
	BcryptCost            int  `mapstructure:"BCRYPT_COST"`

	RedisURL                   string `mapstructure:"REDIS_URL"`
	RateLimitWindowSeconds     int    `mapstructure:"RATE_LIMIT_WINDOW"`
	RateLimitMaxRequests       int    `mapstructure:"RATE_LIMIT_MAX_REQUESTS"`
	LoginRateLimitWindow       int    `mapstructure:"LOGIN_RATE_LIMIT_WINDOW"`
	LoginRateLimitMaxAttempts  int    `mapstructure:"LOGIN_RATE_LIMIT_MAX_ATTEMPTS"`
	SignupRateLimitMaxAttempts int    `mapstructure:"SIGNUP_RATE_LIMIT_MAX_ATTEMPTS"`

	MaxFileSize       int64  `mapstructure:"MAX_FILE_SIZE"`
	AllowedImageTypes string `mapstructure:"ALLOWED_IMAGE_TYPES"`
	BEAPIURL          string `mapstructure:"BE_API_URL"`
	UploadDir         string `mapstructure:"UPLOAD_DIR"`
	StorageBackend    string `mapstructure:"STORAGE_BACKEND"`
	S3BucketName      string `mapstructure:"S3_BUCKET_NAME"`
	AWSRegion         string `mapstructure:"AWS_REGION"`
	AWSAccessKeyID    string `mapstructure:"AWS_ACCESS_KEY_ID"`
	AWSSecretKey      string `mapstructure:"AWS_SECRET_ACCESS_KEY"`
	S3PublicBaseURL   string `mapstructure:"S3_PUBLIC_BASE_URL"`

	LogLevel           string  `mapstructure:"LOG_LEVEL"`
	TracingEnabled     bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter    string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint       string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSampleRatio float64 `mapstructure:"TRACING_SAMPLE_RATIO"`

	DBDriver                 string `mapstructure:"DB_DRIVER"`
	DBHost                   string `mapstructure:"DB_HOST"`
	DBPort                   string `mapstructure:"DB_PORT"`
	DBUser                   string `mapstructure:"DB_USER"`
	DBPassword               string `mapstructure:"DB_PASSWORD"`
	DBName                   string `mapstructure:"DB_NAME"`
	DBSSLMode                string `mapstructure:"DB_SSLMODE"`
	DBSQLitePath             string `mapstructure:"DB_SQLITE_PATH"`
	DBSchemaMode             string `mapstructure:"DB_SCHEMA_MODE"`
	DBMaxOpenConns           int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns           int    `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBConnMaxLifetimeMinutes int    `mapstructure:"DB_CONN_MAX_LIFETIME_MINUTES"`
}

// LoadConfig loads application configuration from .env, config files and environment variables.
func LoadConfig() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// We intentionally ignore this error as the config file may not exist yet
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "test" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	setDefaults()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	config.normalize()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("HOST", "0.0.0.0")
	viper.SetDefault("PORT", "8000")
	viper.SetDefault("CORS_ORIGINS", "http://127.0.0.1:5500,http://localhost:5173")

	viper.SetDefault("SESSION_EXPIRY_TIME", 86400)
	viper.SetDefault("SESSION_CLEANUP_INTERVAL", 3600)
	viper.SetDefault("COOKIE_SECURE", false)
	viper.SetDefault("BCRYPT_COST", 10)

	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("RATE_LIMIT_WINDOW", 60)
	viper.SetDefault("RATE_LIMIT_MAX_REQUESTS", 100)
	viper.SetDefault("LOGIN_RATE_LIMIT_WINDOW", 60)
	viper.SetDefault("LOGIN_RATE_LIMIT_MAX_ATTEMPTS", 5)
	viper.SetDefault("SIGNUP_RATE_LIMIT_MAX_ATTEMPTS", 10)

	viper.SetDefault("MAX_FILE_SIZE", 10*1024*1024)
	viper.SetDefault("ALLOWED_IMAGE_TYPES", "image/jpeg,image/jpg,image/png")
	viper.SetDefault("BE_API_URL", "http://127.0.0.1:8000")
	viper.SetDefault("UPLOAD_DIR", "upload")
	viper.SetDefault("STORAGE_BACKEND", StorageLocal)
	viper.SetDefault("AWS_REGION", "ap-northeast-2")

	viper.SetDefault("LOG_LEVEL", "INFO")
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("TRACING_SAMPLE_RATIO", 1.0)

	viper.SetDefault("DB_DRIVER", "postgres")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "puppytalk")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_SQLITE_PATH", "puppytalk.db")
	viper.SetDefault("DB_SCHEMA_MODE", "hybrid")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 5)
}

func (c *Config) normalize() {
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	c.DBSSLMode = strings.ToLower(strings.TrimSpace(c.DBSSLMode))
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	c.StorageBackend = strings.ToLower(strings.TrimSpace(c.StorageBackend))
	c.LogLevel = strings.ToUpper(strings.TrimSpace(c.LogLevel))
	c.BEAPIURL = strings.TrimRight(strings.TrimSpace(c.BEAPIURL), "/")
}

// IsProduction reports whether the config targets a production deployment.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// SessionTTL returns the lifetime of a login session.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionExpirySeconds) * time.Second
}

// SessionCleanupInterval returns how often expired sessions are swept. Zero disables the periodic sweep.
func (c *Config) SessionCleanupInterval() time.Duration {
	return time.Duration(c.SessionCleanupSeconds) * time.Second
}

// AllowedImageTypeList splits ALLOWED_IMAGE_TYPES into trimmed, lower-cased MIME types.
func (c *Config) AllowedImageTypeList() []string {
	return splitList(c.AllowedImageTypes, true)
}

// CORSOriginList splits CORS_ORIGINS into trimmed origins.
func (c *Config) CORSOriginList() []string {
	return splitList(c.CORSOrigins, false)
}

func splitList(raw string, lower bool) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if lower {
			part = strings.ToLower(part)
		}
		out = append(out, part)
	}
	return out
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.SessionExpirySeconds <= 0 {
		return errors.New("SESSION_EXPIRY_TIME must be positive")
	}
	if c.SessionCleanupSeconds < 0 {
		return errors.New("SESSION_CLEANUP_INTERVAL must not be negative")
	}
	if c.MaxFileSize <= 0 {
		return errors.New("MAX_FILE_SIZE must be positive")
	}
	if c.RateLimitWindowSeconds <= 0 || c.RateLimitMaxRequests <= 0 {
		return errors.New("RATE_LIMIT_WINDOW and RATE_LIMIT_MAX_REQUESTS must be positive")
	}

	switch c.DBDriver {
	case "", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	switch c.StorageBackend {
	case "", StorageLocal:
	case StorageS3:
		if c.S3BucketName == "" || c.AWSAccessKeyID == "" || c.AWSSecretKey == "" {
			return errors.New("S3_BUCKET_NAME, AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set when STORAGE_BACKEND=s3")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_BACKEND %q", c.StorageBackend)
	}

	// Strict checks for production
	if c.IsProduction() {
		if c.DBDriver == "sqlite" {
			return errors.New("DB_DRIVER=sqlite is not allowed in production")
		}
		if c.DBPassword == "password" || c.DBPassword == "" {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
			return errors.New("DB_SSLMODE must enable TLS in production")
		}
		if !c.CookieSecure {
			log.Println("WARNING: COOKIE_SECURE is false in production. Session cookies will be sent over plain HTTP.")
		}
		if strings.Contains(c.CORSOrigins, "*") {
			return errors.New("CORS_ORIGINS must not contain '*' when credentials are allowed")
		}
	}

	return nil
}
