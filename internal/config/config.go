package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// AuthConfig holds token signing and password hashing settings.
type AuthConfig struct {
	JWTSecret     string
	JWTIssuer     string
	TokenTTL      time.Duration
	UploadTTL     time.Duration
	ResetTokenTTL time.Duration
	BcryptCost    int
}

// MailConfig configures outbound mail. With an empty WebhookURL mail is only logged.
type MailConfig struct {
	WebhookURL   string
	WebhookToken string
	From         string
	ResetURLBase string
	Timeout      time.Duration
}

// RateLimitConfig bounds requests per client IP on the public auth endpoints.
type RateLimitConfig struct {
	AuthMax    int
	AuthWindow time.Duration
}

// LogConfig selects the log level (debug|info|warn|error) and format (json|console).
type LogConfig struct {
	Level  string
	Format string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	Env            string
	AppHost        string
	Port           string
	Timezone       string
	CORSOrigins    []string
	MaxUploadBytes int
	Database       DatabaseConfig
	MinIO          MinIOConfig
	Auth           AuthConfig
	Mail           MailConfig
	RateLimit      RateLimitConfig
	Log            LogConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		Env:            getEnv("APP_ENV", "development"),
		AppHost:        getEnv("APP_HOST", "localhost:8080"),
		Port:           getEnv("PORT", "8080"),
		Timezone:       getEnv("APP_TIMEZONE", "Asia/Seoul"),
		CORSOrigins:    getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		MaxUploadBytes: getEnvInt("MAX_UPLOAD_BYTES", 12<<20),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("AUTH_JWT_SECRET", ""),
			JWTIssuer:     getEnv("AUTH_JWT_ISSUER", "mentorhub"),
			TokenTTL:      getEnvDuration("AUTH_TOKEN_TTL", 24*time.Hour),
			UploadTTL:     getEnvDuration("AUTH_UPLOAD_TOKEN_TTL", 24*time.Hour),
			ResetTokenTTL: getEnvDuration("AUTH_RESET_TOKEN_TTL", time.Hour),
			BcryptCost:    getEnvInt("AUTH_BCRYPT_COST", 12),
		},
		Mail: MailConfig{
			WebhookURL:   getEnv("MAIL_WEBHOOK_URL", ""),
			WebhookToken: getEnv("MAIL_WEBHOOK_TOKEN", ""),
			From:         getEnv("MAIL_FROM", "no-reply@mentorhub.local"),
			ResetURLBase: getEnv("MAIL_RESET_URL_BASE", "http://localhost:3000/reset-password"),
			Timeout:      getEnvDuration("MAIL_TIMEOUT", 10*time.Second),
		},
		RateLimit: RateLimitConfig{
			AuthMax:    getEnvInt("RATE_LIMIT_AUTH_MAX", 20),
			AuthWindow: getEnvDuration("RATE_LIMIT_AUTH_WINDOW", time.Minute),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
}

// IsDevelopment reports whether the app runs with APP_ENV=development.
func (c *AppConfig) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// Location resolves the configured timezone, falling back to UTC.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Validate checks the settings the server cannot start without.
func (c *AppConfig) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("AUTH_JWT_SECRET is required")
	}
	if !c.IsDevelopment() && len(c.Auth.JWTSecret) < 32 {
		return errors.New("AUTH_JWT_SECRET must be at least 32 bytes outside development")
	}
	if c.Auth.TokenTTL <= 0 || c.Auth.ResetTokenTTL <= 0 || c.Auth.UploadTTL <= 0 {
		return errors.New("auth token TTLs must be positive")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid LOG_LEVEL: %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("invalid LOG_FORMAT: %q", c.Log.Format)
	}
	if c.RateLimit.AuthMax <= 0 || c.RateLimit.AuthWindow <= 0 {
		return errors.New("rate limit settings must be positive")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}

// getEnvList splits a comma-separated variable, dropping empty entries.
func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	out := make([]string, 0)
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
