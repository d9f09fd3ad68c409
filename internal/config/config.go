// Package config loads server settings from .env, the environment and command-line flags.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const devJWTSecret = "dev-only-change-me"

// Config holds every setting the server reads at startup.
type Config struct {
	Port       int
	StaticPath string

	// Storage
	DBDriver    string // sqlite or postgres
	DBPath      string
	DatabaseURL string

	// Extraction
	GeminiAPIKey string
	GeminiModel  string

	// Auth
	JWTSecret          string
	TokenTTL           time.Duration
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	// Receipt image archive; disabled when S3Bucket is empty
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string

	SessionTTL  time.Duration
	CORSOrigins []string

	LogLevel  string
	LogFormat string
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./static")
	v.SetDefault("db_driver", "sqlite")
	v.SetDefault("db_path", "./data/billbeam.db")
	v.SetDefault("gemini_model", "gemini-2.0-flash")
	v.SetDefault("jwt_secret", devJWTSecret)
	v.SetDefault("token_ttl", "168h")
	v.SetDefault("google_redirect_url", "http://localhost:8080/auth/google/callback")
	v.SetDefault("s3_region", "auto")
	v.SetDefault("session_ttl", "2h")
	v.SetDefault("cors_origins", "*")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
}

// Load reads envFiles (default .env, missing files are ignored) into the process
// environment, then resolves every key from v, which may have flags bound.
// Keys map to upper-case environment variables: db_path reads DB_PATH.
func Load(v *viper.Viper, envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	SetDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		Port:               v.GetInt("port"),
		StaticPath:         v.GetString("static_path"),
		DBDriver:           strings.ToLower(v.GetString("db_driver")),
		DBPath:             v.GetString("db_path"),
		DatabaseURL:        v.GetString("database_url"),
		GeminiAPIKey:       v.GetString("gemini_api_key"),
		GeminiModel:        v.GetString("gemini_model"),
		JWTSecret:          v.GetString("jwt_secret"),
		TokenTTL:           v.GetDuration("token_ttl"),
		GoogleClientID:     v.GetString("google_client_id"),
		GoogleClientSecret: v.GetString("google_client_secret"),
		GoogleRedirectURL:  v.GetString("google_redirect_url"),
		S3Bucket:           v.GetString("s3_bucket"),
		S3Region:           v.GetString("s3_region"),
		S3Endpoint:         v.GetString("s3_endpoint"),
		S3AccessKey:        v.GetString("s3_access_key"),
		S3SecretKey:        v.GetString("s3_secret_key"),
		SessionTTL:         v.GetDuration("session_ttl"),
		CORSOrigins:        splitList(v.GetString("cors_origins")),
		LogLevel:           v.GetString("log_level"),
		LogFormat:          v.GetString("log_format"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Port))
	}
	switch c.DBDriver {
	case "sqlite":
		if c.DBPath == "" {
			errs = append(errs, errors.New("DB_PATH is required for sqlite"))
		}
	case "postgres":
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER must be sqlite or postgres, got %q", c.DBDriver))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.GoogleClientID != "" && c.GoogleClientSecret == "" {
		errs = append(errs, errors.New("GOOGLE_CLIENT_SECRET is required with GOOGLE_CLIENT_ID"))
	}
	return errors.Join(errs...)
}

// InsecureJWTSecret reports whether the built-in development secret is in use.
func (c *Config) InsecureJWTSecret() bool {
	return c.JWTSecret == devJWTSecret
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
