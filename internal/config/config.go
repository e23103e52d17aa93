// Package config loads configuration from the environment, with .env
// support for local development.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is everything the server needs, read once at startup.
type Config struct {
	Port   int
	DBPath string

	JWTSecret          string
	OAuthClientID      string
	OAuthClientSecret  string
	OAuthCallbackURL   string
	SecureCookies      bool
	RedirectAfterLogin string

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOUseSSL    bool
	MediaBaseURL   string
}

// Load reads .env (if present) and then the environment. Only JWT_SECRET is
// hard-required; MinIO settings are optional and their absence selects the
// in-memory media store.
func Load() (*Config, error) {
	// A missing .env is fine; real deployments set env vars directly.
	_ = godotenv.Load()

	cfg := &Config{
		Port:               envInt("PORT", 8080),
		DBPath:             envString("DB_PATH", "devforum.db"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		OAuthClientID:      os.Getenv("OAUTH_CLIENT_ID"),
		OAuthClientSecret:  os.Getenv("OAUTH_CLIENT_SECRET"),
		OAuthCallbackURL:   envString("OAUTH_CALLBACK_URL", "http://localhost:8080/auth/callback"),
		SecureCookies:      envBool("SECURE_COOKIES", false),
		RedirectAfterLogin: envString("REDIRECT_AFTER_LOGIN", "/"),
		MinIOEndpoint:      os.Getenv("MINIO_ENDPOINT"),
		MinIOAccessKey:     os.Getenv("MINIO_ACCESS_KEY"),
		MinIOSecretKey:     os.Getenv("MINIO_SECRET_KEY"),
		MinIOBucket:        envString("MINIO_BUCKET", "devforum-media"),
		MinIOUseSSL:        envBool("MINIO_USE_SSL", false),
		MediaBaseURL:       os.Getenv("PUBLIC_MEDIA_BASE_URL"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("config: JWT_SECRET is required")
	}
	return cfg, nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
