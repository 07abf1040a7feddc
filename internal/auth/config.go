// Package auth provides token-based authentication for admin users.
package auth

import "os"

// fallbackSecret is used when CRM_AUTH_SECRET is unset. Tokens signed
// with it are forgeable by anyone who reads this source, so NewTokenService
// logs a warning whenever it is in effect.
const fallbackSecret = "default-secret-change-in-production"

// Config holds authentication and server configuration.
type Config struct {
	Secret      string
	BaseURL     string // e.g. http://localhost:8080
	DevMode     bool
	CORSOrigins string // comma-separated allowed origins, empty = same-origin only
}

// ConfigFromEnv creates a Config from environment variables.
// The secret falls back to a built-in literal when CRM_AUTH_SECRET is
// unset; see NewTokenService for the warning that accompanies it.
func ConfigFromEnv() Config {
	return Config{
		Secret:      os.Getenv("CRM_AUTH_SECRET"),
		BaseURL:     envOrDefault("CRM_BASE_URL", "http://localhost:8080"),
		DevMode:     os.Getenv("CRM_DEV_MODE") == "true",
		CORSOrigins: os.Getenv("CRM_CORS_ORIGINS"),
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
