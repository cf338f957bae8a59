package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Server
	Port    string
	AppName string

	// BaseURL is the publicly reachable base URL of this service; the
	// calendar provider pushes watch notifications to it.
	BaseURL string

	// OAuth2 — Google
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	// Database (optional; empty switches the channel store to memory)
	DatabaseURL string

	// Watch channels
	WatchTTL time.Duration

	// ProviderTimeout bounds every outbound Google API call.
	ProviderTimeout time.Duration

	// Frontend
	FrontendURL string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	port := envOrDefault("PORT", "3000")

	return &Config{
		Port:    port,
		AppName: envOrDefault("APP_NAME", "MeetBridge"),
		BaseURL: strings.TrimRight(envOrDefault("BASE_URL", "http://localhost:"+port), "/"),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  envOrDefault("GOOGLE_REDIRECT_URI", "http://localhost:"+port+"/auth/google/tokens"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		WatchTTL:        time.Duration(envOrDefaultInt("WATCH_TTL_SECONDS", 3600)) * time.Second,
		ProviderTimeout: time.Duration(envOrDefaultInt("PROVIDER_TIMEOUT_SECONDS", 30)) * time.Second,

		FrontendURL: envOrDefault("FRONTEND_URL", "http://localhost:3001"),
	}
}

// NotificationAddress is the callback URL registered with watch channels.
func (c *Config) NotificationAddress() string {
	return c.BaseURL + "/api/google/calendar/notifications"
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return fallback
}
