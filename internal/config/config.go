// Package config provides the web server configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the configuration for `bitesized serve`.
type Config struct {
	Addr          string
	LogMode       string
	SessionTTL    time.Duration
	CORSOrigins   []string
	SecureCookies bool
	// GenerateTimeout bounds one generation (two LLM calls) per request.
	GenerateTimeout time.Duration
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Addr:            getEnv("BITESIZED_ADDR", ":8080"),
		LogMode:         getEnv("BITESIZED_LOG_MODE", "dev"),
		SessionTTL:      getEnvDuration("BITESIZED_SESSION_TTL", 2*time.Hour),
		CORSOrigins:     getEnvList("BITESIZED_CORS_ORIGINS", []string{"http://localhost:*", "http://127.0.0.1:*"}),
		SecureCookies:   getEnvBool("BITESIZED_SECURE_COOKIES", false),
		GenerateTimeout: getEnvDuration("BITESIZED_GENERATE_TIMEOUT", 2*time.Minute),
		ShutdownTimeout: 10 * time.Second,
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are usable.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("BITESIZED_ADDR cannot be empty")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("BITESIZED_SESSION_TTL must be > 0")
	}
	if c.GenerateTimeout <= 0 {
		return fmt.Errorf("BITESIZED_GENERATE_TIMEOUT must be > 0")
	}
	switch strings.ToLower(c.LogMode) {
	case "dev", "development", "prod", "production":
	default:
		return fmt.Errorf("BITESIZED_LOG_MODE must be dev or prod, got %q", c.LogMode)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

// getEnvDuration accepts Go durations ("90s") or a bare number of seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value = strings.TrimSpace(value)
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if n := getEnvInt(key, -1); n >= 0 {
		return time.Duration(n) * time.Second
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
