package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"deepdive/interview/internal/gateway"
)

// app config: generation provider selection plus gateway tuning
type Config struct {
	Provider string
	Gateway  gateway.Config
}

// loads configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{
		Provider: getEnvOrDefault("AI_PROVIDER", "gemini"),
		Gateway: gateway.Config{
			MaxConcurrent:  getEnvInt("GATEWAY_MAX_CONCURRENT", 10),
			RequestTimeout: getEnvDuration("GATEWAY_REQUEST_TIMEOUT", 30*time.Second),
			MaxAttempts:    getEnvInt("GATEWAY_MAX_ATTEMPTS", 3),
			RetryDelay:     getEnvDuration("GATEWAY_RETRY_DELAY", time.Second),
			Enabled:        getEnvOrDefault("AI_ENABLED", "true") == "true",
		},
	}
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Provider != "gemini" && config.Provider != "openai" {
		return errors.New("unsupported AI provider: " + config.Provider + ". Currently supported: gemini, openai")
	}
	// Provider credential validation happens in the provider's own NewConfig.
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
