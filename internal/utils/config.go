package utils

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Environment             string
	LogLevel                string
	APIPort                 int
	APIAuthSecret           string
	DatabasePath            string
	CAEndpoint              string
	CAAuthToken             string
	CertificateValidityDays int
	CARequestTimeout        time.Duration
	RetryMaxAttempts        int
	RetryInitialDelay       time.Duration
	RetryMaxDelay           time.Duration
	RetryBackoffFactor      float64
	RateLimitPerMinute      int
	ReadTimeout             time.Duration
	WriteTimeout            time.Duration
	IdleTimeout             time.Duration
	GracefulShutdownTimeout time.Duration
	MetricsEnabled          bool
}

func LoadConfig() (*Config, error) {
	config := &Config{
		Environment:             getEnv("ENVIRONMENT", "development"),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		APIPort:                 getEnvInt("API_PORT", 8080),
		APIAuthSecret:           getEnv("API_AUTH_SECRET", ""),
		DatabasePath:            getEnv("DATABASE_PATH", "./data/journal.db"),
		CAEndpoint:              getEnv("CA_ENDPOINT", ""),
		CAAuthToken:             getEnv("CA_AUTH_TOKEN", ""),
		CertificateValidityDays: getEnvInt("CERTIFICATE_VALIDITY_DAYS", 365),
		CARequestTimeout:        getEnvDuration("CA_REQUEST_TIMEOUT", "30s"),
		RetryMaxAttempts:        getEnvInt("RETRY_MAX_ATTEMPTS", 3),
		RetryInitialDelay:       getEnvDuration("RETRY_INITIAL_DELAY", "1s"),
		RetryMaxDelay:           getEnvDuration("RETRY_MAX_DELAY", "30s"),
		RetryBackoffFactor:      getEnvFloat("RETRY_BACKOFF_FACTOR", 2.0),
		RateLimitPerMinute:      getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		ReadTimeout:             getEnvDuration("READ_TIMEOUT", "15s"),
		WriteTimeout:            getEnvDuration("WRITE_TIMEOUT", "15s"),
		IdleTimeout:             getEnvDuration("IDLE_TIMEOUT", "60s"),
		GracefulShutdownTimeout: getEnvDuration("GRACEFUL_SHUTDOWN_TIMEOUT", "30s"),
		MetricsEnabled:          getEnvBool("METRICS_ENABLED", true),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Validate() error {
	if c.CAEndpoint == "" {
		return fmt.Errorf("CA_ENDPOINT is required")
	}

	if c.CAAuthToken == "" {
		return fmt.Errorf("CA_AUTH_TOKEN is required")
	}

	if c.CertificateValidityDays < 1 {
		return fmt.Errorf("invalid certificate validity days: %d", c.CertificateValidityDays)
	}

	if c.RateLimitPerMinute < 1 {
		return fmt.Errorf("invalid rate limit per minute: %d", c.RateLimitPerMinute)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue string) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
