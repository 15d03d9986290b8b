package config

import (
	"os"
	"strconv"
)

type Config struct {
	Mode               string
	Port               string
	Environment        string
	LogLevel           string
	Floors             int
	HourlyRate         int64
	RateLimitPerMinute int
	OTelServiceName    string
	OTelEndpoint       string
}

func Load() *Config {
	return &Config{
		Mode:               envOr("APP_MODE", "cli"),
		Port:               envOr("APP_PORT", "8080"),
		Environment:        envOr("ENVIRONMENT", "development"),
		LogLevel:           envOr("LOG_LEVEL", "info"),
		Floors:             envOrInt("PARKING_FLOORS", 0),
		HourlyRate:         envOrInt64("PARKING_HOURLY_RATE", 10),
		RateLimitPerMinute: envOrInt("RATE_LIMIT_PER_MINUTE", 600),
		OTelServiceName:    envOr("OTEL_SERVICE_NAME", "parking-garage"),
		OTelEndpoint:       envOr("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4318"),
	}
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func envOrInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(v); err == nil && i >= 0 {
			return i
		}
	}
	return fallback
}

func envOrInt64(key string, fallback int64) int64 {
	if v, ok := os.LookupEnv(key); ok {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil && i >= 0 {
			return i
		}
	}
	return fallback
}
