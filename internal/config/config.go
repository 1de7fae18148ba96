package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// AssessTimeout bounds one full claim assessment end to end.
	AssessTimeout time.Duration

	// OpenWeather provider configuration. With no API key the resolver
	// serves deterministic mock data.
	OpenWeatherAPIKey  string
	OpenWeatherEnabled bool
	OpenWeatherTimeout time.Duration
	WeatherCacheTTL    time.Duration

	// RulesFile optionally overrides the embedded correlation table.
	RulesFile string

	// Kafka publishing of finished assessments, off unless enabled.
	KafkaBrokers         []string
	KafkaEnabled         bool
	KafkaAssessmentTopic string

	// Audit trail persistence.
	AuditDBPath  string
	AuditEnabled bool
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parsePositiveDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	assessTimeout, err := parsePositiveDuration("ASSESS_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	openWeatherTimeout, err := parsePositiveDuration("OPENWEATHER_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	cacheTTL, err := parsePositiveDuration("WEATHER_CACHE_TTL", "1h")
	if err != nil {
		return nil, err
	}

	apiKey := os.Getenv("OPENWEATHER_API_KEY")
	openWeatherEnabled := apiKey != ""
	if v := os.Getenv("OPENWEATHER_ENABLED"); v != "" {
		openWeatherEnabled = v == "true"
	}

	kafkaEnabled := false
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	auditDBPath := envOrDefault("AUDIT_DB_PATH", "claims-audit.db")
	auditEnabled := auditDBPath != ""
	if v := os.Getenv("AUDIT_ENABLED"); v != "" {
		auditEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		AssessTimeout:   assessTimeout,

		OpenWeatherAPIKey:  apiKey,
		OpenWeatherEnabled: openWeatherEnabled,
		OpenWeatherTimeout: openWeatherTimeout,
		WeatherCacheTTL:    cacheTTL,

		RulesFile: os.Getenv("RULES_FILE"),

		KafkaBrokers:         parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaEnabled:         kafkaEnabled,
		KafkaAssessmentTopic: envOrDefault("KAFKA_ASSESSMENT_TOPIC", "claim-assessments"),

		AuditDBPath:  auditDBPath,
		AuditEnabled: auditEnabled,
	}

	if cfg.OpenWeatherEnabled && cfg.OpenWeatherAPIKey == "" {
		return nil, errors.New("OPENWEATHER_ENABLED is true but OPENWEATHER_API_KEY is not set")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaAssessmentTopic == "" {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_ASSESSMENT_TOPIC is empty")
	}
	if cfg.AuditEnabled && cfg.AuditDBPath == "" {
		return nil, errors.New("AUDIT_ENABLED is true but AUDIT_DB_PATH is empty")
	}

	return cfg, nil
}

func envOrDefault(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func parsePositiveDuration(name, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(name, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return d, nil
}

func parseBrokers(s string) []string {
	parts := strings.Split(s, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}
