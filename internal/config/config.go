package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

type Config struct {
	HTTPPort      int
	StorageDriver string

	DBConfig struct {
		DBHost     string
		DBPort     int
		DBUser     string
		DBPassword string
		DBName     string
		DBSSLMode  string
	}
	DBConnectRetries    int
	DBConnectRetryDelay time.Duration

	KafkaEnabled               bool
	KafkaBrokerURL             string
	KafkaAccountEventsTopic    string
	KafkaExchangeRequestsTopic string
	KafkaConsumerGroup         string

	OutboxPollInterval time.Duration
	OutboxPollTimeout  time.Duration
	OutboxBatchSize    int

	NBPURLTemplate      string
	RateFetchTimeout    time.Duration
	RateCacheTTL        time.Duration
	ExchangeMaxAttempts int
	RedisURL            string
	RedisRateCacheTTL   time.Duration

	TracingEnabled     bool
	TracingServiceName string
	OTLPEndpoint       string
	OTLPInsecure       bool
	TracingSampleRatio float64

	SupportedCurrencies []string
	CORSAllowedOrigins  []string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	var err error

	if cfg.HTTPPort, err = getEnvAsInt("HTTP_PORT", 8080); err != nil {
		return nil, err
	}
	cfg.StorageDriver = strings.ToLower(getEnvOrDefault("STORAGE_DRIVER", StorageDriverPostgres))
	if cfg.StorageDriver != StorageDriverPostgres && cfg.StorageDriver != StorageDriverMemory {
		return nil, fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", StorageDriverPostgres, StorageDriverMemory, cfg.StorageDriver)
	}

	cfg.DBConfig.DBHost = getEnvOrDefault("EXCHANGE_DB_HOST", "localhost")
	if cfg.DBConfig.DBPort, err = getEnvAsInt("EXCHANGE_DB_PORT", 5432); err != nil {
		return nil, err
	}
	cfg.DBConfig.DBUser = getEnvOrDefault("EXCHANGE_DB_USER", "postgres")
	cfg.DBConfig.DBPassword = getEnvOrDefault("EXCHANGE_DB_PASSWORD", "postgres")
	cfg.DBConfig.DBName = getEnvOrDefault("EXCHANGE_DB_NAME", "exchange_db")
	cfg.DBConfig.DBSSLMode = getEnvOrDefault("EXCHANGE_DB_SSLMODE", "disable")
	if cfg.DBConnectRetries, err = getEnvAsInt("DB_CONNECT_RETRIES", 10); err != nil {
		return nil, err
	}
	if cfg.DBConnectRetryDelay, err = getEnvAsDuration("DB_CONNECT_RETRY_DELAY", 5*time.Second); err != nil {
		return nil, err
	}

	if cfg.KafkaEnabled, err = getEnvAsBool("KAFKA_ENABLED", false); err != nil {
		return nil, err
	}
	cfg.KafkaBrokerURL = getEnvOrDefault("KAFKA_BROKER_URL", "localhost:9092")
	cfg.KafkaAccountEventsTopic = getEnvOrDefault("KAFKA_ACCOUNT_EVENTS_TOPIC", "account_events")
	cfg.KafkaExchangeRequestsTopic = getEnvOrDefault("KAFKA_EXCHANGE_REQUESTS_TOPIC", "exchange_requests")
	cfg.KafkaConsumerGroup = getEnvOrDefault("KAFKA_CONSUMER_GROUP", "currency-exchange-group")

	if cfg.OutboxPollInterval, err = getEnvAsDuration("OUTBOX_POLL_INTERVAL", 1*time.Second); err != nil {
		return nil, err
	}
	if cfg.OutboxPollTimeout, err = getEnvAsDuration("OUTBOX_POLL_TIMEOUT", 500*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.OutboxBatchSize, err = getEnvAsInt("OUTBOX_BATCH_SIZE", 10); err != nil {
		return nil, err
	}

	cfg.NBPURLTemplate = getEnvOrDefault("NBP_API_URL_TEMPLATE", "https://api.nbp.pl/api/exchangerates/rates/a/{currencyCode}/?format=json")
	if !strings.Contains(cfg.NBPURLTemplate, "{currencyCode}") {
		return nil, fmt.Errorf("NBP_API_URL_TEMPLATE must contain {currencyCode}, got %q", cfg.NBPURLTemplate)
	}
	if cfg.RateFetchTimeout, err = getEnvAsDuration("RATE_FETCH_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.RateCacheTTL, err = getEnvAsDuration("RATE_CACHE_TTL", time.Minute); err != nil {
		return nil, err
	}
	if cfg.ExchangeMaxAttempts, err = getEnvAsInt("EXCHANGE_MAX_ATTEMPTS", 3); err != nil {
		return nil, err
	}
	if cfg.ExchangeMaxAttempts < 1 {
		return nil, fmt.Errorf("EXCHANGE_MAX_ATTEMPTS must be at least 1, got %d", cfg.ExchangeMaxAttempts)
	}

	cfg.RedisURL = getEnvOrDefault("REDIS_URL", "")
	if cfg.RedisRateCacheTTL, err = getEnvAsDuration("REDIS_RATE_CACHE_TTL", 10*time.Minute); err != nil {
		return nil, err
	}

	if cfg.TracingEnabled, err = getEnvAsBool("OTEL_ENABLED", false); err != nil {
		return nil, err
	}
	cfg.TracingServiceName = getEnvOrDefault("OTEL_SERVICE_NAME", "currency-exchange")
	cfg.OTLPEndpoint = getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	if cfg.OTLPInsecure, err = getEnvAsBool("OTEL_EXPORTER_OTLP_INSECURE", false); err != nil {
		return nil, err
	}
	if cfg.TracingSampleRatio, err = getEnvAsFloat("OTEL_SAMPLER_RATIO", 1); err != nil {
		return nil, err
	}
	if cfg.TracingSampleRatio < 0 || cfg.TracingSampleRatio > 1 {
		return nil, fmt.Errorf("OTEL_SAMPLER_RATIO must be between 0 and 1, got %v", cfg.TracingSampleRatio)
	}

	cfg.SupportedCurrencies = splitList(strings.ToUpper(getEnvOrDefault("SUPPORTED_CURRENCIES", "PLN,USD,EUR,GBP,CHF")))
	cfg.CORSAllowedOrigins = splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173"))

	return cfg, nil
}

func (c *Config) GetKafkaBrokers() []string {
	return splitList(c.KafkaBrokerURL)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(valueStr))
	if err != nil {
		return 0, fmt.Errorf("invalid integer for %s: %w", key, err)
	}
	return value, nil
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	value, err := time.ParseDuration(strings.TrimSpace(valueStr))
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
	}
	return value, nil
}

func getEnvAsFloat(key string, defaultValue float64) (float64, error) {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(valueStr), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number for %s: %w", key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) (bool, error) {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	value, err := strconv.ParseBool(strings.TrimSpace(valueStr))
	if err != nil {
		return false, fmt.Errorf("invalid boolean for %s: %w", key, err)
	}
	return value, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
