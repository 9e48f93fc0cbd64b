package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates application configuration loaded from environment
// variables. Pricing percentages and the cleaning fee are configuration,
// not code, so deployments can vary them.
type Config struct {
	Env      string
	HTTPAddr string

	MongoURI string
	MongoDB  string

	KafkaBrokers     []string
	KafkaTopicPrefix string

	ServiceFeePercent int
	TaxPercent        int
	CleaningFeeCents  int64

	FullRefundDays    int
	HalfRefundDays    int
	HalfRefundPercent int

	ShutdownTimeout time.Duration
}

// Load parses configuration from the current environment. Mongo and
// Kafka settings are optional: without them the service runs on the
// in-memory store with a log-only notifier.
func Load() (Config, error) {
	cfg := Config{
		Env:              getEnv("APP_ENV", "dev"),
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		MongoURI:         os.Getenv("MONGO_URI"),
		MongoDB:          getEnv("MONGO_DB", "stayhub"),
		KafkaTopicPrefix: getEnv("KAFKA_TOPIC_PREFIX", ""),
	}
	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	var err error
	if cfg.ServiceFeePercent, err = parseIntEnv("SERVICE_FEE_PERCENT", 10); err != nil {
		return Config{}, err
	}
	if cfg.TaxPercent, err = parseIntEnv("TAX_PERCENT", 12); err != nil {
		return Config{}, err
	}
	if cfg.CleaningFeeCents, err = parseInt64Env("CLEANING_FEE_CENTS", 5000); err != nil {
		return Config{}, err
	}
	if cfg.FullRefundDays, err = parseIntEnv("REFUND_FULL_DAYS", 7); err != nil {
		return Config{}, err
	}
	if cfg.HalfRefundDays, err = parseIntEnv("REFUND_HALF_DAYS", 3); err != nil {
		return Config{}, err
	}
	if cfg.HalfRefundPercent, err = parseIntEnv("REFUND_HALF_PERCENT", 50); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeout, err = parseDurationEnv("SHUTDOWN_TIMEOUT", 5*time.Second); err != nil {
		return Config{}, err
	}

	if cfg.ServiceFeePercent < 0 || cfg.ServiceFeePercent > 100 {
		return Config{}, fmt.Errorf("SERVICE_FEE_PERCENT out of range: %d", cfg.ServiceFeePercent)
	}
	if cfg.TaxPercent < 0 || cfg.TaxPercent > 100 {
		return Config{}, fmt.Errorf("TAX_PERCENT out of range: %d", cfg.TaxPercent)
	}
	if cfg.HalfRefundDays > cfg.FullRefundDays {
		return Config{}, fmt.Errorf("REFUND_HALF_DAYS (%d) must not exceed REFUND_FULL_DAYS (%d)", cfg.HalfRefundDays, cfg.FullRefundDays)
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseIntEnv(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s integer: %w", key, err)
	}
	return v, nil
}

func parseInt64Env(key string, def int64) (int64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s integer: %w", key, err)
	}
	return v, nil
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", key, err)
	}
	return d, nil
}
