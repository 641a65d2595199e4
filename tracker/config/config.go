package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	BackendURL     string
	BackendToken   string
	BackendTimeout time.Duration

	PollInterval       time.Duration
	PollMaxConcurrency int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	KafkaBrokers     string
	KafkaEventsTopic string
	KafkaStatusTopic string
	KafkaGroupID     string

	DatabaseURL string

	SinkBuffer int
}

func Load() *Config {
	return &Config{
		BackendURL:     getEnv("BACKEND_URL", "http://localhost:8000/api"),
		BackendToken:   getEnv("BACKEND_TOKEN", ""),
		BackendTimeout: getEnvAsDuration("BACKEND_TIMEOUT", 30*time.Second),

		PollInterval:       getEnvAsDuration("POLL_INTERVAL", time.Second),
		PollMaxConcurrency: getEnvAsInt("POLL_MAX_CONCURRENCY", 16),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		KafkaBrokers:     getEnv("KAFKA_BROKERS", ""),
		KafkaEventsTopic: getEnv("KAFKA_EVENTS_TOPIC", "generation_task_events"),
		KafkaStatusTopic: getEnv("KAFKA_STATUS_TOPIC", ""),
		KafkaGroupID:     getEnv("KAFKA_GROUP_ID", "media-tracker"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		SinkBuffer: getEnvAsInt("SINK_BUFFER", 256),
	}
}

func (c *Config) Brokers() []string {
	if c.KafkaBrokers == "" {
		return nil
	}
	var brokers []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}
