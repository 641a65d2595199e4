package config

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	trackerconfig "mediaTracker/tracker/config"
)

type Config struct {
	Port     string
	Env      string
	LogLevel string
	Tracker  *trackerconfig.Config
}

func Load() *Config {
	return &Config{
		Port:     getEnv("SERVICE_PORT", "8081"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Tracker:  trackerconfig.Load(),
	}
}

// NewLogger builds a development logger when Env is "development" and a
// production JSON logger otherwise.
func (c *Config) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}

	var zc zap.Config
	if c.Env == "development" {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	return zc.Build()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
