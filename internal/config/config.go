// internal/config/config.go
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

// Config holds the process configuration, read from the environment
// (godotenv loads a .env file in main, if present).
type Config struct {
	// Addr is the listen address, built from PORT (default 8080).
	Addr string
	// HostGracePeriod is how long a disconnected host has to reconnect before
	// the room is torn down. HOST_GRACE_PERIOD_SEC, default 5 seconds.
	HostGracePeriod time.Duration
	// LogLevel is the logrus level parsed from LOG_LEVEL, default info.
	LogLevel logrus.Level
	// StaticDir is the directory served at /, default "public".
	StaticDir string
}

// Load reads the configuration from environment variables, applying defaults
// for anything unset.
func Load() Config {
	level, err := logrus.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		level = logrus.InfoLevel
	}

	return Config{
		Addr:            ":" + getEnv("PORT", "8080"),
		HostGracePeriod: time.Duration(getEnvInt("HOST_GRACE_PERIOD_SEC", 5)) * time.Second,
		LogLevel:        level,
		StaticDir:       getEnv("STATIC_DIR", "public"),
	}
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt is a helper to parse an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
