package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	MySQLDSN     string
	RedisAddr    string
	Port         string
	PollInterval time.Duration
	OneSignalApp string
	OneSignalKey string
	OneSignalURL string
}

func Load() (*Config, error) {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		return nil, fmt.Errorf("MYSQL_DSN environment variable is required")
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	interval := 5 * time.Second
	if v := os.Getenv("POLL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid POLL_INTERVAL: %w", err)
		}
		interval = d
	}

	return &Config{
		MySQLDSN:     dsn,
		RedisAddr:    redisAddr,
		Port:         port,
		PollInterval: interval,
		OneSignalApp: os.Getenv("ONESIGNAL_APP_ID"),
		OneSignalKey: os.Getenv("ONESIGNAL_API_KEY"),
		OneSignalURL: os.Getenv("ONESIGNAL_URL"),
	}, nil
}
