package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port            string
	DatabaseDSN     string
	IdentityURL     string
	IdentityTimeout int
	Env             string
	HistoryLimit    int
	PersistWorkers  int

	// identityd 专用配置。
	IdentityPort    string
	JWTSecret       string
	TokenTTLMinutes int
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getint(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func Load() Config {
	return Config{
		Port:            getenv("APP_PORT", "5002"),
		DatabaseDSN:     getenv("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=chatapp port=5432 sslmode=disable TimeZone=UTC"),
		IdentityURL:     getenv("IDENTITY_URL", "http://localhost:5001"),
		IdentityTimeout: getint("IDENTITY_TIMEOUT_SECONDS", 5),
		Env:             getenv("APP_ENV", "dev"),
		HistoryLimit:    getint("HISTORY_LIMIT", 50),
		PersistWorkers:  getint("PERSIST_WORKERS", 8),
		IdentityPort:    getenv("IDENTITY_PORT", "5001"),
		JWTSecret:       getenv("JWT_SECRET", "dev-secret-change-me"),
		TokenTTLMinutes: getint("TOKEN_TTL_MINUTES", 60),
	}
}
