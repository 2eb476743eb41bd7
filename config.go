package main

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds everything the server reads from the environment.
// Loaded once in main and injected into whatever needs it.
type Config struct {
	DBHost      string
	DBPort      string
	DBUser      string
	DBPass      string
	DBName      string
	DBEncrypt   bool // TLS to the database (on by default)
	DBTrustCert bool // skip server certificate verification (off by default)

	Port      string
	JWTSecret string
	Env       string // "development" or "production"
}

func LoadConfig() (Config, error) {
	cfg := Config{
		DBHost:      os.Getenv("DB_HOST"),
		DBPort:      envOrDefault("DB_PORT", "5432"),
		DBUser:      os.Getenv("DB_USER"),
		DBPass:      os.Getenv("DB_PASS"),
		DBName:      os.Getenv("DB_NAME"),
		DBEncrypt:   envBool("DB_ENCRYPT", true),
		DBTrustCert: envBool("DB_TRUST_CERT", false),
		Port:        envOrDefault("PORT", "5000"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		Env:         envOrDefault("APP_ENV", "development"),
	}

	if cfg.DBHost == "" || cfg.DBUser == "" || cfg.DBPass == "" || cfg.DBName == "" {
		return Config{}, fmt.Errorf("database env missing: DB_HOST, DB_USER, DB_PASS and DB_NAME are required")
	}

	return cfg, nil
}

// IsProduction reports whether verbose error details must be suppressed
// in API responses.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
