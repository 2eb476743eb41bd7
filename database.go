package main

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// sslMode maps the encrypt/trust-certificate pair onto the Postgres
// sslmode parameter. Encrypted with certificate verification is the
// default; trusting the server certificate downgrades to "require".
func sslMode(cfg Config) string {
	if !cfg.DBEncrypt {
		return "disable"
	}
	if cfg.DBTrustCert {
		return "require"
	}
	return "verify-full"
}

func buildDSN(cfg Config) string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		cfg.DBHost, cfg.DBUser, cfg.DBPass, cfg.DBName, cfg.DBPort, sslMode(cfg),
	)
}

// OpenDB opens the shared connection pool. The schema is managed
// externally, so no migrations run here. TranslateError lets handlers
// match unique and foreign key violations as gorm sentinel errors
// instead of driver-specific codes.
func OpenDB(cfg Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(buildDSN(cfg)), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return db, nil
}

// CloseDB releases the underlying pool. Called once on shutdown.
func CloseDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
