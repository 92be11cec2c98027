package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"

	"police_training_backend/config"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DSN builds the driver connection string for the configured database.
func DSN(cfg *config.Config) string {
	if cfg.DBDriver == DriverSQLite {
		return SQLiteDSN(cfg.SQLitePath)
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)
}

func SQLiteDSN(path string) string {
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// Open connects to the configured database, checks the connection and applies the schema.
func Open(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	return OpenDSN(ctx, cfg.DBDriver, DSN(cfg))
}

func OpenDSN(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	database, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	if driver == DriverSQLite {
		// SQLite allows a single writer
		database.SetMaxOpenConns(1)
	} else {
		database.SetMaxOpenConns(25)
		database.SetMaxIdleConns(5)
		database.SetConnMaxLifetime(30 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := database.PingContext(pingCtx); err != nil {
		database.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}

	if err := InitSchema(ctx, database, driver); err != nil {
		database.Close()
		return nil, fmt.Errorf("error initializing database schema: %w", err)
	}
	return database, nil
}
