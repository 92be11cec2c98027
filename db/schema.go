package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Timestamps are stored as unix seconds so both dialects compare them the same way.
const schemaTemplate = `
-- Create users table
CREATE TABLE IF NOT EXISTS users (
    id {{serial}},
    email VARCHAR(255) UNIQUE NOT NULL,
    username VARCHAR(50) NOT NULL,
    password_hash VARCHAR(255) NOT NULL,
    role VARCHAR(20) NOT NULL DEFAULT 'trainee',
    created_at BIGINT NOT NULL
);

-- Create refresh_tokens table
CREATE TABLE IF NOT EXISTS refresh_tokens (
    id {{serial}},
    user_id BIGINT NOT NULL,
    token VARCHAR(255) UNIQUE NOT NULL,
    expires_at BIGINT NOT NULL,
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

-- Create authored_scenarios table, body holds the scenario document
CREATE TABLE IF NOT EXISTS authored_scenarios (
    id VARCHAR(64) PRIMARY KEY,
    owner_id BIGINT NOT NULL,
    title VARCHAR(255) NOT NULL,
    published BOOLEAN NOT NULL DEFAULT FALSE,
    body TEXT NOT NULL,
    created_at BIGINT NOT NULL,
    updated_at BIGINT NOT NULL,
    FOREIGN KEY (owner_id) REFERENCES users(id) ON DELETE CASCADE
);

-- Create rooms table
CREATE TABLE IF NOT EXISTS rooms (
    id VARCHAR(64) PRIMARY KEY,
    owner_id BIGINT NOT NULL,
    name VARCHAR(100) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    code VARCHAR(16) UNIQUE NOT NULL,
    scenario_ids TEXT NOT NULL DEFAULT '[]',
    created_at BIGINT NOT NULL,
    updated_at BIGINT NOT NULL,
    FOREIGN KEY (owner_id) REFERENCES users(id) ON DELETE CASCADE
);

-- Create scenario_results table
CREATE TABLE IF NOT EXISTS scenario_results (
    id {{serial}},
    user_id BIGINT NOT NULL,
    scenario_id VARCHAR(64) NOT NULL,
    title VARCHAR(255) NOT NULL,
    score INTEGER NOT NULL,
    max_score INTEGER NOT NULL,
    percentage INTEGER NOT NULL,
    category VARCHAR(20) NOT NULL,
    details TEXT NOT NULL,
    created_at BIGINT NOT NULL,
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_refresh_tokens_user ON refresh_tokens(user_id);
CREATE INDEX IF NOT EXISTS idx_authored_scenarios_owner ON authored_scenarios(owner_id);
CREATE INDEX IF NOT EXISTS idx_rooms_owner ON rooms(owner_id);
CREATE INDEX IF NOT EXISTS idx_scenario_results_user ON scenario_results(user_id, scenario_id);
`

// Schema renders the DDL for a driver.
func Schema(driver string) string {
	serial := "BIGSERIAL PRIMARY KEY"
	if driver == DriverSQLite {
		serial = "INTEGER PRIMARY KEY AUTOINCREMENT"
	}
	return strings.ReplaceAll(schemaTemplate, "{{serial}}", serial)
}

// InitSchema creates all tables that do not exist yet.
func InitSchema(ctx context.Context, db *sql.DB, driver string) error {
	for _, stmt := range strings.Split(Schema(driver), ";") {
		if strings.TrimSpace(stripComments(stmt)) == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("error creating schema: %w", err)
		}
	}
	return nil
}

func stripComments(stmt string) string {
	var b strings.Builder
	for _, line := range strings.Split(stmt, "\n") {
		if !strings.HasPrefix(strings.TrimSpace(line), "--") {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return b.String()
}
