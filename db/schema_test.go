package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaDialects(t *testing.T) {
	pg := Schema(DriverPostgres)
	assert.Contains(t, pg, "BIGSERIAL PRIMARY KEY")
	assert.NotContains(t, pg, "{{serial}}")

	lite := Schema(DriverSQLite)
	assert.Contains(t, lite, "INTEGER PRIMARY KEY AUTOINCREMENT")
	assert.NotContains(t, lite, "BIGSERIAL")
}

func TestOpenSQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")

	database, err := OpenDSN(ctx, DriverSQLite, SQLiteDSN(path))
	require.NoError(t, err)
	defer database.Close()

	// Applying the schema twice is a no-op
	require.NoError(t, InitSchema(ctx, database, DriverSQLite))

	for _, table := range []string{"users", "refresh_tokens", "authored_scenarios", "rooms", "scenario_results"} {
		var name string
		err := database.QueryRowContext(ctx,
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = $1`, table).Scan(&name)
		require.NoError(t, err, table)
	}
}
