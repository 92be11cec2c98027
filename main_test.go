package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"police_training_backend/config"
	"police_training_backend/db"
	"police_training_backend/models"
	"police_training_backend/store"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Environment:     "test",
		ServerPort:      "0",
		DBDriver:        db.DriverSQLite,
		SQLitePath:      filepath.Join(t.TempDir(), "serve.db"),
		JWTSecret:       "test-secret",
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
		PlaySessionTTL:  time.Minute,
	}
}

func TestServeStopsWhenContextIsCancelled(t *testing.T) {
	cfg = testConfig(t)
	log = zap.NewNop()

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- serve(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not return after cancellation")
	}
}

func TestPurgeExpiredTokens(t *testing.T) {
	log = zap.NewNop()
	ctx := context.Background()
	database, err := db.Open(ctx, testConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	st := store.New(database)
	user, err := st.Users().Create(ctx, "a@example.com", "officer", "hash", models.RoleTrainee)
	require.NoError(t, err)
	require.NoError(t, st.RefreshTokens().Save(ctx, user.ID, "stale", time.Now().Add(-time.Hour)))
	require.NoError(t, st.RefreshTokens().Save(ctx, user.ID, "live", time.Now().Add(time.Hour)))

	purgeCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		purgeExpiredTokens(purgeCtx, st, 10*time.Millisecond)
	}()

	assert.Eventually(t, func() bool {
		var n int
		if err := database.QueryRow(`SELECT COUNT(*) FROM refresh_tokens`).Scan(&n); err != nil {
			return false
		}
		return n == 1
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("purge loop did not stop after cancellation")
	}

	userID, err := st.RefreshTokens().Lookup(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}
