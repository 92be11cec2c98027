package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"police_training_backend/db"
	"police_training_backend/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenDSN(context.Background(), db.DriverSQLite, db.SQLiteDSN(filepath.Join(t.TempDir(), "store.db")))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return New(database)
}

func createUser(t *testing.T, s *Store, email string) models.User {
	t.Helper()
	user, err := s.Users().Create(context.Background(), email, "officer", "hash", models.RoleTrainee)
	require.NoError(t, err)
	return user
}

func sampleScenario(id string, ownerID int64) models.Scenario {
	return models.Scenario{
		ID:      id,
		Title:   "Checkpoint",
		OwnerID: ownerID,
		Scenes: []models.Scene{{
			ID:    "s1",
			Title: "Arrival",
			Options: []models.AnswerOption{
				{ID: "a", Text: "Stop", Correct: true, Score: 5},
				{ID: "b", Text: "Wave through", Score: 0},
			},
		}},
	}
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	user, err := s.Users().Create(ctx, "  Officer@Example.com ", " jdoe ", "hash", models.RoleInstructor)
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "officer@example.com", user.Email)
	assert.Equal(t, "jdoe", user.Username)

	_, err = s.Users().Create(ctx, "OFFICER@example.com", "other", "hash", models.RoleTrainee)
	assert.ErrorIs(t, err, ErrEmailTaken)

	got, err := s.Users().ByEmail(ctx, "officer@EXAMPLE.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "hash", got.PasswordHash)
	assert.Equal(t, models.RoleInstructor, got.Role)
	assert.Equal(t, user.CreatedAt, got.CreatedAt)

	got, err = s.Users().ByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)

	_, err = s.Users().ByID(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRefreshTokens(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	user := createUser(t, s, "a@example.com")
	tokens := s.RefreshTokens()

	require.NoError(t, tokens.Save(ctx, user.ID, "live", time.Now().Add(time.Hour)))
	require.NoError(t, tokens.Save(ctx, user.ID, "stale", time.Now().Add(-time.Hour)))

	id, err := tokens.Lookup(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)

	_, err = tokens.Lookup(ctx, "stale")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = tokens.Lookup(ctx, "unknown")
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := tokens.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	require.NoError(t, tokens.Delete(ctx, "live"))
	_, err = tokens.Lookup(ctx, "live")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, tokens.Save(ctx, user.ID, "t1", time.Now().Add(time.Hour)))
	require.NoError(t, tokens.Save(ctx, user.ID, "t2", time.Now().Add(time.Hour)))
	require.NoError(t, tokens.DeleteForUser(ctx, user.ID))
	_, err = tokens.Lookup(ctx, "t2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConsumeRefreshToken(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	user := createUser(t, s, "a@example.com")
	tokens := s.RefreshTokens()

	require.NoError(t, tokens.Save(ctx, user.ID, "stale", time.Now().Add(-time.Hour)))
	_, err := tokens.Consume(ctx, "stale")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, tokens.Save(ctx, user.ID, "live", time.Now().Add(time.Hour)))

	const callers = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		won  int
		lost int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := tokens.Consume(ctx, "live")
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				assert.Equal(t, user.ID, id)
				won++
			} else {
				assert.ErrorIs(t, err, ErrNotFound)
				lost++
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, won)
	assert.Equal(t, callers-1, lost)

	_, err = tokens.Lookup(ctx, "live")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestScenarios(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	owner := createUser(t, s, "owner@example.com")
	other := createUser(t, s, "other@example.com")
	repo := s.Scenarios()

	created, err := repo.Create(ctx, sampleScenario("sc-1", owner.ID))
	require.NoError(t, err)
	assert.Equal(t, models.SourceAuthored, created.Source)
	assert.False(t, created.Published)

	_, err = repo.Create(ctx, sampleScenario("sc-1", owner.ID))
	assert.ErrorIs(t, err, ErrConflict)

	got, err := repo.Get(ctx, "sc-1")
	require.NoError(t, err)
	assert.Equal(t, owner.ID, got.OwnerID)
	require.Len(t, got.Scenes, 1)
	assert.Equal(t, 5, got.Scenes[0].Options[0].Score)

	edited := sampleScenario("sc-1", 0)
	edited.Title = "Checkpoint at night"
	_, err = repo.Update(ctx, other.ID, edited)
	assert.ErrorIs(t, err, ErrNotFound)

	updated, err := repo.Update(ctx, owner.ID, edited)
	require.NoError(t, err)
	assert.Equal(t, "Checkpoint at night", updated.Title)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	published, err := repo.ListPublished(ctx)
	require.NoError(t, err)
	assert.Empty(t, published)

	assert.ErrorIs(t, repo.SetPublished(ctx, other.ID, "sc-1", true), ErrNotFound)
	require.NoError(t, repo.SetPublished(ctx, owner.ID, "sc-1", true))

	published, err = repo.ListPublished(ctx)
	require.NoError(t, err)
	require.Len(t, published, 1)
	assert.Equal(t, "Checkpoint at night", published[0].Title)
	assert.True(t, published[0].Published)

	mine, err := repo.ListByOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	theirs, err := repo.ListByOwner(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, theirs)

	assert.ErrorIs(t, repo.Delete(ctx, other.ID, "sc-1"), ErrNotFound)
	require.NoError(t, repo.Delete(ctx, owner.ID, "sc-1"))
	_, err = repo.Get(ctx, "sc-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRooms(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	owner := createUser(t, s, "owner@example.com")
	other := createUser(t, s, "other@example.com")
	repo := s.Rooms()

	room, err := repo.Create(ctx, owner.ID, models.RoomRequest{Name: "Cohort 12"})
	require.NoError(t, err)
	assert.Len(t, room.Code, roomCodeLength)
	assert.Equal(t, []string{}, room.ScenarioIDs)

	byCode, err := repo.ByCode(ctx, room.Code)
	require.NoError(t, err)
	assert.Equal(t, room.ID, byCode.ID)

	_, err = repo.Update(ctx, other.ID, room.ID, models.RoomRequest{Name: "Hijack"})
	assert.ErrorIs(t, err, ErrNotFound)

	updated, err := repo.Update(ctx, owner.ID, room.ID, models.RoomRequest{
		Name:        "Cohort 12B",
		Description: "Night shift",
		ScenarioIDs: []string{"traffic-stop"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Cohort 12B", updated.Name)
	assert.Equal(t, []string{"traffic-stop"}, updated.ScenarioIDs)
	assert.Equal(t, room.Code, updated.Code)

	list, err := repo.ListByOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	assert.ErrorIs(t, repo.Delete(ctx, other.ID, room.ID), ErrNotFound)
	require.NoError(t, repo.Delete(ctx, owner.ID, room.ID))
	_, err = repo.Get(ctx, room.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewRoomCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code, err := NewRoomCode()
		require.NoError(t, err)
		require.Len(t, code, roomCodeLength)
		for _, ch := range code {
			assert.Contains(t, roomCodeAlphabet, string(ch))
		}
		seen[code] = true
	}
	assert.Greater(t, len(seen), 45)
}

func TestResults(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	user := createUser(t, s, "a@example.com")
	repo := s.Results()

	base := time.Unix(1_700_000_000, 0)
	for i, score := range []int{5, 15, 10} {
		at := base.Add(time.Duration(i) * time.Minute)
		s.now = func() time.Time { return at }
		_, err := repo.Save(ctx, user.ID, models.ScenarioResult{
			ScenarioID: "traffic-stop",
			Title:      "Night-time traffic stop",
			Score:      score,
			MaxScore:   30,
			Category:   "poor",
			Feedback:   "practice",
			Mistakes:   []models.Mistake{{SceneID: "approach", Correct: []string{"passenger"}}},
		})
		require.NoError(t, err)
	}
	s.now = func() time.Time { return base.Add(time.Hour) }
	_, err := repo.Save(ctx, user.ID, models.ScenarioResult{ScenarioID: "shoplifting", Title: "Shoplifting", Score: 20, MaxScore: 20})
	require.NoError(t, err)

	list, err := repo.ListByUser(ctx, user.ID, 0)
	require.NoError(t, err)
	require.Len(t, list, 4)
	assert.Equal(t, "shoplifting", list[0].ScenarioID)
	assert.Equal(t, 10, list[1].Score)
	assert.Equal(t, "practice", list[1].Feedback)
	require.Len(t, list[1].Mistakes, 1)
	assert.Equal(t, "approach", list[1].Mistakes[0].SceneID)

	limited, err := repo.ListByUser(ctx, user.ID, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	stats, err := repo.Stats(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, "shoplifting", stats[0].ScenarioID)
	assert.Equal(t, "traffic-stop", stats[1].ScenarioID)
	assert.Equal(t, 3, stats[1].Attempts)
	assert.Equal(t, 15, stats[1].BestScore)
	assert.Equal(t, base.Add(2*time.Minute).UTC(), stats[1].LastPlayed)
}

func TestResultStatsAcrossScenarioEdits(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	user := createUser(t, s, "a@example.com")
	repo := s.Results()

	// The scenario grew from 10 to 50 points between the two attempts
	_, err := repo.Save(ctx, user.ID, models.ScenarioResult{ScenarioID: "sc-1", Title: "Checkpoint", Score: 10, MaxScore: 10, Percentage: 100})
	require.NoError(t, err)
	_, err = repo.Save(ctx, user.ID, models.ScenarioResult{ScenarioID: "sc-1", Title: "Checkpoint", Score: 20, MaxScore: 50, Percentage: 40})
	require.NoError(t, err)

	stats, err := repo.Stats(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, 2, stats[0].Attempts)
	assert.Equal(t, 100, stats[0].BestPercentage)
	assert.Equal(t, 20, stats[0].BestScore)
}
