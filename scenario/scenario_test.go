package scenario

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"police_training_backend/models"
)

func trafficStop() models.Scenario {
	return models.Scenario{
		ID:    "traffic-stop",
		Title: "Night traffic stop",
		Scenes: []models.Scene{
			{
				ID:    "approach",
				Title: "Approach",
				Options: []models.AnswerOption{
					{ID: "a", Text: "Approach from the passenger side", Correct: true, Score: 10, Explanation: "Keeps you out of traffic."},
					{ID: "b", Text: "Approach from the driver side", Score: 2, Explanation: "Exposes you to passing traffic."},
				},
			},
			{
				ID:    "documents",
				Title: "Documents",
				Options: []models.AnswerOption{
					{ID: "a", Text: "Ask for licence and registration", Correct: true, Score: 5},
					{ID: "b", Text: "Search the vehicle", Score: 0, Explanation: "No grounds for a search."},
					{ID: "c", Text: "Ask for licence only", Correct: true, Score: 3},
				},
			},
			{
				ID:    "close",
				Title: "Closing the stop",
				Options: []models.AnswerOption{
					{ID: "a", Text: "Issue a warning and explain", Correct: true, Score: 5},
					{ID: "b", Text: "Leave without a word", Score: 0},
				},
			},
		},
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(trafficStop()))

	tests := []struct {
		name   string
		mutate func(*models.Scenario)
		want   string
	}{
		{"no title", func(s *models.Scenario) { s.Title = " " }, "title is required"},
		{"no scenes", func(s *models.Scenario) { s.Scenes = nil }, "at least one scene is required"},
		{"duplicate scene", func(s *models.Scenario) { s.Scenes[1].ID = "approach" }, `scene 2: duplicate id "approach"`},
		{"one option", func(s *models.Scenario) { s.Scenes[2].Options = s.Scenes[2].Options[:1] }, "scene 3: at least two answer options are required"},
		{"no correct", func(s *models.Scenario) { s.Scenes[0].Options[0].Correct = false }, "scene 1: at least one option must be correct"},
		{"negative score", func(s *models.Scenario) { s.Scenes[0].Options[1].Score = -1 }, "scene 1 option 2: score must not be negative"},
		{"duplicate option", func(s *models.Scenario) { s.Scenes[1].Options[2].ID = "a" }, `scene 2 option 3: duplicate id "a"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := trafficStop()
			tt.mutate(&s)
			err := Validate(s)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidScenario))

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Problems, tt.want)
		})
	}
}

func TestMaxScore(t *testing.T) {
	assert.Equal(t, 20, MaxScore(trafficStop()))
	assert.Equal(t, 0, MaxScore(models.Scenario{}))
}

func TestEvaluate(t *testing.T) {
	s := trafficStop()

	t.Run("all correct", func(t *testing.T) {
		res, err := Evaluate(s, map[string]string{"approach": "a", "documents": "a", "close": "a"})
		require.NoError(t, err)
		assert.Equal(t, 20, res.Score)
		assert.Equal(t, 20, res.MaxScore)
		assert.Equal(t, 100, res.Percentage)
		assert.Equal(t, CategoryExcellent, res.Category)
		assert.Empty(t, res.Mistakes)
		assert.Len(t, res.Answers, 3)
	})

	t.Run("partial credit for a correct lower option", func(t *testing.T) {
		res, err := Evaluate(s, map[string]string{"approach": "a", "documents": "c", "close": "a"})
		require.NoError(t, err)
		assert.Equal(t, 18, res.Score)
		assert.Equal(t, 90, res.Percentage)
		assert.Empty(t, res.Mistakes)
	})

	t.Run("mistakes and skipped scenes", func(t *testing.T) {
		res, err := Evaluate(s, map[string]string{"approach": "b", "documents": "b"})
		require.NoError(t, err)
		assert.Equal(t, 2, res.Score)
		assert.Equal(t, 10, res.Percentage)
		assert.Equal(t, CategoryPoor, res.Category)
		require.Len(t, res.Mistakes, 3)

		assert.Equal(t, "approach", res.Mistakes[0].SceneID)
		assert.Equal(t, "Approach from the driver side", res.Mistakes[0].Chosen)
		assert.Equal(t, []string{"Approach from the passenger side"}, res.Mistakes[0].Correct)
		assert.Equal(t, "Exposes you to passing traffic.", res.Mistakes[0].Explanation)

		assert.Equal(t, []string{"Ask for licence and registration", "Ask for licence only"}, res.Mistakes[1].Correct)

		assert.Equal(t, "close", res.Mistakes[2].SceneID)
		assert.Empty(t, res.Mistakes[2].Chosen)
	})

	t.Run("unknown scene", func(t *testing.T) {
		_, err := Evaluate(s, map[string]string{"nope": "a"})
		assert.ErrorIs(t, err, ErrUnknownScene)
	})

	t.Run("unknown option", func(t *testing.T) {
		_, err := Evaluate(s, map[string]string{"approach": "z"})
		assert.ErrorIs(t, err, ErrUnknownOption)
	})
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		score, max int
		pct        int
		category   string
	}{
		{10, 10, 100, CategoryExcellent},
		{9, 10, 90, CategoryExcellent},
		{89, 100, 89, CategoryGood},
		{7, 10, 70, CategoryGood},
		{5, 10, 50, CategoryFair},
		{49, 100, 49, CategoryPoor},
		{0, 0, 0, CategoryPoor},
	}
	for _, tt := range tests {
		pct, category, feedback := Categorize(tt.score, tt.max)
		assert.Equal(t, tt.pct, pct, "%d/%d", tt.score, tt.max)
		assert.Equal(t, tt.category, category, "%d/%d", tt.score, tt.max)
		assert.NotEmpty(t, feedback)
	}
}
