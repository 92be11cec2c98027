package store

import (
	"context"
	"encoding/json"
	"fmt"

	"police_training_backend/models"
)

type Results struct{ s *Store }

type resultDetails struct {
	Feedback string               `json:"feedback"`
	Mistakes []models.Mistake     `json:"mistakes"`
	Answers  []models.SceneAnswer `json:"answers"`
}

func (r *Results) Save(ctx context.Context, userID int64, result models.ScenarioResult) (models.ScenarioResult, error) {
	details, err := json.Marshal(resultDetails{
		Feedback: result.Feedback,
		Mistakes: result.Mistakes,
		Answers:  result.Answers,
	})
	if err != nil {
		return models.ScenarioResult{}, err
	}

	result.UserID = userID
	result.CreatedAt = fromUnix(r.s.now().Unix())
	err = r.s.db.QueryRowContext(ctx,
		`INSERT INTO scenario_results (user_id, scenario_id, title, score, max_score, percentage, category, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
		userID, result.ScenarioID, result.Title, result.Score, result.MaxScore, result.Percentage,
		result.Category, string(details), result.CreatedAt.Unix(),
	).Scan(&result.ID)
	if err != nil {
		return models.ScenarioResult{}, fmt.Errorf("error saving result: %w", err)
	}
	return result, nil
}

// ListByUser returns the user's results, newest first.
func (r *Results) ListByUser(ctx context.Context, userID int64, limit int) ([]models.ScenarioResult, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.s.db.QueryContext(ctx, `
		SELECT id, user_id, scenario_id, title, score, max_score, percentage, category, details, created_at
		FROM scenario_results
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing results: %w", err)
	}
	defer rows.Close()

	out := make([]models.ScenarioResult, 0)
	for rows.Next() {
		var (
			res       models.ScenarioResult
			details   string
			createdAt int64
		)
		if err := rows.Scan(&res.ID, &res.UserID, &res.ScenarioID, &res.Title, &res.Score, &res.MaxScore,
			&res.Percentage, &res.Category, &details, &createdAt); err != nil {
			return nil, err
		}
		var d resultDetails
		if err := json.Unmarshal([]byte(details), &d); err != nil {
			return nil, fmt.Errorf("error decoding result %d: %w", res.ID, err)
		}
		res.Feedback = d.Feedback
		res.Mistakes = d.Mistakes
		res.Answers = d.Answers
		res.CreatedAt = fromUnix(createdAt)
		out = append(out, res)
	}
	return out, rows.Err()
}

// Stats aggregates the user's attempts per scenario. An authored scenario can
// change between attempts, so the best attempt is judged by percentage.
func (r *Results) Stats(ctx context.Context, userID int64) ([]models.ScenarioStats, error) {
	rows, err := r.s.db.QueryContext(ctx, `
		SELECT scenario_id, MAX(title), COUNT(*), MAX(score), MAX(percentage), MAX(created_at)
		FROM scenario_results
		WHERE user_id = $1
		GROUP BY scenario_id
		ORDER BY scenario_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying stats: %w", err)
	}
	defer rows.Close()

	out := make([]models.ScenarioStats, 0)
	for rows.Next() {
		var (
			st         models.ScenarioStats
			lastPlayed int64
		)
		if err := rows.Scan(&st.ScenarioID, &st.Title, &st.Attempts, &st.BestScore, &st.BestPercentage, &lastPlayed); err != nil {
			return nil, err
		}
		st.LastPlayed = fromUnix(lastPlayed)
		out = append(out, st)
	}
	return out, rows.Err()
}
