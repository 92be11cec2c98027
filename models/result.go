package models

import "time"

type ScenarioResult struct {
	ID         int64         `json:"id,omitempty"`
	UserID     int64         `json:"user_id,omitempty"`
	ScenarioID string        `json:"scenario_id"`
	Title      string        `json:"title"`
	Score      int           `json:"score"`
	MaxScore   int           `json:"max_score"`
	Percentage int           `json:"percentage"`
	Category   string        `json:"category"`
	Feedback   string        `json:"feedback"`
	Mistakes   []Mistake     `json:"mistakes"`
	Answers    []SceneAnswer `json:"answers"`
	CreatedAt  time.Time     `json:"created_at,omitempty"`
}

type Mistake struct {
	SceneID     string   `json:"scene_id"`
	SceneTitle  string   `json:"scene_title"`
	Chosen      string   `json:"chosen,omitempty"`
	Correct     []string `json:"correct"`
	Explanation string   `json:"explanation,omitempty"`
}

type SceneAnswer struct {
	SceneID  string `json:"scene_id"`
	OptionID string `json:"option_id,omitempty"`
	Score    int    `json:"score"`
	Correct  bool   `json:"correct"`
}

type ScenarioStats struct {
	ScenarioID     string    `json:"scenario_id"`
	Title          string    `json:"title"`
	Attempts       int       `json:"attempts"`
	BestScore      int       `json:"best_score"`
	BestPercentage int       `json:"best_percentage"`
	LastPlayed     time.Time `json:"last_played"`
}
