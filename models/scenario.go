package models

import "time"

const (
	SourceBuiltin  = "builtin"
	SourceAuthored = "authored"
)

type Scenario struct {
	ID          string    `json:"id"`
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	Difficulty  string    `json:"difficulty,omitempty"`
	Scenes      []Scene   `json:"scenes" binding:"required"`
	Source      string    `json:"source,omitempty"`
	OwnerID     int64     `json:"owner_id,omitempty"`
	Published   bool      `json:"published"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

type Scene struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Image       string         `json:"image,omitempty"`
	Question    string         `json:"question,omitempty"`
	Options     []AnswerOption `json:"options"`
}

type AnswerOption struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	Correct     bool   `json:"correct"`
	Score       int    `json:"score"`
	Explanation string `json:"explanation,omitempty"`
}

// PlayerScenario is a scenario as a trainee sees it before answering: no
// correctness, scores or explanations.
type PlayerScenario struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Category    string        `json:"category,omitempty"`
	Difficulty  string        `json:"difficulty,omitempty"`
	Source      string        `json:"source,omitempty"`
	Scenes      []PlayerScene `json:"scenes"`
}

type PlayerScene struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Image       string         `json:"image,omitempty"`
	Question    string         `json:"question,omitempty"`
	Options     []PlayerOption `json:"options"`
}

type PlayerOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type ScenarioSummary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Difficulty  string `json:"difficulty,omitempty"`
	Source      string `json:"source"`
	SceneCount  int    `json:"scene_count"`
}

func (s Scenario) Summary() ScenarioSummary {
	return ScenarioSummary{
		ID:          s.ID,
		Title:       s.Title,
		Description: s.Description,
		Category:    s.Category,
		Difficulty:  s.Difficulty,
		Source:      s.Source,
		SceneCount:  len(s.Scenes),
	}
}

type EvaluateRequest struct {
	Answers map[string]string `json:"answers" binding:"required"`
}

type AnswerRequest struct {
	OptionID string `json:"option_id" binding:"required"`
}
