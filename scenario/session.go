package scenario

import (
	"errors"
	"fmt"
	"time"

	"police_training_backend/models"
)

var (
	ErrUnanswered = errors.New("current scene has not been answered")
	ErrFinished   = errors.New("session is already finished")
	ErrNotStarted = errors.New("already at the first scene")
	ErrInProgress = errors.New("session is not finished")
)

// Session is one trainee's walk through a scenario. It is not safe for
// concurrent use. SessionStore serializes access per session.
type Session struct {
	ID        string
	UserID    int64
	Scenario  models.Scenario
	StartedAt time.Time

	index    int
	chosen   []string
	finished bool
	saved    bool
	result   *models.ScenarioResult
}

// State is the client-facing snapshot of a session.
type State struct {
	SessionID  string                 `json:"session_id"`
	ScenarioID string                 `json:"scenario_id"`
	Title      string                 `json:"title"`
	Index      int                    `json:"index"`
	Total      int                    `json:"total"`
	Scene      *models.PlayerScene    `json:"scene,omitempty"`
	Selected   string                 `json:"selected,omitempty"`
	Finished   bool                   `json:"finished"`
	Result     *models.ScenarioResult `json:"result,omitempty"`
}

func NewSession(id string, userID int64, s models.Scenario) (*Session, error) {
	if err := Validate(s); err != nil {
		return nil, err
	}
	return &Session{
		ID:        id,
		UserID:    userID,
		Scenario:  s,
		StartedAt: time.Now(),
		chosen:    make([]string, len(s.Scenes)),
	}, nil
}

func (s *Session) Index() int     { return s.index }
func (s *Session) Finished() bool { return s.finished }

func (s *Session) Current() models.Scene {
	return s.Scenario.Scenes[s.index]
}

// Answer records the option picked for the current scene, replacing any earlier pick.
func (s *Session) Answer(optionID string) error {
	if s.finished {
		return ErrFinished
	}
	scene := s.Current()
	if _, ok := findOption(scene, optionID); !ok {
		return fmt.Errorf("%w: %q in scene %q", ErrUnknownOption, optionID, scene.ID)
	}
	s.chosen[s.index] = optionID
	return nil
}

// Next advances to the following scene. Leaving the last scene finishes the
// session and fixes the result.
func (s *Session) Next() error {
	if s.finished {
		return ErrFinished
	}
	if s.chosen[s.index] == "" {
		return ErrUnanswered
	}
	if s.index == len(s.Scenario.Scenes)-1 {
		r := score(s.Scenario, s.chosen)
		s.result = &r
		s.finished = true
		return nil
	}
	s.index++
	return nil
}

func (s *Session) Back() error {
	if s.finished {
		return ErrFinished
	}
	if s.index == 0 {
		return ErrNotStarted
	}
	s.index--
	return nil
}

func (s *Session) Result() (models.ScenarioResult, error) {
	if !s.finished {
		return models.ScenarioResult{}, ErrInProgress
	}
	return *s.result, nil
}

// Saved reports whether the result has been recorded with MarkSaved.
func (s *Session) Saved() bool { return s.saved }

// MarkSaved replaces the result with its stored copy.
func (s *Session) MarkSaved(r models.ScenarioResult) error {
	if !s.finished {
		return ErrInProgress
	}
	s.result = &r
	s.saved = true
	return nil
}

func (s *Session) State() State {
	st := State{
		SessionID:  s.ID,
		ScenarioID: s.Scenario.ID,
		Title:      s.Scenario.Title,
		Index:      s.index,
		Total:      len(s.Scenario.Scenes),
		Finished:   s.finished,
	}
	if s.finished {
		r := *s.result
		st.Result = &r
		return st
	}
	scene := PlayerScene(s.Current())
	st.Scene = &scene
	st.Selected = s.chosen[s.index]
	return st
}

// PlayerScene drops correctness, scores and explanations.
func PlayerScene(scene models.Scene) models.PlayerScene {
	out := models.PlayerScene{
		ID:          scene.ID,
		Title:       scene.Title,
		Description: scene.Description,
		Image:       scene.Image,
		Question:    scene.Question,
		Options:     make([]models.PlayerOption, len(scene.Options)),
	}
	for i, opt := range scene.Options {
		out.Options[i] = models.PlayerOption{ID: opt.ID, Text: opt.Text}
	}
	return out
}

// PlayerView is the scenario as a trainee sees it before answering.
func PlayerView(s models.Scenario) models.PlayerScenario {
	out := models.PlayerScenario{
		ID:          s.ID,
		Title:       s.Title,
		Description: s.Description,
		Category:    s.Category,
		Difficulty:  s.Difficulty,
		Source:      s.Source,
		Scenes:      make([]models.PlayerScene, len(s.Scenes)),
	}
	for i, scene := range s.Scenes {
		out.Scenes[i] = PlayerScene(scene)
	}
	return out
}
