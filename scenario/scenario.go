// Package scenario scores branching decision scenarios and tracks a trainee's
// walk through one.
package scenario

import (
	"errors"
	"fmt"
	"strings"

	"police_training_backend/models"
)

var (
	ErrInvalidScenario = errors.New("invalid scenario")
	ErrUnknownScene    = errors.New("unknown scene")
	ErrUnknownOption   = errors.New("unknown answer option")
)

// ValidationError collects every problem found in a scenario.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid scenario: %s", strings.Join(e.Problems, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidScenario
}

// Validate checks the structural rules the player relies on.
func Validate(s models.Scenario) error {
	var problems []string
	addf := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if strings.TrimSpace(s.Title) == "" {
		addf("title is required")
	}
	if len(s.Scenes) == 0 {
		addf("at least one scene is required")
	}

	sceneIDs := make(map[string]struct{}, len(s.Scenes))
	for i, scene := range s.Scenes {
		if scene.ID == "" {
			addf("scene %d: id is required", i+1)
		} else if _, dup := sceneIDs[scene.ID]; dup {
			addf("scene %d: duplicate id %q", i+1, scene.ID)
		} else {
			sceneIDs[scene.ID] = struct{}{}
		}

		if len(scene.Options) < 2 {
			addf("scene %d: at least two answer options are required", i+1)
		}

		optionIDs := make(map[string]struct{}, len(scene.Options))
		hasCorrect := false
		for j, opt := range scene.Options {
			if opt.ID == "" {
				addf("scene %d option %d: id is required", i+1, j+1)
			} else if _, dup := optionIDs[opt.ID]; dup {
				addf("scene %d option %d: duplicate id %q", i+1, j+1, opt.ID)
			} else {
				optionIDs[opt.ID] = struct{}{}
			}
			if strings.TrimSpace(opt.Text) == "" {
				addf("scene %d option %d: text is required", i+1, j+1)
			}
			if opt.Score < 0 {
				addf("scene %d option %d: score must not be negative", i+1, j+1)
			}
			hasCorrect = hasCorrect || opt.Correct
		}
		if len(scene.Options) > 0 && !hasCorrect {
			addf("scene %d: at least one option must be correct", i+1)
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// MaxScore is the sum of the best option score of every scene.
func MaxScore(s models.Scenario) int {
	total := 0
	for _, scene := range s.Scenes {
		total += bestScore(scene)
	}
	return total
}

func bestScore(scene models.Scene) int {
	best := 0
	for _, opt := range scene.Options {
		if opt.Score > best {
			best = opt.Score
		}
	}
	return best
}

func findOption(scene models.Scene, optionID string) (models.AnswerOption, bool) {
	for _, opt := range scene.Options {
		if opt.ID == optionID {
			return opt, true
		}
	}
	return models.AnswerOption{}, false
}

func correctOptions(scene models.Scene) []models.AnswerOption {
	var out []models.AnswerOption
	for _, opt := range scene.Options {
		if opt.Correct {
			out = append(out, opt)
		}
	}
	return out
}

// Evaluate scores a complete set of answers keyed by scene id. Scenes with no
// answer score zero and are reported as mistakes.
func Evaluate(s models.Scenario, answers map[string]string) (models.ScenarioResult, error) {
	known := make(map[string]struct{}, len(s.Scenes))
	for _, scene := range s.Scenes {
		known[scene.ID] = struct{}{}
	}
	for sceneID := range answers {
		if _, ok := known[sceneID]; !ok {
			return models.ScenarioResult{}, fmt.Errorf("%w: %q", ErrUnknownScene, sceneID)
		}
	}

	chosen := make([]string, len(s.Scenes))
	for i, scene := range s.Scenes {
		optionID, ok := answers[scene.ID]
		if !ok {
			continue
		}
		if _, ok := findOption(scene, optionID); !ok {
			return models.ScenarioResult{}, fmt.Errorf("%w: %q in scene %q", ErrUnknownOption, optionID, scene.ID)
		}
		chosen[i] = optionID
	}
	return score(s, chosen), nil
}

// score builds the result from per-scene option ids; an empty id means unanswered.
func score(s models.Scenario, chosen []string) models.ScenarioResult {
	result := models.ScenarioResult{
		ScenarioID: s.ID,
		Title:      s.Title,
		MaxScore:   MaxScore(s),
		Mistakes:   []models.Mistake{},
		Answers:    make([]models.SceneAnswer, 0, len(s.Scenes)),
	}

	for i, scene := range s.Scenes {
		answer := models.SceneAnswer{SceneID: scene.ID, OptionID: chosen[i]}
		opt, answered := findOption(scene, chosen[i])
		if answered {
			answer.Score = opt.Score
			answer.Correct = opt.Correct
			result.Score += opt.Score
		}
		result.Answers = append(result.Answers, answer)

		if answered && opt.Correct {
			continue
		}
		mistake := models.Mistake{
			SceneID:    scene.ID,
			SceneTitle: scene.Title,
			Correct:    []string{},
		}
		if answered {
			mistake.Chosen = opt.Text
			mistake.Explanation = opt.Explanation
		}
		for _, c := range correctOptions(scene) {
			mistake.Correct = append(mistake.Correct, c.Text)
			if mistake.Explanation == "" {
				mistake.Explanation = c.Explanation
			}
		}
		result.Mistakes = append(result.Mistakes, mistake)
	}

	result.Percentage, result.Category, result.Feedback = Categorize(result.Score, result.MaxScore)
	return result
}
