package handlers

import (
	"context"
	"errors"

	"police_training_backend/content"
	"police_training_backend/models"
	"police_training_backend/store"
)

var errScenarioNotFound = errors.New("scenario not found")

// ScenarioResolver finds playable scenarios across the builtin library and
// user-authored ones. Authored scenarios are visible once published, and
// always to their owner.
type ScenarioResolver struct {
	catalog   *content.Catalog
	scenarios *store.Scenarios
}

func NewScenarioResolver(catalog *content.Catalog, scenarios *store.Scenarios) *ScenarioResolver {
	return &ScenarioResolver{catalog: catalog, scenarios: scenarios}
}

func (r *ScenarioResolver) Resolve(ctx context.Context, id string, userID int64) (models.Scenario, error) {
	if s, err := r.catalog.Scenario(id); err == nil {
		return s, nil
	}
	s, err := r.scenarios.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return models.Scenario{}, errScenarioNotFound
	}
	if err != nil {
		return models.Scenario{}, err
	}
	if !s.Published && s.OwnerID != userID {
		return models.Scenario{}, errScenarioNotFound
	}
	return s, nil
}

// List returns builtin scenarios followed by published authored ones.
func (r *ScenarioResolver) List(ctx context.Context) ([]models.Scenario, error) {
	published, err := r.scenarios.ListPublished(ctx)
	if err != nil {
		return nil, err
	}
	return append(r.catalog.Scenarios(), published...), nil
}
