package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"police_training_backend/models"
)

// Scenarios stores user-authored scenarios as JSON documents.
type Scenarios struct{ s *Store }

const scenarioColumns = `id, owner_id, published, body, created_at, updated_at`

func (r *Scenarios) Create(ctx context.Context, sc models.Scenario) (models.Scenario, error) {
	now := r.s.now().UTC()
	sc.Source = models.SourceAuthored
	sc.CreatedAt = fromUnix(now.Unix())
	sc.UpdatedAt = sc.CreatedAt

	body, err := json.Marshal(sc)
	if err != nil {
		return models.Scenario{}, err
	}
	_, err = r.s.db.ExecContext(ctx,
		`INSERT INTO authored_scenarios (id, owner_id, title, published, body, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		sc.ID, sc.OwnerID, sc.Title, sc.Published, string(body), now.Unix(), now.Unix(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Scenario{}, ErrConflict
		}
		return models.Scenario{}, fmt.Errorf("error creating scenario: %w", err)
	}
	return sc, nil
}

// Update replaces the document of a scenario owned by ownerID. The
// published flag and creation time are kept.
func (r *Scenarios) Update(ctx context.Context, ownerID int64, sc models.Scenario) (models.Scenario, error) {
	existing, err := r.Get(ctx, sc.ID)
	if err != nil {
		return models.Scenario{}, err
	}
	if existing.OwnerID != ownerID {
		return models.Scenario{}, ErrNotFound
	}

	sc.OwnerID = ownerID
	sc.Source = models.SourceAuthored
	sc.Published = existing.Published
	sc.CreatedAt = existing.CreatedAt
	sc.UpdatedAt = fromUnix(r.s.now().Unix())

	body, err := json.Marshal(sc)
	if err != nil {
		return models.Scenario{}, err
	}
	res, err := r.s.db.ExecContext(ctx,
		`UPDATE authored_scenarios SET title = $1, body = $2, updated_at = $3 WHERE id = $4 AND owner_id = $5`,
		sc.Title, string(body), sc.UpdatedAt.Unix(), sc.ID, ownerID,
	)
	if err != nil {
		return models.Scenario{}, fmt.Errorf("error updating scenario: %w", err)
	}
	if err := affectedOne(res); err != nil {
		return models.Scenario{}, err
	}
	return sc, nil
}

func (r *Scenarios) SetPublished(ctx context.Context, ownerID int64, id string, published bool) error {
	res, err := r.s.db.ExecContext(ctx,
		`UPDATE authored_scenarios SET published = $1, updated_at = $2 WHERE id = $3 AND owner_id = $4`,
		published, r.s.now().Unix(), id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("error publishing scenario: %w", err)
	}
	return affectedOne(res)
}

func (r *Scenarios) Delete(ctx context.Context, ownerID int64, id string) error {
	res, err := r.s.db.ExecContext(ctx,
		`DELETE FROM authored_scenarios WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("error deleting scenario: %w", err)
	}
	return affectedOne(res)
}

func (r *Scenarios) Get(ctx context.Context, id string) (models.Scenario, error) {
	row := r.s.db.QueryRowContext(ctx,
		`SELECT `+scenarioColumns+` FROM authored_scenarios WHERE id = $1`, id)
	sc, err := scanScenario(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Scenario{}, ErrNotFound
	}
	return sc, err
}

func (r *Scenarios) ListByOwner(ctx context.Context, ownerID int64) ([]models.Scenario, error) {
	return r.list(ctx, `WHERE owner_id = $1 ORDER BY updated_at DESC, id`, ownerID)
}

func (r *Scenarios) ListPublished(ctx context.Context) ([]models.Scenario, error) {
	return r.list(ctx, `WHERE published = $1 ORDER BY title, id`, true)
}

func (r *Scenarios) list(ctx context.Context, clause string, arg any) ([]models.Scenario, error) {
	rows, err := r.s.db.QueryContext(ctx, `SELECT `+scenarioColumns+` FROM authored_scenarios `+clause, arg)
	if err != nil {
		return nil, fmt.Errorf("error listing scenarios: %w", err)
	}
	defer rows.Close()

	out := make([]models.Scenario, 0)
	for rows.Next() {
		sc, err := scanScenario(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScenario(row rowScanner) (models.Scenario, error) {
	var (
		sc                   models.Scenario
		id                   string
		ownerID              int64
		published            bool
		body                 string
		createdAt, updatedAt int64
	)
	if err := row.Scan(&id, &ownerID, &published, &body, &createdAt, &updatedAt); err != nil {
		return models.Scenario{}, err
	}
	if err := json.Unmarshal([]byte(body), &sc); err != nil {
		return models.Scenario{}, fmt.Errorf("error decoding scenario %s: %w", id, err)
	}
	sc.ID = id
	sc.OwnerID = ownerID
	sc.Published = published
	sc.Source = models.SourceAuthored
	sc.CreatedAt = fromUnix(createdAt)
	sc.UpdatedAt = fromUnix(updatedAt)
	return sc, nil
}
