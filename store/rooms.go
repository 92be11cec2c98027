package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/google/uuid"

	"police_training_backend/models"
)

type Rooms struct{ s *Store }

const (
	roomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	roomCodeLength   = 6
	roomCodeAttempts = 5
)

const roomColumns = `id, owner_id, name, description, code, scenario_ids, created_at, updated_at`

// NewRoomCode returns a join code without easily confused characters.
func NewRoomCode() (string, error) {
	b := make([]byte, roomCodeLength)
	alphabetLen := big.NewInt(int64(len(roomCodeAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", err
		}
		b[i] = roomCodeAlphabet[n.Int64()]
	}
	return string(b), nil
}

// Create stores a room with a fresh id and join code, retrying on code collisions.
func (r *Rooms) Create(ctx context.Context, ownerID int64, req models.RoomRequest) (models.Room, error) {
	now := fromUnix(r.s.now().Unix())
	room := models.Room{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Name:        req.Name,
		Description: req.Description,
		ScenarioIDs: nonNil(req.ScenarioIDs),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	ids, err := json.Marshal(room.ScenarioIDs)
	if err != nil {
		return models.Room{}, err
	}

	for attempt := 0; attempt < roomCodeAttempts; attempt++ {
		if room.Code, err = NewRoomCode(); err != nil {
			return models.Room{}, err
		}
		_, err = r.s.db.ExecContext(ctx,
			`INSERT INTO rooms (`+roomColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			room.ID, room.OwnerID, room.Name, room.Description, room.Code, string(ids), now.Unix(), now.Unix(),
		)
		if err == nil {
			return room, nil
		}
		if !isUniqueViolation(err) {
			return models.Room{}, fmt.Errorf("error creating room: %w", err)
		}
	}
	return models.Room{}, fmt.Errorf("error creating room: no free join code: %w", ErrConflict)
}

func (r *Rooms) Update(ctx context.Context, ownerID int64, id string, req models.RoomRequest) (models.Room, error) {
	ids, err := json.Marshal(nonNil(req.ScenarioIDs))
	if err != nil {
		return models.Room{}, err
	}
	res, err := r.s.db.ExecContext(ctx,
		`UPDATE rooms SET name = $1, description = $2, scenario_ids = $3, updated_at = $4 WHERE id = $5 AND owner_id = $6`,
		req.Name, req.Description, string(ids), r.s.now().Unix(), id, ownerID,
	)
	if err != nil {
		return models.Room{}, fmt.Errorf("error updating room: %w", err)
	}
	if err := affectedOne(res); err != nil {
		return models.Room{}, err
	}
	return r.Get(ctx, id)
}

func (r *Rooms) Delete(ctx context.Context, ownerID int64, id string) error {
	res, err := r.s.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("error deleting room: %w", err)
	}
	return affectedOne(res)
}

func (r *Rooms) Get(ctx context.Context, id string) (models.Room, error) {
	return r.one(ctx, `WHERE id = $1`, id)
}

func (r *Rooms) ByCode(ctx context.Context, code string) (models.Room, error) {
	return r.one(ctx, `WHERE code = $1`, code)
}

func (r *Rooms) ListByOwner(ctx context.Context, ownerID int64) ([]models.Room, error) {
	rows, err := r.s.db.QueryContext(ctx,
		`SELECT `+roomColumns+` FROM rooms WHERE owner_id = $1 ORDER BY created_at DESC, name`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("error listing rooms: %w", err)
	}
	defer rows.Close()

	out := make([]models.Room, 0)
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, room)
	}
	return out, rows.Err()
}

func (r *Rooms) one(ctx context.Context, where string, arg any) (models.Room, error) {
	room, err := scanRoom(r.s.db.QueryRowContext(ctx, `SELECT `+roomColumns+` FROM rooms `+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Room{}, ErrNotFound
	}
	return room, err
}

func scanRoom(row rowScanner) (models.Room, error) {
	var (
		room                 models.Room
		ids                  string
		createdAt, updatedAt int64
	)
	err := row.Scan(&room.ID, &room.OwnerID, &room.Name, &room.Description, &room.Code, &ids, &createdAt, &updatedAt)
	if err != nil {
		return models.Room{}, err
	}
	if err := json.Unmarshal([]byte(ids), &room.ScenarioIDs); err != nil {
		return models.Room{}, fmt.Errorf("error decoding room %s: %w", room.ID, err)
	}
	room.ScenarioIDs = nonNil(room.ScenarioIDs)
	room.CreatedAt = fromUnix(createdAt)
	room.UpdatedAt = fromUnix(updatedAt)
	return room, nil
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
