package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"police_training_backend/models"
)

type Users struct{ s *Store }

// Create inserts a user; emails are stored lower-cased.
func (u *Users) Create(ctx context.Context, email, username, passwordHash, role string) (models.User, error) {
	user := models.User{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Username:     strings.TrimSpace(username),
		Role:         role,
		PasswordHash: passwordHash,
		CreatedAt:    fromUnix(u.s.now().Unix()),
	}
	err := u.s.db.QueryRowContext(ctx,
		`INSERT INTO users (email, username, password_hash, role, created_at) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		user.Email, user.Username, user.PasswordHash, user.Role, user.CreatedAt.Unix(),
	).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, ErrEmailTaken
		}
		return models.User{}, fmt.Errorf("error creating user: %w", err)
	}
	return user, nil
}

func (u *Users) ByEmail(ctx context.Context, email string) (models.User, error) {
	return u.get(ctx, `WHERE email = $1`, strings.ToLower(strings.TrimSpace(email)))
}

func (u *Users) ByID(ctx context.Context, id int64) (models.User, error) {
	return u.get(ctx, `WHERE id = $1`, id)
}

func (u *Users) get(ctx context.Context, where string, arg any) (models.User, error) {
	var (
		user      models.User
		createdAt int64
	)
	err := u.s.db.QueryRowContext(ctx,
		`SELECT id, email, username, password_hash, role, created_at FROM users `+where, arg,
	).Scan(&user.ID, &user.Email, &user.Username, &user.PasswordHash, &user.Role, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("error querying user: %w", err)
	}
	user.CreatedAt = fromUnix(createdAt)
	return user, nil
}
