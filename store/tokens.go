package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type RefreshTokens struct{ s *Store }

func (r *RefreshTokens) Save(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	_, err := r.s.db.ExecContext(ctx,
		`INSERT INTO refresh_tokens (user_id, token, expires_at) VALUES ($1, $2, $3)`,
		userID, token, expiresAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("error saving refresh token: %w", err)
	}
	return nil
}

// Lookup returns the owner of a refresh token that has not expired yet.
func (r *RefreshTokens) Lookup(ctx context.Context, token string) (int64, error) {
	var userID int64
	err := r.s.db.QueryRowContext(ctx,
		`SELECT user_id FROM refresh_tokens WHERE token = $1 AND expires_at > $2`,
		token, r.s.now().Unix(),
	).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("error querying refresh token: %w", err)
	}
	return userID, nil
}

// Consume deletes a live refresh token and returns its owner. Only one of
// several concurrent calls with the same token gets the owner back.
func (r *RefreshTokens) Consume(ctx context.Context, token string) (int64, error) {
	var userID int64
	err := r.s.db.QueryRowContext(ctx,
		`DELETE FROM refresh_tokens WHERE token = $1 AND expires_at > $2 RETURNING user_id`,
		token, r.s.now().Unix(),
	).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("error consuming refresh token: %w", err)
	}
	return userID, nil
}

func (r *RefreshTokens) Delete(ctx context.Context, token string) error {
	_, err := r.s.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE token = $1`, token)
	return err
}

func (r *RefreshTokens) DeleteForUser(ctx context.Context, userID int64) error {
	_, err := r.s.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID)
	return err
}

// DeleteExpired removes tokens past their expiry and reports how many were removed.
func (r *RefreshTokens) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := r.s.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE expires_at <= $1`, r.s.now().Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
