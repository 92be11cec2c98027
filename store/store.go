// Package store persists users, tokens and user-authored content.
package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrEmailTaken = errors.New("email already registered")
	ErrConflict   = errors.New("conflict")
)

// Store wraps the database handle. Queries use $N placeholders, which both
// lib/pq and the SQLite driver accept.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

func New(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Users() *Users                 { return &Users{s} }
func (s *Store) RefreshTokens() *RefreshTokens { return &RefreshTokens{s} }
func (s *Store) Scenarios() *Scenarios         { return &Scenarios{s} }
func (s *Store) Rooms() *Rooms                 { return &Rooms{s} }
func (s *Store) Results() *Results             { return &Results{s} }

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

func fromUnix(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

func affectedOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
