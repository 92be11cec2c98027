package scenario

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"police_training_backend/models"
)

var ErrSessionNotFound = errors.New("play session not found")

// SessionStore keeps in-progress play sessions in memory. Idle sessions expire
// after the configured TTL.
type SessionStore struct {
	cache *cache.Cache
	ttl   time.Duration
}

type entry struct {
	mu   sync.Mutex
	sess *Session
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		cache: cache.New(ttl, ttl/2),
		ttl:   ttl,
	}
}

// Start opens a new session for the user.
func (st *SessionStore) Start(userID int64, s models.Scenario) (State, error) {
	sess, err := NewSession(uuid.NewString(), userID, s)
	if err != nil {
		return State{}, err
	}
	st.cache.Set(sess.ID, &entry{sess: sess}, st.ttl)
	return sess.State(), nil
}

// Do runs fn against the user's session under the session lock and refreshes
// its TTL. Calls on different sessions do not block each other.
func (st *SessionStore) Do(id string, userID int64, fn func(*Session) error) (State, error) {
	v, ok := st.cache.Get(id)
	if !ok {
		return State{}, ErrSessionNotFound
	}
	e := v.(*entry)
	if e.sess.UserID != userID {
		return State{}, ErrSessionNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	err := fn(e.sess)
	st.cache.Set(id, e, st.ttl)
	return e.sess.State(), err
}

func (st *SessionStore) Get(id string, userID int64) (State, error) {
	return st.Do(id, userID, func(*Session) error { return nil })
}

func (st *SessionStore) Delete(id string) {
	st.cache.Delete(id)
}

func (st *SessionStore) Len() int {
	return st.cache.ItemCount()
}
