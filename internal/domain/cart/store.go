package cart

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// ErrSessionNotFound is returned when a cart session id is unknown or has
// expired.
var ErrSessionNotFound = errors.New("cart session not found")

// session pairs a cart with its last-touched time for idle eviction.
type session struct {
	cart    *Cart
	touched time.Time
}

// Store holds active cart sessions keyed by id. One view owns a cart at a
// time; the store's lock only serializes session bookkeeping and the
// per-request mutations routed through With.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*session
	now      func() time.Time
}

// NewStore returns an empty session store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*session),
		now:      time.Now,
	}
}

// Create opens a new empty cart session and returns its id.
func (s *Store) Create() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.sessions[id] = &session{cart: New(), touched: s.now()}
	return id
}

// With runs fn against the cart addressed by id while holding the store
// lock, refreshing the session's idle timer. It returns ErrSessionNotFound
// for unknown ids.
func (s *Store) With(id string, fn func(*Cart) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	sess.touched = s.now()
	return fn(sess.cart)
}

// Delete discards a session. Unknown ids are not an error.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// evictIdle drops sessions untouched for longer than maxIdle.
func (s *Store) evictIdle(maxIdle time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-maxIdle)
	for id, sess := range s.sessions {
		if sess.touched.Before(cutoff) {
			delete(s.sessions, id)
		}
	}
}

// StartCleanup launches a goroutine that periodically evicts idle sessions
// until ctx is cancelled.
func (s *Store) StartCleanup(ctx context.Context, interval, maxIdle time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.evictIdle(maxIdle)
			}
		}
	}()
}
