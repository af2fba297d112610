package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/stockpulse/internal/infra/identity"
)

// Session is one browser session; it lives only in memory
type Session struct {
	ID        string
	User      *identity.User
	State     string // pending OAuth state, cleared once used
	CreatedAt time.Time
	LastSeen  time.Time
}

// Store keeps sessions in memory
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewStore creates a store; sessions idle longer than ttl expire
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Ensure returns the live session for id or creates a new one
// The bool reports whether a new session was created
func (s *Store) Ensure(id string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if sess, ok := s.live(id, now); ok {
		sess.LastSeen = now
		return *sess, false
	}

	sess := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		LastSeen:  now,
	}
	s.sessions[sess.ID] = sess
	return *sess, true
}

// Get returns a live session
func (s *Store) Get(id string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.live(id, s.now())
	if !ok {
		return Session{}, false
	}
	return *sess, true
}

// Update applies fn to a live session
func (s *Store) Update(id string, fn func(*Session)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.live(id, s.now())
	if !ok {
		return false
	}
	fn(sess)
	return true
}

// Delete removes a session
func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Sweep removes expired sessions and returns their IDs
func (s *Store) Sweep() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var removed []string
	for id, sess := range s.sessions {
		if now.Sub(sess.LastSeen) > s.ttl {
			delete(s.sessions, id)
			removed = append(removed, id)
		}
	}
	return removed
}

// Len returns the number of stored sessions
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Store) live(id string, now time.Time) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if now.Sub(sess.LastSeen) > s.ttl {
		delete(s.sessions, id)
		return nil, false
	}
	return sess, true
}
