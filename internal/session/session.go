// Package session keeps one loaded dataset per browser session.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/csvlens/internal/dataset"
)

// Session is the state of one visitor.
type Session struct {
	ID       string
	Dataset  *dataset.Dataset
	FileName string
	LastSeen time.Time
}

// Store maps session ids to sessions. Safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]*Session
}

// NewStore returns a store that forgets sessions idle for longer than ttl.
// ttl <= 0 keeps sessions forever.
func NewStore(ttl time.Duration) *Store {
	return &Store{ttl: ttl, now: time.Now, sessions: map[string]*Session{}}
}

// Create starts an empty session.
func (s *Store) Create() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	sess := &Session{ID: uuid.NewString(), LastSeen: s.now()}
	s.sessions[sess.ID] = sess
	return *sess
}

// Get returns a copy of the session and marks it as seen.
func (s *Store) Get(id string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, false
	}
	sess.LastSeen = s.now()
	return *sess, true
}

// Replace swaps in a freshly loaded dataset. Callers only get here after a
// successful load, so a failed upload leaves the previous dataset in place.
func (s *Store) Replace(id string, ds *dataset.Dataset) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return false
	}
	sess.Dataset = ds
	sess.FileName = ds.Name
	sess.LastSeen = s.now()
	return true
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	return len(s.sessions)
}

// Sweep drops expired sessions and reports how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked()
}

func (s *Store) sweepLocked() int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.ttl)
	n := 0
	for id, sess := range s.sessions {
		if sess.LastSeen.Before(cutoff) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}
