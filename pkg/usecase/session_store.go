package usecase

import (
	"sync"
	"time"

	"github.com/secmon-lab/iract/pkg/domain/model"
)

// DefaultSessionTTL is how long an untouched session is kept
const DefaultSessionTTL = 12 * time.Hour

// SessionStore keeps browser sessions in memory. Sessions idle for longer than
// the TTL are dropped on access and by Sweep.
type SessionStore struct {
	sessions sync.Map
	ttl      time.Duration
	now      func() time.Time
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		ttl: ttl,
		now: time.Now,
	}
}

// Get returns a live session and refreshes its last-seen time
func (s *SessionStore) Get(id model.SessionID) (*model.Session, bool) {
	val, ok := s.sessions.Load(id)
	if !ok {
		return nil, false
	}

	sess := val.(*model.Session)
	now := s.now()
	if now.Sub(sess.LastSeen()) > s.ttl {
		s.sessions.Delete(id)
		return nil, false
	}

	sess.Touch(now)
	return sess, true
}

// Create registers a new session under a fresh ID
func (s *SessionStore) Create() *model.Session {
	sess := model.NewSession(model.NewSessionID())
	sess.Touch(s.now())
	s.sessions.Store(sess.ID(), sess)
	return sess
}

// Sweep drops every expired session and returns how many were removed
func (s *SessionStore) Sweep() int {
	now := s.now()
	removed := 0
	s.sessions.Range(func(key, val any) bool {
		if now.Sub(val.(*model.Session).LastSeen()) > s.ttl {
			s.sessions.Delete(key)
			removed++
		}
		return true
	})
	return removed
}

// Len returns the number of stored sessions, expired or not
func (s *SessionStore) Len() int {
	n := 0
	s.sessions.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
