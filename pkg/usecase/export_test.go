package usecase

import "time"

// SetClock overrides the time source of the store for testing
func (s *SessionStore) SetClock(now func() time.Time) {
	s.now = now
}
