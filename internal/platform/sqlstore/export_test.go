package sqlstore

import "time"

// SetClock replaces the clock used to expire verified keys.
func (s *UserStore) SetClock(now func() time.Time) {
	s.now = now
}
