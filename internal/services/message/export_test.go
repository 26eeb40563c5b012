package message

import "time"

// SetClockForTest overrides the time source and throttle interval so tests
// can drive the throttle deterministically.
func (s *Service) SetClockForTest(now func() time.Time, minInterval time.Duration) {
	s.now = now
	s.minInterval = minInterval
}
