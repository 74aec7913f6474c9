package httphandler

import "time"

// SetClock replaces the limiter's time source.
func (l *VisitorLimiter) SetClock(now func() time.Time) { l.now = now }
