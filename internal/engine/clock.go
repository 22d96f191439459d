package engine

import "time"

// Clock abstracts time.Now() to allow deterministic testing.
// The Codec uses it to pick the implicit year when none is configured.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

// Now returns the current local time.
func (RealClock) Now() time.Time {
	return time.Now()
}
