// Package timeutil provides a testable abstraction over wall-clock reads.
package timeutil

import "time"

// Clock supplies the current time. The pipeline stamps run manifests
// through a Clock so tests can fix the timestamp.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// FixedClock implements Clock returning a constant time.
type FixedClock struct {
	T time.Time
}

// Now returns the fixed time.
func (c FixedClock) Now() time.Time {
	return c.T
}
