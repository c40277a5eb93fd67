// Package system provides the wall-clock implementation of ingest.Clock.
package system

import "time"

// Clock reads the system time.
type Clock struct{}

// New returns a Clock.
func New() *Clock {
	return &Clock{}
}

// Now returns the current UTC time.
func (Clock) Now() time.Time {
	return time.Now().UTC()
}
