package store

import "time"

// Clock supplies the timestamps assigned on Set.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock at millisecond precision, the precision
// records are persisted with.
type SystemClock struct{}

// Now returns the current time truncated to milliseconds.
func (SystemClock) Now() time.Time {
	return time.UnixMilli(time.Now().UnixMilli())
}
