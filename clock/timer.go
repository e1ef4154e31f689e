package clock

import "time"

// Clock is the host timing facility the scheduler runs against: a wall-clock
// read plus a deferred-execution primitive. Production code uses SystemClock;
// tests substitute a hand-driven fake.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
}

// Timer is the handle for one outstanding deferred call.
type Timer interface {
	// Stop cancels the pending call. Stopping an already-fired timer is a no-op.
	Stop() bool
}

// SystemClock backs the scheduler with the real time package.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

func (SystemClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}
