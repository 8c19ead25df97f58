package clock

import "time"

// Timer is a pending callback. Stop cancels it; a stopped timer never fires,
// even when its deadline already passed and the callback is queued.
type Timer interface {
	Stop()
}

// Scheduler serializes work and timer callbacks onto one logical thread.
type Scheduler interface {
	// Do runs f on the scheduler's thread and returns once it has run.
	// It must not be called from inside a callback.
	Do(f func())
	// AfterFunc runs f once after d.
	AfterFunc(d time.Duration, f func()) Timer
	// Every runs f every d until stopped.
	Every(d time.Duration, f func()) Timer
}
