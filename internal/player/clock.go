package player

import "time"

// Timer is a pending callback that can be cancelled
type Timer interface {
	// Stop cancels the timer.  It returns false if the timer already fired or was stopped.
	Stop() bool
}

// Clock schedules callbacks.  Tests substitute a manually advanced clock.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
