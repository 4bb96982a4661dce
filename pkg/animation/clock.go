package animation

import (
	"sync"
	"time"
)

// Clock provides time for animations. The default implementation reads the
// system time. A clockwork.FakeClock satisfies this interface, so tests can
// inject one via SetClock and advance animations deterministically.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

var (
	clockMu sync.RWMutex
	clock   Clock = realClock{}
)

// SetClock replaces the animation clock and returns the previous one so
// callers can restore it during cleanup. A nil clock restores system time.
func SetClock(c Clock) Clock {
	if c == nil {
		c = realClock{}
	}
	clockMu.Lock()
	defer clockMu.Unlock()
	prev := clock
	clock = c
	return prev
}

// Now returns the current time from the active clock.
func Now() time.Time {
	clockMu.RLock()
	c := clock
	clockMu.RUnlock()
	return c.Now()
}
