package clockstate

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Source reports the current local date and time of day.
type Source interface {
	Now() (Date, TimeOfDay)
}

// SystemSource reads the host clock.
type SystemSource struct {
	// Clock supplies the instant. Nil uses the real clock.
	Clock clockwork.Clock
	// Location is the calendar the instant is converted to. Nil uses time.Local.
	Location *time.Location
}

// NewSystemSource returns a source backed by the real clock in time.Local.
func NewSystemSource() *SystemSource {
	return &SystemSource{Clock: clockwork.NewRealClock()}
}

// Now returns the current date and time of day.
func (s *SystemSource) Now() (Date, TimeOfDay) {
	clk := s.Clock
	if clk == nil {
		clk = clockwork.NewRealClock()
	}
	loc := s.Location
	if loc == nil {
		loc = time.Local
	}
	return FromTime(clk.Now().In(loc))
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func() (Date, TimeOfDay)

// Now calls f.
func (f SourceFunc) Now() (Date, TimeOfDay) {
	return f()
}
