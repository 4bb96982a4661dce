// Package clockstate holds the date and time of day shown by the clock and
// the loop that keeps them current.
package clockstate

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/go-drift/clockface/pkg/core"
	clockerrors "github.com/go-drift/clockface/pkg/errors"
)

// RefreshInterval is the pause between two readings of the time source.
const RefreshInterval = time.Second

// ErrAlreadyRunning is returned by Run when another Run is active on the
// same State.
var ErrAlreadyRunning = errors.New("clockstate: refresh loop already running")

// ZeroDate and ZeroTime form the sentinel reading used when no time is known.
var (
	ZeroDate = Date{Year: 1970, Month: time.January, Day: 1}
	ZeroTime = TimeOfDay{}
)

// Reading is one consistent (date, time of day) pair.
type Reading struct {
	Date Date
	Time TimeOfDay
}

// State is the observable current date and time of day.
//
// Both fields always come from the same reading. Listeners registered with
// AddListener receive the pair; Dates and Times notify only when their own
// field changes, after the pair has been stored.
type State struct {
	reading *core.Observable[Reading]
	dates   *core.Observable[Date]
	times   *core.Observable[TimeOfDay]
	running atomic.Bool
}

// NewState creates a state holding the given date and time of day.
func NewState(date Date, tod TimeOfDay) *State {
	return &State{
		reading: core.NewObservableWithEquality(Reading{Date: date, Time: tod}, func(a, b Reading) bool { return a == b }),
		dates:   core.NewObservableWithEquality(date, func(a, b Date) bool { return a == b }),
		times:   core.NewObservableWithEquality(tod, func(a, b TimeOfDay) bool { return a == b }),
	}
}

// NewZeroState creates a state holding 1970-01-01 00:00:00.
func NewZeroState() *State {
	return NewState(ZeroDate, ZeroTime)
}

// Date returns the current date.
func (s *State) Date() Date {
	return s.reading.Value().Date
}

// Time returns the current time of day.
func (s *State) Time() TimeOfDay {
	return s.reading.Value().Time
}

// Snapshot returns the current date and time of day from one reading.
func (s *State) Snapshot() (Date, TimeOfDay) {
	r := s.reading.Value()
	return r.Date, r.Time
}

// AddListener registers fn to run whenever the reading changes.
// Returns an unsubscribe function.
func (s *State) AddListener(fn func(Date, TimeOfDay)) func() {
	return s.reading.AddListener(func(r Reading) {
		fn(r.Date, r.Time)
	})
}

// ListenerCount returns the number of AddListener subscribers.
func (s *State) ListenerCount() int {
	return s.reading.ListenerCount()
}

// Dates returns the date field as an observable.
func (s *State) Dates() *core.Observable[Date] {
	return s.dates
}

// Times returns the time-of-day field as an observable.
func (s *State) Times() *core.Observable[TimeOfDay] {
	return s.times
}

// Set replaces both fields with one reading.
func (s *State) Set(date Date, tod TimeOfDay) {
	s.reading.Set(Reading{Date: date, Time: tod})
	s.dates.Set(date)
	s.times.Set(tod)
}

// Refresh reads src once and stores the result.
func (s *State) Refresh(src Source) {
	s.Set(src.Now())
}

// Run refreshes the state from src, waits RefreshInterval on clk, and
// repeats until ctx is canceled. It returns nil on cancellation and
// ErrAlreadyRunning if another Run is active on s.
func (s *State) Run(ctx context.Context, src Source, clk clockwork.Clock) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer s.running.Store(false)

	for {
		if ctx.Err() != nil {
			return nil
		}
		s.Refresh(src)

		timer := clk.NewTimer(RefreshInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.Chan():
		}
	}
}

// IsRunning reports whether a Run loop is active.
func (s *State) IsRunning() bool {
	return s.running.Load()
}

// Serialize returns the date and time of day in their ISO-8601 forms.
func (s *State) Serialize() (string, string) {
	date, tod := s.Snapshot()
	return date.String(), tod.String()
}

// Deserialize rebuilds a state from the strings produced by Serialize.
// It fails with a *errors.ParseError if either string is invalid.
func Deserialize(date, tod string) (*State, error) {
	d, err := ParseDate(date)
	if err != nil {
		return nil, err
	}
	t, err := ParseTimeOfDay(tod)
	if err != nil {
		return nil, err
	}
	return NewState(d, t), nil
}

// RestoreOrZero deserializes a saved state. If the strings do not parse, the
// failure is reported and the zero state is returned.
func RestoreOrZero(date, tod string) *State {
	s, err := Deserialize(date, tod)
	if err != nil {
		clockerrors.Report(&clockerrors.ClockError{
			Op:   "clockstate.Restore",
			Kind: clockerrors.KindParsing,
			Err:  err,
		})
		return NewZeroState()
	}
	return s
}
