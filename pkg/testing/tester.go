package testing

import (
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/go-drift/clockface/pkg/animation"
	"github.com/go-drift/clockface/pkg/clockface"
	"github.com/go-drift/clockface/pkg/clockstate"
	"github.com/go-drift/clockface/pkg/graphics"
)

const (
	// DefaultTestSize is the default side length of the test surface.
	DefaultTestSize = 200
	// FrameInterval is the time one Pump step advances by default.
	FrameInterval = 16 * time.Millisecond
)

// ErrSettleTimeout is returned when PumpAndSettle exceeds its timeout.
var ErrSettleTimeout = errors.New("PumpAndSettle timed out: hands did not settle")

// TestDate is the date the tester's state starts on.
var TestDate = clockstate.Date{Year: 2024, Month: time.January, Day: 1}

// FaceTester drives a clock face with a fake clock and no frame loop.
// State notifications are queued and run at the start of the next Pump,
// the same way the engine dispatches them onto its frame goroutine.
type FaceTester struct {
	clock       *clockwork.FakeClock
	prevClock   animation.Clock
	state       *clockstate.State
	face        *clockface.Face
	size        graphics.Size
	dispatches  []func()
	transitions []Transition
}

// Transition is one hand transition observed by a FaceTester.
type Transition struct {
	Hand string
	Kind clockface.TransitionKind
}

// NewFaceTester creates a face showing tod with the default style and
// registers cleanup with t.
func NewFaceTester(t *testing.T, tod clockstate.TimeOfDay) *FaceTester {
	return NewFaceTesterWithStyle(t, tod, clockface.DefaultStyle())
}

// NewFaceTesterWithStyle creates a face showing tod with style.
func NewFaceTesterWithStyle(t *testing.T, tod clockstate.TimeOfDay, style clockface.Style) *FaceTester {
	start := time.Date(TestDate.Year, TestDate.Month, TestDate.Day, tod.Hour, tod.Minute, tod.Second, 0, time.UTC)
	clk := clockwork.NewFakeClockAt(start)
	tester := &FaceTester{
		clock: clk,
		state: clockstate.NewState(TestDate, tod),
		size:  graphics.Square(DefaultTestSize),
	}
	tester.prevClock = animation.SetClock(clk)
	tester.face = clockface.NewFace(tester.state, style,
		clockface.WithDispatcher(tester.Dispatch),
		clockface.WithTransitionObserver(func(hand string, kind clockface.TransitionKind) {
			tester.transitions = append(tester.transitions, Transition{Hand: hand, Kind: kind})
		}),
	)
	t.Cleanup(tester.Cleanup)
	return tester
}

// Cleanup disposes the face and restores the animation clock.
func (t *FaceTester) Cleanup() {
	t.face.Dispose()
	animation.SetClock(t.prevClock)
}

// Clock returns the fake clock.
func (t *FaceTester) Clock() *clockwork.FakeClock {
	return t.clock
}

// State returns the clock state driving the face.
func (t *FaceTester) State() *clockstate.State {
	return t.state
}

// Face returns the face under test.
func (t *FaceTester) Face() *clockface.Face {
	return t.face
}

// SetSize sets the surface size used by CaptureSnapshot.
func (t *FaceTester) SetSize(size graphics.Size) {
	t.size = size
}

// Dispatch queues fn to run on the next Pump.
func (t *FaceTester) Dispatch(fn func()) {
	t.dispatches = append(t.dispatches, fn)
}

// SetTime stores a new reading on the state. The hands react on the next
// Pump.
func (t *FaceTester) SetTime(tod clockstate.TimeOfDay) {
	t.state.Set(TestDate, tod)
}

// Transitions returns the hand transitions seen so far and clears the list.
func (t *FaceTester) Transitions() []Transition {
	out := t.transitions
	t.transitions = nil
	return out
}

// Pump runs queued dispatches, advances the fake clock by d and steps the
// animation tickers once.
func (t *FaceTester) Pump(d time.Duration) {
	t.flushDispatches()
	if d > 0 {
		t.clock.Advance(d)
	}
	animation.StepTickers()
}

// PumpAndSettle pumps frames of FrameInterval until no hand is animating.
// Returns ErrSettleTimeout if the hands are still moving after timeout of
// fake time.
func (t *FaceTester) PumpAndSettle(timeout time.Duration) error {
	t.Pump(0)
	var elapsed time.Duration
	for t.face.IsAnimating() {
		if elapsed >= timeout {
			return ErrSettleTimeout
		}
		t.Pump(FrameInterval)
		elapsed += FrameInterval
	}
	return nil
}

func (t *FaceTester) flushDispatches() {
	for len(t.dispatches) > 0 {
		pending := t.dispatches
		t.dispatches = nil
		for _, fn := range pending {
			fn()
		}
	}
}
