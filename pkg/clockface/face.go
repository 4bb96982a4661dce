// Package clockface renders the analog clock: it turns the observed time of
// day into hand angles, animates the hands between readings and paints the
// dial.
package clockface

import (
	"sync"

	"github.com/go-drift/clockface/pkg/clockstate"
	"github.com/go-drift/clockface/pkg/graphics"
)

// Face binds three hands to a clock state.
//
// The face subscribes to the state once. Every new reading moves all three
// hands; each hand runs its own timeline and they finish in no particular
// order. Call Dispose to unsubscribe.
type Face struct {
	state  *clockstate.State
	style  Style
	hour   *Hand
	minute *Hand
	second *Hand

	dispatch func(func())
	observer TransitionObserver

	mu          sync.Mutex
	unsubscribe func()
	disposed    bool
}

// Option configures a Face.
type Option func(*Face)

// WithDispatcher runs state notifications through dispatch, typically to
// move them onto the frame goroutine that steps the animations.
func WithDispatcher(dispatch func(func())) Option {
	return func(f *Face) {
		f.dispatch = dispatch
	}
}

// WithTransitionObserver reports every hand transition to fn.
func WithTransitionObserver(fn TransitionObserver) Option {
	return func(f *Face) {
		f.observer = fn
	}
}

// NewFace creates a face showing state's current time and subscribes to
// future readings.
//
// Without WithDispatcher, readings move the hands on the goroutine that
// sets the state. Hosts that step frames on another goroutine should pass a
// dispatcher so hand updates and frame steps do not interleave.
func NewFace(state *clockstate.State, style Style, opts ...Option) *Face {
	style = style.withDefaults()
	f := &Face{
		state: state,
		style: style,
	}
	for _, opt := range opts {
		opt(f)
	}

	tod := state.Time()
	f.hour = newHand("hour", tod.Hour, style.HourCount, style.Duration, style.Curve, f.observer)
	f.minute = newHand("minute", tod.Minute, style.MinuteCount, style.Duration, style.Curve, f.observer)
	f.second = newHand("second", tod.Second, style.SecondCount, style.Duration, style.Curve, f.observer)

	f.unsubscribe = state.AddListener(func(_ clockstate.Date, tod clockstate.TimeOfDay) {
		if f.dispatch == nil {
			f.show(tod)
			return
		}
		f.dispatch(func() { f.show(tod) })
	})
	return f
}

func (f *Face) show(tod clockstate.TimeOfDay) {
	f.mu.Lock()
	disposed := f.disposed
	f.mu.Unlock()
	if disposed {
		return
	}
	f.hour.MoveTo(tod.Hour)
	f.minute.MoveTo(tod.Minute)
	f.second.MoveTo(tod.Second)
}

// State returns the observed clock state.
func (f *Face) State() *clockstate.State {
	return f.state
}

// Style returns the style with defaults applied.
func (f *Face) Style() Style {
	return f.style
}

// Hands returns the hour, minute and second hands.
func (f *Face) Hands() (hour, minute, second *Hand) {
	return f.hour, f.minute, f.second
}

// Angles returns the displayed hand angles.
func (f *Face) Angles() Angles {
	return Angles{
		Hour:   f.hour.Angle(),
		Minute: f.minute.Angle(),
		Second: f.second.Angle(),
	}
}

// IsAnimating reports whether any hand is sweeping.
func (f *Face) IsAnimating() bool {
	return f.hour.IsAnimating() || f.minute.IsAnimating() || f.second.IsAnimating()
}

// Paint draws the face at its displayed angles.
func (f *Face) Paint(canvas graphics.Canvas) {
	PaintFace(canvas, f.Angles(), f.style)
}

// Dispose unsubscribes from the state and stops the hands. It is safe to
// call more than once.
func (f *Face) Dispose() {
	f.mu.Lock()
	if f.disposed {
		f.mu.Unlock()
		return
	}
	f.disposed = true
	unsubscribe := f.unsubscribe
	f.unsubscribe = nil
	f.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	f.hour.Stop()
	f.minute.Stop()
	f.second.Stop()
}
