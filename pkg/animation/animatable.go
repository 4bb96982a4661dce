package animation

import (
	"math"
	"slices"
	"sync"
	"time"
)

// Animatable holds a float64 that can be snapped to a value or tweened
// toward a target over a duration.
//
// It is either idle or animating. While animating, the displayed value is a
// pure function of the value at AnimateTo, the target, and the time elapsed
// since AnimateTo, evaluated on every [StepTickers] call.
//
// Listeners run after the internal lock is released and may call back into
// the Animatable.
type Animatable struct {
	mu        sync.Mutex
	value     float64
	tween     *Tween[float64]
	duration  time.Duration
	curve     func(float64) float64
	onEnd     func(float64)
	ticker    *Ticker
	listeners map[int]func(float64)
	nextID    int
}

// NewAnimatable creates an idle Animatable holding initial.
func NewAnimatable(initial float64) *Animatable {
	return &Animatable{
		value:     initial,
		listeners: make(map[int]func(float64)),
	}
}

// Value returns the displayed value.
func (a *Animatable) Value() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.value
}

// Target returns the value the animation is heading to, or the current
// value when idle.
func (a *Animatable) Target() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ticker != nil {
		return a.tween.End
	}
	return a.value
}

// IsAnimating reports whether a tween is in progress.
func (a *Animatable) IsAnimating() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ticker != nil
}

// SnapTo stops any running animation and sets the value immediately.
// Listeners are notified once; no intermediate values are produced.
func (a *Animatable) SnapTo(value float64) {
	a.mu.Lock()
	a.stopLocked()
	a.value = value
	listeners := a.snapshotLocked()
	a.mu.Unlock()

	notify(listeners, value)
}

// SnapIfIdle sets the value to value only when no animation is running and
// the current value is within tolerance of at. The check and the update
// happen under one lock. It reports whether the value was set.
func (a *Animatable) SnapIfIdle(at, value, tolerance float64) bool {
	a.mu.Lock()
	if a.ticker != nil || math.Abs(a.value-at) >= tolerance {
		a.mu.Unlock()
		return false
	}
	a.value = value
	listeners := a.snapshotLocked()
	a.mu.Unlock()

	notify(listeners, value)
	return true
}

// AnimateTo tweens from the displayed value to target over duration using
// curve (LinearCurve when nil). A running animation is replaced and the new
// one starts from wherever the old one was. onEnd, if non-nil, is called
// with the final value when the animation completes on its own; it is not
// called when the animation is stopped or replaced.
//
// A non-positive duration behaves like SnapTo followed by onEnd.
func (a *Animatable) AnimateTo(target float64, duration time.Duration, curve func(float64) float64, onEnd func(float64)) {
	if duration <= 0 {
		a.SnapTo(target)
		if onEnd != nil {
			onEnd(target)
		}
		return
	}
	if curve == nil {
		curve = LinearCurve
	}

	a.mu.Lock()
	a.stopLocked()
	a.tween = TweenFloat64(a.value, target)
	a.duration = duration
	a.curve = curve
	a.onEnd = onEnd
	var ticker *Ticker
	ticker = NewTicker(func(elapsed time.Duration) {
		a.tick(ticker, elapsed)
	})
	a.ticker = ticker
	ticker.Start()
	a.mu.Unlock()
}

// Stop halts a running animation at its current value.
func (a *Animatable) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopLocked()
}

// AddListener registers fn to receive every new displayed value.
// Returns an unsubscribe function.
func (a *Animatable) AddListener(fn func(float64)) func() {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := a.nextID
	a.nextID++
	a.listeners[id] = fn
	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		delete(a.listeners, id)
	}
}

func (a *Animatable) tick(ticker *Ticker, elapsed time.Duration) {
	a.mu.Lock()
	if a.ticker != ticker {
		// Superseded by SnapTo, Stop or a newer AnimateTo.
		a.mu.Unlock()
		ticker.Stop()
		return
	}

	progress := float64(elapsed) / float64(a.duration)
	done := progress >= 1
	if done {
		progress = 1
	}
	if progress < 0 {
		progress = 0
	}
	a.value = a.tween.Evaluate(a.curve(progress))

	var onEnd func(float64)
	if done {
		a.value = a.tween.End
		onEnd = a.onEnd
		a.stopLocked()
	}
	value := a.value
	listeners := a.snapshotLocked()
	a.mu.Unlock()

	notify(listeners, value)
	if onEnd != nil {
		onEnd(value)
	}
}

func (a *Animatable) stopLocked() {
	if a.ticker != nil {
		a.ticker.Stop()
		a.ticker = nil
	}
	a.onEnd = nil
}

func (a *Animatable) snapshotLocked() []func(float64) {
	ids := make([]int, 0, len(a.listeners))
	for id := range a.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]func(float64), 0, len(ids))
	for _, id := range ids {
		out = append(out, a.listeners[id])
	}
	return out
}

func notify(listeners []func(float64), value float64) {
	for _, fn := range listeners {
		fn(value)
	}
}
