package clockface

import (
	"fmt"
	"math"
	"time"

	"github.com/go-drift/clockface/pkg/animation"
)

// epsilon absorbs float noise when comparing angles. Dial angles are whole
// degrees, so anything below a millionth of a degree is the same position.
const epsilon = 1e-6

// TransitionKind is what a hand did in response to a new reading.
type TransitionKind int

const (
	// TransitionNone means the hand was already on target.
	TransitionNone TransitionKind = iota
	// TransitionSnap means the hand jumped to the target without frames in
	// between, because the target was more than one step away.
	TransitionSnap
	// TransitionSweep means the hand started a tween toward the target.
	TransitionSweep
	// TransitionRebase means a finished sweep landed on the last step
	// before a full turn and was moved to the equivalent angle one turn
	// back.
	TransitionRebase
)

func (k TransitionKind) String() string {
	switch k {
	case TransitionNone:
		return "noop"
	case TransitionSnap:
		return "snap"
	case TransitionSweep:
		return "sweep"
	case TransitionRebase:
		return "rebase"
	default:
		return fmt.Sprintf("TransitionKind(%d)", int(k))
	}
}

// TransitionObserver is told about every hand transition.
type TransitionObserver func(hand string, kind TransitionKind)

// Hand is the displayed angle of one clock hand.
type Hand struct {
	name     string
	count    int
	duration time.Duration
	curve    func(float64) float64
	angle    *animation.Animatable
	observer TransitionObserver
}

func newHand(name string, value, count int, duration time.Duration, curve func(float64) float64, observer TransitionObserver) *Hand {
	return &Hand{
		name:     name,
		count:    count,
		duration: duration,
		curve:    curve,
		angle:    animation.NewAnimatable(DisplayAngle(value, count)),
		observer: observer,
	}
}

// Name returns the hand name: hour, minute or second.
func (h *Hand) Name() string {
	return h.name
}

// Angle returns the displayed angle in degrees.
func (h *Hand) Angle() float64 {
	return h.angle.Value()
}

// IsAnimating reports whether the hand is sweeping.
func (h *Hand) IsAnimating() bool {
	return h.angle.IsAnimating()
}

// MoveTo points the hand at value.
//
// A hand already on target does nothing. A target more than one step away
// is snapped to. Otherwise the hand sweeps from its displayed angle over
// the hand's duration; when a sweep finishes on the last step before a full
// turn, the angle is rebased one turn back so the next step sweeps forward
// instead of running backwards around the dial.
func (h *Hand) MoveTo(value int) TransitionKind {
	target := DisplayAngle(value, h.count)
	current := h.angle.Value()
	unit := UnitAngle(h.count)

	var kind TransitionKind
	switch diff := math.Abs(current - target); {
	case diff < epsilon:
		kind = TransitionNone
	case diff > unit+epsilon:
		h.angle.SnapTo(target)
		kind = TransitionSnap
	default:
		h.angle.AnimateTo(target, h.duration, h.curve, h.landed)
		kind = TransitionSweep
	}
	h.report(kind)
	return kind
}

// Stop halts a running sweep at the displayed angle.
func (h *Hand) Stop() {
	h.angle.Stop()
}

func (h *Hand) landed(float64) {
	unit := UnitAngle(h.count)
	boundary := 360 + BaseRotation - unit
	// A MoveTo from another goroutine may have started a new sweep since
	// this one landed; that sweep wins.
	if h.angle.SnapIfIdle(boundary, BaseRotation-unit, epsilon) {
		h.report(TransitionRebase)
	}
}

func (h *Hand) report(kind TransitionKind) {
	if h.observer != nil {
		h.observer(h.name, kind)
	}
}
