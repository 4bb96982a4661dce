// Package animation provides the frame-driven animation primitives used by
// the clock face.
//
// # Core Components
//
//   - [Ticker]: a per-frame callback receiving the time elapsed since it
//     started. All active tickers are advanced together by [StepTickers],
//     which the engine calls once per frame.
//
//   - [Animatable]: a float64 value that can be snapped or tweened toward a
//     target. Its displayed value is a pure function of the start value, the
//     target, the start time and the elapsed time.
//
//   - Curves: easing functions such as [LinearCurve] and [EaseInOut] that map
//     linear progress in [0, 1] to eased progress.
//
// # Basic Usage
//
//	hand := animation.NewAnimatable(-90)
//	hand.AddListener(func(v float64) { repaint() })
//	hand.AnimateTo(-84, 950*time.Millisecond, animation.LinearCurve, nil)
//
//	// In the frame loop
//	animation.StepTickers()
//
// Time comes from the package [Clock]; tests swap it with [SetClock].
package animation

import (
	"sync"
	"time"
)

var (
	tickerMu      sync.Mutex
	activeTickers = make(map[*Ticker]struct{})
)

// Ticker calls a callback on each frame while active.
//
// The callback receives the elapsed time since Start was called. Tickers are
// driven by the engine's frame loop via [StepTickers].
type Ticker struct {
	callback func(elapsed time.Duration)
	isActive bool
	start    time.Time
}

// NewTicker creates a new ticker with the given callback.
func NewTicker(callback func(elapsed time.Duration)) *Ticker {
	return &Ticker{
		callback: callback,
	}
}

// Start activates the ticker. Starting an active ticker is a no-op.
func (t *Ticker) Start() {
	tickerMu.Lock()
	defer tickerMu.Unlock()
	if t.isActive {
		return
	}
	t.isActive = true
	t.start = Now()
	activeTickers[t] = struct{}{}
}

// Stop deactivates the ticker.
func (t *Ticker) Stop() {
	tickerMu.Lock()
	defer tickerMu.Unlock()
	if !t.isActive {
		return
	}
	t.isActive = false
	delete(activeTickers, t)
}

// IsActive returns whether the ticker is currently running.
func (t *Ticker) IsActive() bool {
	tickerMu.Lock()
	defer tickerMu.Unlock()
	return t.isActive
}

// Elapsed returns the time since the ticker started.
func (t *Ticker) Elapsed() time.Duration {
	tickerMu.Lock()
	defer tickerMu.Unlock()
	if !t.isActive {
		return 0
	}
	return Now().Sub(t.start)
}

// StepTickers advances all active tickers.
// This should be called once per frame from the engine. Every ticker sees
// the same frame time.
func StepTickers() {
	tickerMu.Lock()
	if len(activeTickers) == 0 {
		tickerMu.Unlock()
		return
	}
	now := Now()
	type step struct {
		ticker  *Ticker
		elapsed time.Duration
	}
	// Copy so callbacks may start or stop tickers.
	steps := make([]step, 0, len(activeTickers))
	for ticker := range activeTickers {
		steps = append(steps, step{ticker: ticker, elapsed: now.Sub(ticker.start)})
	}
	tickerMu.Unlock()

	for _, s := range steps {
		if s.ticker.IsActive() && s.ticker.callback != nil {
			s.ticker.callback(s.elapsed)
		}
	}
}

// HasActiveTickers returns true if any tickers are active.
func HasActiveTickers() bool {
	tickerMu.Lock()
	defer tickerMu.Unlock()
	return len(activeTickers) > 0
}

// ActiveTickerCount returns the number of running tickers.
func ActiveTickerCount() int {
	tickerMu.Lock()
	defer tickerMu.Unlock()
	return len(activeTickers)
}
