// Package engine drives a clock face frame by frame. Each frame runs the
// queued callbacks, steps the hand animations and records the face into a
// display list that can be rasterized or served by the debug server.
package engine

import (
	"context"
	"errors"
	"image/png"
	"io"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/go-drift/clockface/pkg/animation"
	"github.com/go-drift/clockface/pkg/clockface"
	"github.com/go-drift/clockface/pkg/clockstate"
	"github.com/go-drift/clockface/pkg/core"
	clockerrors "github.com/go-drift/clockface/pkg/errors"
	"github.com/go-drift/clockface/pkg/graphics"
	"github.com/go-drift/clockface/pkg/logging"
	"github.com/go-drift/clockface/pkg/metrics"
)

const (
	// DefaultFPS is the frame rate used when Options.FPS is zero.
	DefaultFPS = 60
	// DefaultSize is the logical side of the recorded frame.
	DefaultSize = 200.0
	// frameTimingSamples is the number of frame durations kept for /state.
	frameTimingSamples = 120
)

var (
	// ErrNoFrame is returned when rendering before the first frame.
	ErrNoFrame = errors.New("engine: no frame recorded yet")
	// ErrAlreadyRunning is returned by Run when the frame loop is active.
	ErrAlreadyRunning = errors.New("engine: frame loop already running")
)

// Options configures an Engine.
type Options struct {
	// FPS is the frame rate of Run. Defaults to DefaultFPS.
	FPS int
	// Size is the logical size faces are recorded at. Defaults to a
	// DefaultSize square.
	Size graphics.Size
	// Clock drives the frame ticker and frame timing. Defaults to the real
	// clock.
	Clock clockwork.Clock
	// Metrics receives frame counts and durations. May be nil.
	Metrics *metrics.Metrics
	// Logger defaults to a no-op logger.
	Logger logging.Logger
}

// Engine owns the frame loop for one face at a time.
type Engine struct {
	clock    clockwork.Clock
	interval time.Duration
	size     graphics.Size
	metrics  *metrics.Metrics
	logger   logging.Logger

	dispatchMu    sync.Mutex
	dispatchQueue []func()

	// frameLock serializes StepFrame.
	frameLock sync.Mutex

	mu     sync.RWMutex
	face   *clockface.Face
	latest *graphics.DisplayList
	frames uint64

	readings *core.Observable[clockstate.Reading]
	timings  *FrameTimingBuffer
	trace    *FrameTraceBuffer
	running  atomic.Bool
}

// New creates an engine. Call SetFace before the first frame.
func New(opts Options) *Engine {
	if opts.FPS <= 0 {
		opts.FPS = DefaultFPS
	}
	if opts.Size.Width <= 0 || opts.Size.Height <= 0 {
		opts.Size = graphics.Square(DefaultSize)
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	interval := time.Second / time.Duration(opts.FPS)
	return &Engine{
		clock:    opts.Clock,
		interval: interval,
		size:     opts.Size,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
		readings: core.NewObservableWithEquality(clockstate.Reading{}, func(a, b clockstate.Reading) bool { return a == b }),
		timings:  NewFrameTimingBuffer(frameTimingSamples),
		trace:    NewFrameTraceBuffer(0, interval),
	}
}

// SetFace replaces the face painted by subsequent frames. The previous face
// is not disposed.
func (e *Engine) SetFace(face *clockface.Face) {
	e.mu.Lock()
	e.face = face
	e.mu.Unlock()
}

// Face returns the current face, or nil.
func (e *Engine) Face() *clockface.Face {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.face
}

// Interval returns the time between two frames of Run.
func (e *Engine) Interval() time.Duration {
	return e.interval
}

// Dispatch queues fn to run on the frame goroutine at the start of the next
// frame. It is the dispatcher handed to clockface.WithDispatcher.
func (e *Engine) Dispatch(fn func()) {
	if fn == nil {
		return
	}
	e.dispatchMu.Lock()
	e.dispatchQueue = append(e.dispatchQueue, fn)
	e.dispatchMu.Unlock()
}

func (e *Engine) drainDispatchQueue() []func() {
	e.dispatchMu.Lock()
	callbacks := e.dispatchQueue
	e.dispatchQueue = nil
	e.dispatchMu.Unlock()
	return callbacks
}

// Run steps a frame on every tick of the engine clock until ctx is done.
func (e *Engine) Run(ctx context.Context) error {
	if !e.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer e.running.Store(false)

	ticker := e.clock.NewTicker(e.interval)
	defer ticker.Stop()

	e.logger.WithField("fps", int(time.Second/e.interval)).Debug("frame loop started")
	e.StepFrame()
	for {
		select {
		case <-ctx.Done():
			e.logger.Debug("frame loop stopped")
			return nil
		case <-ticker.Chan():
			e.StepFrame()
		}
	}
}

// IsRunning reports whether Run is active.
func (e *Engine) IsRunning() bool {
	return e.running.Load()
}

// StepFrame produces one frame and returns its display list, or nil when
// no face is set.
func (e *Engine) StepFrame() *graphics.DisplayList {
	e.frameLock.Lock()
	defer e.frameLock.Unlock()
	defer clockerrors.Recover("engine.frame")

	start := e.clock.Now()
	var sample FrameSample

	callbacks := e.drainDispatchQueue()
	for _, cb := range callbacks {
		cb()
	}
	sample.Counts.Dispatched = len(callbacks)
	phaseStart := e.clock.Now()
	sample.Phases.DispatchMs = durationToMillis(phaseStart.Sub(start))

	animation.StepTickers()
	sample.Counts.ActiveTickers = animation.ActiveTickerCount()
	now := e.clock.Now()
	sample.Phases.AnimateMs = durationToMillis(now.Sub(phaseStart))
	phaseStart = now

	face := e.Face()
	var frame *graphics.DisplayList
	if face != nil {
		var recorder graphics.PictureRecorder
		face.Paint(recorder.BeginRecording(e.size))
		frame = recorder.EndRecording()
		sample.Counts.DisplayOps = frame.Len()
		sample.Flags.Animating = face.IsAnimating()
	} else {
		sample.Flags.NoFace = true
	}
	end := e.clock.Now()
	sample.Phases.RecordMs = durationToMillis(end.Sub(phaseStart))

	e.mu.Lock()
	e.frames++
	sample.Frame = e.frames
	if frame != nil {
		e.latest = frame
	}
	e.mu.Unlock()

	elapsed := end.Sub(start)
	sample.Timestamp = end.UnixMilli()
	sample.FrameMs = durationToMillis(elapsed)
	e.timings.Add(elapsed)
	e.trace.Add(sample, elapsed)
	e.metrics.FrameRendered(elapsed.Seconds())

	if face != nil {
		date, tod := face.State().Snapshot()
		e.readings.Set(clockstate.Reading{Date: date, Time: tod})
	}
	return frame
}

// LatestFrame returns the most recent display list, or nil before the
// first frame with a face.
func (e *Engine) LatestFrame() *graphics.DisplayList {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.latest
}

// FrameCount returns the number of frames stepped so far.
func (e *Engine) FrameCount() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.frames
}

// Timings returns the recent frame durations.
func (e *Engine) Timings() *FrameTimingBuffer {
	return e.timings
}

// Trace returns the per-frame trace buffer.
func (e *Engine) Trace() *FrameTraceBuffer {
	return e.trace
}

// Subscribe calls fn on the frame goroutine whenever a frame shows a
// reading different from the previous one. fn must not block.
func (e *Engine) Subscribe(fn func(clockstate.Reading)) func() {
	return e.readings.AddListener(fn)
}

// Reading returns the reading shown by the latest frame.
func (e *Engine) Reading() clockstate.Reading {
	return e.readings.Value()
}

// RenderPNG rasterizes the latest frame at size pixels square.
func (e *Engine) RenderPNG(w io.Writer, size, supersample int) error {
	frame := e.LatestFrame()
	if frame == nil {
		return ErrNoFrame
	}
	return RenderPNG(w, frame, size, supersample)
}

// RenderSVG writes the latest frame as SVG with a size by size viewport.
func (e *Engine) RenderSVG(w io.Writer, size int) error {
	frame := e.LatestFrame()
	if frame == nil {
		return ErrNoFrame
	}
	return RenderSVG(w, frame, size)
}

// RenderPNG rasterizes frame into a size by size PNG. With supersample > 1
// the frame is drawn at that multiple and scaled down.
func RenderPNG(w io.Writer, frame *graphics.DisplayList, size, supersample int) error {
	if size <= 0 {
		size = int(math.Round(frame.Size().Width))
	}
	supersample = max(supersample, 1)
	canvas := graphics.NewRasterCanvas(size*supersample, size*supersample)
	frame.Paint(NewScalingCanvas(canvas, float64(size*supersample)/frame.Size().Width))
	if supersample == 1 {
		if err := canvas.EncodePNG(w); err != nil {
			return clockerrors.Wrap("engine.RenderPNG", clockerrors.KindRender, err)
		}
		return nil
	}
	if err := png.Encode(w, canvas.Scaled(size, size)); err != nil {
		return clockerrors.Wrap("engine.RenderPNG", clockerrors.KindRender, err)
	}
	return nil
}

// RenderSVG writes frame as an SVG document with a size by size viewport.
// A size of zero keeps the recorded size.
func RenderSVG(w io.Writer, frame *graphics.DisplayList, size int) error {
	if size <= 0 {
		size = int(math.Round(frame.Size().Width))
	}
	canvas := graphics.NewSVGCanvas(graphics.Square(float64(size)))
	frame.Paint(NewScalingCanvas(canvas, float64(size)/frame.Size().Width))
	if _, err := canvas.WriteTo(w); err != nil {
		return clockerrors.Wrap("engine.RenderSVG", clockerrors.KindRender, err)
	}
	return nil
}
