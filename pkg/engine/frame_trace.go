package engine

import (
	"sync"
	"time"
)

const (
	frameTraceSamplesDefault   = 240
	defaultFrameTraceThreshold = 16667 * time.Microsecond
)

// FramePhaseTimings captures time spent in each frame phase (ms).
type FramePhaseTimings struct {
	DispatchMs float64 `json:"dispatchMs"`
	AnimateMs  float64 `json:"animateMs"`
	RecordMs   float64 `json:"recordMs"`
}

// FrameCounts captures per-frame workload indicators.
type FrameCounts struct {
	Dispatched    int `json:"dispatched"`
	ActiveTickers int `json:"activeTickers"`
	DisplayOps    int `json:"displayOps"`
}

// FrameFlags captures contextual flags for a frame.
type FrameFlags struct {
	Animating bool `json:"animating"`
	NoFace    bool `json:"noFace,omitempty"`
}

// FrameSample is a single frame trace sample.
type FrameSample struct {
	Frame     uint64            `json:"frame"`
	Timestamp int64             `json:"ts"`
	FrameMs   float64           `json:"frameMs"`
	Phases    FramePhaseTimings `json:"phases"`
	Counts    FrameCounts       `json:"counts"`
	Flags     FrameFlags        `json:"flags"`
}

// FrameTimeline is the /frames response shape.
type FrameTimeline struct {
	Samples       []FrameSample `json:"samples"`
	DroppedFrames int           `json:"droppedFrames"`
	ThresholdMs   float64       `json:"thresholdMs"`
}

// FrameTraceBuffer stores recent frame samples in a ring buffer.
type FrameTraceBuffer struct {
	mu        sync.RWMutex
	samples   []FrameSample
	index     int
	count     int
	dropped   int
	threshold time.Duration
}

// NewFrameTraceBuffer creates a new frame trace buffer. Frames slower than
// threshold count as dropped.
func NewFrameTraceBuffer(capacity int, threshold time.Duration) *FrameTraceBuffer {
	if capacity <= 0 {
		capacity = frameTraceSamplesDefault
	}
	if threshold <= 0 {
		threshold = defaultFrameTraceThreshold
	}
	return &FrameTraceBuffer{
		samples:   make([]FrameSample, capacity),
		threshold: threshold,
	}
}

// Threshold returns the dropped frame threshold.
func (b *FrameTraceBuffer) Threshold() time.Duration {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.threshold
}

// Add records a frame sample and updates the dropped frame count.
func (b *FrameTraceBuffer) Add(sample FrameSample, frameDuration time.Duration) {
	b.mu.Lock()
	b.samples[b.index] = sample
	b.index = (b.index + 1) % len(b.samples)
	if b.count < len(b.samples) {
		b.count++
	}
	if frameDuration > b.threshold {
		b.dropped++
	}
	b.mu.Unlock()
}

// Snapshot returns a chronological copy of samples and stats.
func (b *FrameTraceBuffer) Snapshot() FrameTimeline {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.count == 0 {
		return FrameTimeline{ThresholdMs: durationToMillis(b.threshold)}
	}

	result := make([]FrameSample, b.count)
	if b.count < len(b.samples) {
		copy(result, b.samples[:b.count])
	} else {
		copy(result, b.samples[b.index:])
		copy(result[len(b.samples)-b.index:], b.samples[:b.index])
	}

	return FrameTimeline{
		Samples:       result,
		DroppedFrames: b.dropped,
		ThresholdMs:   durationToMillis(b.threshold),
	}
}

func durationToMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
