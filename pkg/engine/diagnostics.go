package engine

import (
	"sync"
	"time"
)

// FrameTimingBuffer is a ring buffer of the time spent producing recent frames.
type FrameTimingBuffer struct {
	mu       sync.RWMutex
	samples  []time.Duration
	index    int
	capacity int
	count    int
}

// NewFrameTimingBuffer creates a new FrameTimingBuffer with the given capacity.
func NewFrameTimingBuffer(capacity int) *FrameTimingBuffer {
	if capacity <= 0 {
		capacity = 60
	}
	return &FrameTimingBuffer{
		samples:  make([]time.Duration, capacity),
		capacity: capacity,
	}
}

// Add records a frame duration to the buffer.
func (b *FrameTimingBuffer) Add(duration time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.samples[b.index] = duration
	b.index = (b.index + 1) % b.capacity
	if b.count < b.capacity {
		b.count++
	}
}

// Samples returns a copy of the frame samples in chronological order.
func (b *FrameTimingBuffer) Samples() []time.Duration {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.count == 0 {
		return nil
	}

	result := make([]time.Duration, b.count)
	if b.count < b.capacity {
		// Buffer not yet full - samples start at 0
		copy(result, b.samples[:b.count])
	} else {
		// Buffer full - oldest sample is at b.index
		copy(result, b.samples[b.index:])
		copy(result[b.capacity-b.index:], b.samples[:b.index])
	}
	return result
}

// SamplesInto copies frame samples into the provided slice and returns the number copied.
// This avoids allocation if dst is reused. Samples are in chronological order.
func (b *FrameTimingBuffer) SamplesInto(dst []time.Duration) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.count == 0 {
		return 0
	}

	n := min(b.count, len(dst))

	if b.count < b.capacity {
		copy(dst[:n], b.samples[:n])
	} else {
		// Buffer full - oldest sample is at b.index
		firstPart := b.capacity - b.index
		if firstPart >= n {
			copy(dst[:n], b.samples[b.index:b.index+n])
		} else {
			copy(dst[:firstPart], b.samples[b.index:])
			copy(dst[firstPart:n], b.samples[:n-firstPart])
		}
	}
	return n
}

// Count returns the number of samples currently in the buffer.
func (b *FrameTimingBuffer) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.count
}

// Average returns the mean of the buffered samples, or zero when empty.
func (b *FrameTimingBuffer) Average() time.Duration {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.count == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range b.samples[:b.count] {
		total += d
	}
	return total / time.Duration(b.count)
}

// Max returns the longest buffered sample.
func (b *FrameTimingBuffer) Max() time.Duration {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var longest time.Duration
	for _, d := range b.samples[:b.count] {
		longest = max(longest, d)
	}
	return longest
}
