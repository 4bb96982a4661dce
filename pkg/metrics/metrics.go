// Package metrics exposes Prometheus collectors for the clock pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Metrics holds the collectors updated by the refresh loop, the face and
// the engine. A nil *Metrics is valid and records nothing.
type Metrics struct {
	refreshTicks    prometheus.Counter
	framesRendered  prometheus.Counter
	frameDuration   prometheus.Histogram
	handTransitions *prometheus.CounterVec
	logEntries      *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		refreshTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clockface_refresh_ticks_total",
			Help: "Number of time readings published by the refresh loop",
		}),
		framesRendered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clockface_frames_rendered_total",
			Help: "Number of frames recorded by the engine",
		}),
		frameDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "clockface_frame_duration_seconds",
			Help:    "Time spent producing one frame",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12), // 0.1ms to ~200ms
		}),
		handTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clockface_hand_transitions_total",
			Help: "Hand updates by hand and transition kind",
		}, []string{"hand", "kind"}),
		logEntries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clockface_log_entries_total",
			Help: "Log entries by level",
		}, []string{"level"}),
	}

	reg.MustRegister(
		m.refreshTicks,
		m.framesRendered,
		m.frameDuration,
		m.handTransitions,
		m.logEntries,
	)
	return m
}

// RefreshTick counts one published reading.
func (m *Metrics) RefreshTick() {
	if m == nil {
		return
	}
	m.refreshTicks.Inc()
}

// FrameRendered counts one frame and observes how long it took.
func (m *Metrics) FrameRendered(seconds float64) {
	if m == nil {
		return
	}
	m.framesRendered.Inc()
	m.frameDuration.Observe(seconds)
}

// HandTransition counts one hand update of the given kind.
func (m *Metrics) HandTransition(hand, kind string) {
	if m == nil {
		return
	}
	m.handTransitions.WithLabelValues(hand, kind).Inc()
}

// LogHook returns a logrus hook counting entries per level.
func (m *Metrics) LogHook() logrus.Hook {
	return logHook{m: m}
}

type logHook struct {
	m *Metrics
}

func (h logHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h logHook) Fire(entry *logrus.Entry) error {
	if h.m == nil {
		return nil
	}
	h.m.logEntries.WithLabelValues(entry.Level.String()).Inc()
	return nil
}

// Handler serves the metrics gathered from g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
