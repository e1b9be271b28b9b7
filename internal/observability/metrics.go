// Package observability registers the service's Prometheus collectors.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	classificationsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "posture_service",
		Subsystem: "classifier",
		Name:      "classifications_total",
		Help:      "Number of frames classified, labeled by exercise and status.",
	}, []string{"exercise", "status"})

	frameDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "posture_service",
		Subsystem: "frames",
		Name:      "processing_duration_seconds",
		Help:      "Time spent classifying and logging a single frame.",
		Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
	})

	lastFrameGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "posture_service",
		Subsystem: "frames",
		Name:      "last_frame_timestamp_seconds",
		Help:      "Unix timestamp of the most recently processed frame.",
	})

	activeSessionsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "posture_service",
		Subsystem: "sessions",
		Name:      "active",
		Help:      "Number of sessions currently held in memory.",
	})

	cuesCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "posture_service",
		Subsystem: "feedback",
		Name:      "cues_total",
		Help:      "Feedback cues by outcome (published, throttled, dropped, failed).",
	}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(classificationsCounter, frameDuration, lastFrameGauge, activeSessionsGauge, cuesCounter)
}

// RecordClassification counts a classification outcome.
func RecordClassification(exercise, status string) {
	classificationsCounter.WithLabelValues(exercise, status).Inc()
}

// ClassificationCount returns the counter for an exercise/status pair.
func ClassificationCount(exercise, status string) prometheus.Counter {
	return classificationsCounter.WithLabelValues(exercise, status)
}

// RecordFrame observes the processing time and watermark of a frame.
func RecordFrame(ts time.Time, took time.Duration) {
	frameDuration.Observe(took.Seconds())
	if ts.IsZero() {
		return
	}
	lastFrameGauge.Set(float64(ts.Unix()))
}

// SetActiveSessions updates the in-memory session gauge.
func SetActiveSessions(n int) {
	activeSessionsGauge.Set(float64(n))
}

// ActiveSessions exposes the session gauge.
func ActiveSessions() prometheus.Gauge {
	return activeSessionsGauge
}

// Cue outcomes.
const (
	CuePublished = "published"
	CueThrottled = "throttled"
	CueDropped   = "dropped"
	CueFailed    = "failed"
)

// RecordCue counts a feedback cue outcome.
func RecordCue(outcome string) {
	cuesCounter.WithLabelValues(outcome).Inc()
}

// CueCount returns the counter for a cue outcome.
func CueCount(outcome string) prometheus.Counter {
	return cuesCounter.WithLabelValues(outcome)
}
