// Package session accumulates classification results for one exercise
// session and derives accuracy statistics from the log.
package session

import (
	"sync"
	"time"

	"github.com/hmzi67/cervical-posture-detection/internal/exercise"
)

// DefaultTarget applies to exercise names missing from the target table.
var DefaultTarget = exercise.Band{Min: 0, Max: 100}

// Record is one logged measurement.
type Record struct {
	Elapsed       float64         `json:"elapsed_seconds"`
	Exercise      string          `json:"exercise"`
	Measurement   float64         `json:"measurement"`
	Status        exercise.Status `json:"status"`
	InTargetRange bool            `json:"in_target_range"`
	TargetMin     float64         `json:"target_min"`
	TargetMax     float64         `json:"target_max"`
}

// Clock returns the current instant. time.Now carries a monotonic reading,
// which keeps elapsed values immune to wall clock steps.
type Clock func() time.Time

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock overrides the time source.
func WithClock(c Clock) Option {
	return func(t *Tracker) { t.clock = c }
}

// WithTargets replaces the per-exercise target table used to mark records in range.
func WithTargets(targets map[string]exercise.Band) Option {
	return func(t *Tracker) {
		t.targets = make(map[string]exercise.Band, len(targets))
		for name, band := range targets {
			t.targets[name] = band
		}
	}
}

// Tracker owns the append-only session log. Appends and reads are serialized,
// so a frame loop may log while another goroutine reads stats.
type Tracker struct {
	mu            sync.Mutex
	clock         Clock
	targets       map[string]exercise.Band
	started       bool
	epoch         time.Time
	exerciseStart time.Time
	exerciseName  string
	records       []Record
}

// NewTracker constructs a tracker whose targets default to the classifier bands.
func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{clock: time.Now, targets: exercise.TargetsByName()}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start begins a new session, discarding any previous log.
func (t *Tracker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.startLocked()
}

func (t *Tracker) startLocked() {
	t.epoch = t.clock()
	t.records = nil
	t.started = true
}

// Started reports whether a session has begun.
func (t *Tracker) Started() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.started
}

// StartExercise marks the start of an exercise for duration display. It
// starts the session when none is active.
func (t *Tracker) StartExercise(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.started {
		t.startLocked()
	}
	t.exerciseName = name
	t.exerciseStart = t.clock()
}

// CurrentExercise returns the exercise most recently started and how long it has run.
func (t *Tracker) CurrentExercise() (string, time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.exerciseStart.IsZero() {
		return "", 0
	}
	return t.exerciseName, t.clock().Sub(t.exerciseStart)
}

// Log appends a measurement. It never rejects input.
func (t *Tracker) Log(name string, measurement float64, status exercise.Status) Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.started {
		t.startLocked()
	}

	elapsed := t.clock().Sub(t.epoch).Seconds()
	if n := len(t.records); n > 0 && elapsed < t.records[n-1].Elapsed {
		elapsed = t.records[n-1].Elapsed
	}

	target, ok := t.targets[name]
	if !ok {
		target = DefaultTarget
	}
	rec := Record{
		Elapsed:       elapsed,
		Exercise:      name,
		Measurement:   measurement,
		Status:        status,
		InTargetRange: target.Contains(measurement),
		TargetMin:     target.Min,
		TargetMax:     target.Max,
	}
	t.records = append(t.records, rec)
	return rec
}

// Records returns a copy of the log.
func (t *Tracker) Records() []Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Record, len(t.records))
	copy(out, t.records)
	return out
}

// Stats folds the full log into an aggregate snapshot.
func (t *Tracker) Stats() Stats {
	return ComputeStats(t.Records())
}

// Progress derives the visual summaries from the log. ok is false when the log is empty.
func (t *Tracker) Progress() (Progress, bool) {
	return ComputeProgress(t.Records())
}
