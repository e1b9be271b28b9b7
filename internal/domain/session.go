package domain

import (
	"sync"
	"time"

	"github.com/hmzi67/cervical-posture-detection/internal/exercise"
	"github.com/hmzi67/cervical-posture-detection/internal/session"
)

// frameWindow is the number of recent frames averaged for processing stats.
const frameWindow = 30

// Session is one patient's exercise session held in memory.
type Session struct {
	ID        string
	TenantID  string
	UserID    string
	CreatedAt time.Time
	Tracker   *session.Tracker

	mu         sync.Mutex
	active     exercise.Kind
	frameCount int64
	durations  []time.Duration
}

// FrameStats summarizes recent frame processing cost.
type FrameStats struct {
	FrameCount           int64   `json:"frame_count"`
	AvgProcessingSeconds float64 `json:"avg_processing_seconds"`
	AvgFPS               float64 `json:"avg_fps"`
}

// Summary is the externally visible state of a session.
type Summary struct {
	ID                     string     `json:"id"`
	TenantID               string     `json:"tenant_id"`
	UserID                 string     `json:"user_id"`
	CreatedAt              time.Time  `json:"created_at"`
	Exercise               string     `json:"exercise,omitempty"`
	ExerciseElapsedSeconds float64    `json:"exercise_elapsed_seconds"`
	Measurements           int        `json:"measurements"`
	Frames                 FrameStats `json:"frames"`
}

// ActiveExercise returns the exercise frames are currently classified against.
func (s *Session) ActiveExercise() (exercise.Kind, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active, s.active != ""
}

func (s *Session) setActive(kind exercise.Kind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = kind
}

func (s *Session) recordFrame(took time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frameCount++
	s.durations = append(s.durations, took)
	if len(s.durations) > frameWindow {
		s.durations = s.durations[len(s.durations)-frameWindow:]
	}
}

func (s *Session) resetFrames() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frameCount = 0
	s.durations = nil
}

// FrameStats reports frame count and mean cost over the recent window.
func (s *Session) FrameStats() FrameStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := FrameStats{FrameCount: s.frameCount}
	if len(s.durations) == 0 {
		return stats
	}
	var total time.Duration
	for _, d := range s.durations {
		total += d
	}
	avg := total.Seconds() / float64(len(s.durations))
	stats.AvgProcessingSeconds = avg
	if avg > 0 {
		stats.AvgFPS = 1 / avg
	}
	return stats
}

// Summary snapshots the session.
func (s *Session) Summary() Summary {
	name, running := s.Tracker.CurrentExercise()
	return Summary{
		ID:                     s.ID,
		TenantID:               s.TenantID,
		UserID:                 s.UserID,
		CreatedAt:              s.CreatedAt,
		Exercise:               name,
		ExerciseElapsedSeconds: running.Seconds(),
		Measurements:           len(s.Tracker.Records()),
		Frames:                 s.FrameStats(),
	}
}
