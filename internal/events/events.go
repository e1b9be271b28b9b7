// Package events defines the payloads exchanged with the pose detector and
// the narration service over Kafka.
package events

import (
	"time"

	"github.com/hmzi67/cervical-posture-detection/internal/pose"
)

// Event type header values.
const (
	TypePoseFrame   = "posture.pose_frame"
	TypeFeedbackCue = "posture.feedback_cue"
)

// PoseFrame is published by the pose detector once per processed camera frame.
// Landmarks is null when no person was detected.
type PoseFrame struct {
	SessionID  string                   `json:"session_id"`
	FrameID    int64                    `json:"frame_id"`
	CapturedAt time.Time                `json:"captured_at"`
	Landmarks  map[string]pose.Keypoint `json:"landmarks"`
}

// FeedbackCue asks the narration service to speak a short guidance phrase.
type FeedbackCue struct {
	SessionID   string    `json:"session_id"`
	Exercise    string    `json:"exercise"`
	Status      string    `json:"status"`
	Message     string    `json:"message"`
	Measurement float64   `json:"measurement"`
	IssuedAt    time.Time `json:"issued_at"`
}
