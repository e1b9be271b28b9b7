package api

import "github.com/hmzi67/cervical-posture-detection/internal/pose"

// ClassifyRequest grades a single landmark set without a session.
type ClassifyRequest struct {
	Exercise  string                   `json:"exercise" validate:"required"`
	Landmarks map[string]pose.Keypoint `json:"landmarks"`
}

// StartSessionRequest opens a session for the calling subject.
type StartSessionRequest struct {
	Exercise string `json:"exercise" validate:"omitempty,max=64"`
}

// StartExerciseRequest switches the active exercise.
type StartExerciseRequest struct {
	Exercise string `json:"exercise" validate:"required,max=64"`
}

// FrameRequest carries one detector frame. Empty landmarks mean no pose.
type FrameRequest struct {
	FrameID   string                   `json:"frame_id" validate:"omitempty,max=128"`
	Landmarks map[string]pose.Keypoint `json:"landmarks"`
}

// MeasurementRequest logs a measurement produced outside the classifier.
type MeasurementRequest struct {
	Exercise    string   `json:"exercise" validate:"required,max=64"`
	Measurement *float64 `json:"measurement" validate:"required"`
	Status      string   `json:"status" validate:"required"`
}
