package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/hmzi67/cervical-posture-detection/internal/domain"
	"github.com/hmzi67/cervical-posture-detection/internal/events"
	"github.com/hmzi67/cervical-posture-detection/internal/pose"
)

// ErrSkipped marks a message that was deliberately not processed.
var ErrSkipped = errors.New("message skipped")

// FrameHandler feeds pose frames into their sessions.
type FrameHandler struct {
	service       *domain.Service
	minVisibility float64
	logger        logrus.FieldLogger
}

// NewFrameHandler constructs a handler backed by the service.
func NewFrameHandler(service *domain.Service, minVisibility float64, logger logrus.FieldLogger) *FrameHandler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &FrameHandler{service: service, minVisibility: minVisibility, logger: logger}
}

// Handle classifies posture.pose_frame events. Frames for unknown sessions or
// sessions without an active exercise are skipped, not retried.
func (h *FrameHandler) Handle(ctx context.Context, msg Message) error {
	if eventType, ok := msg.Headers["event_type"]; ok && eventType != events.TypePoseFrame {
		return nil
	}

	var frame events.PoseFrame
	if err := json.Unmarshal(msg.Payload, &frame); err != nil {
		return fmt.Errorf("decode pose frame: %w", err)
	}
	if frame.SessionID == "" {
		frame.SessionID = string(msg.Key)
	}
	if frame.SessionID == "" {
		return errors.New("pose frame without session_id")
	}

	res, err := h.service.ProcessFrame(ctx, frame.SessionID, pose.FromKeypoints(frame.Landmarks, h.minVisibility))
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrNoActiveExercise):
		return fmt.Errorf("%w: %v", ErrSkipped, err)
	case err != nil:
		return err
	}

	h.logger.WithFields(logrus.Fields{
		"session_id":  frame.SessionID,
		"frame_id":    frame.FrameID,
		"exercise":    res.Kind,
		"status":      res.Status,
		"measurement": res.Measurement,
	}).Debug("frame classified")
	return nil
}
