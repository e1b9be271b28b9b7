// Package domain orchestrates per-frame classification and session tracking.
package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hmzi67/cervical-posture-detection/internal/exercise"
	"github.com/hmzi67/cervical-posture-detection/internal/observability"
	"github.com/hmzi67/cervical-posture-detection/internal/pose"
	"github.com/hmzi67/cervical-posture-detection/internal/session"
)

var (
	// ErrSessionNotFound indicates the session does not exist.
	ErrSessionNotFound = errors.New("session not found")
	// ErrNoActiveExercise is returned when a frame arrives before an exercise was started.
	ErrNoActiveExercise = errors.New("no active exercise for session")
	// ErrUnknownExercise is returned for exercise names outside the supported set.
	ErrUnknownExercise = errors.New("unknown exercise")
)

// SessionRepository stores live sessions.
type SessionRepository interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// CueSink receives classification results for spoken feedback. Observe must not block.
type CueSink interface {
	Observe(sessionID string, res exercise.Result) bool
	Forget(sessionID string)
}

type noopCues struct{}

func (noopCues) Observe(string, exercise.Result) bool { return false }
func (noopCues) Forget(string)                        {}

// Option configures the Service.
type Option func(*Service)

// WithTrackerOptions applies options to every tracker the service creates.
func WithTrackerOptions(opts ...session.Option) Option {
	return func(s *Service) { s.trackerOpts = append(s.trackerOpts, opts...) }
}

// WithClock overrides the time source used for session timestamps and frame timing.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) { s.clock = clock }
}

// Service contains the frame orchestration logic.
type Service struct {
	repo        SessionRepository
	cues        CueSink
	trackerOpts []session.Option
	clock       func() time.Time
}

// NewService constructs a new Service.
func NewService(repo SessionRepository, cues CueSink, opts ...Option) *Service {
	if cues == nil {
		cues = noopCues{}
	}
	s := &Service{repo: repo, cues: cues, clock: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Classify grades a landmark set for one exercise without touching any session.
func (s *Service) Classify(kind exercise.Kind, set *pose.LandmarkSet) exercise.Result {
	res := exercise.Classify(kind, set)
	observability.RecordClassification(string(kind), string(res.Status))
	return res
}

// StartSessionInput captures who the session belongs to.
type StartSessionInput struct {
	TenantID string
	UserID   string
	Exercise exercise.Kind
}

// StartSession creates a session and starts its log. When an exercise is
// given it becomes the active exercise immediately.
func (s *Service) StartSession(ctx context.Context, input StartSessionInput) (*Session, error) {
	if strings.TrimSpace(input.TenantID) == "" {
		return nil, errors.New("tenant_id is required")
	}
	if input.Exercise != "" && !input.Exercise.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownExercise, input.Exercise)
	}

	opts := append([]session.Option{session.WithClock(s.clock)}, s.trackerOpts...)
	sess := &Session{
		ID:        uuid.NewString(),
		TenantID:  input.TenantID,
		UserID:    input.UserID,
		CreatedAt: s.clock().UTC(),
		Tracker:   session.NewTracker(opts...),
	}
	sess.Tracker.Start()
	if input.Exercise != "" {
		sess.setActive(input.Exercise)
		sess.Tracker.StartExercise(input.Exercise.Name())
	}

	if err := s.repo.Create(ctx, sess); err != nil {
		return nil, err
	}
	s.refreshActiveGauge(ctx)
	return sess, nil
}

// GetSession retrieves a session by ID.
func (s *Service) GetSession(ctx context.Context, id string) (*Session, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.New("session_id is required")
	}
	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// RestartSession clears the session log and frame stats. The active exercise is kept.
func (s *Service) RestartSession(ctx context.Context, id string) (*Session, error) {
	sess, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.Tracker.Start()
	sess.resetFrames()
	return sess, nil
}

// StartExercise switches the exercise frames are classified against.
func (s *Service) StartExercise(ctx context.Context, id string, kind exercise.Kind) (*Session, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownExercise, kind)
	}
	sess, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.setActive(kind)
	sess.Tracker.StartExercise(kind.Name())
	return sess, nil
}

// ProcessFrame classifies one frame against the session's active exercise,
// logs the measurement and queues spoken feedback. Frames without a pose are
// returned but not logged.
func (s *Service) ProcessFrame(ctx context.Context, id string, set *pose.LandmarkSet) (exercise.Result, error) {
	sess, err := s.GetSession(ctx, id)
	if err != nil {
		return exercise.Result{}, err
	}
	kind, ok := sess.ActiveExercise()
	if !ok {
		return exercise.Result{}, ErrNoActiveExercise
	}

	began := s.clock()
	res := s.Classify(kind, set)
	if res.Status != exercise.StatusNoPose {
		sess.Tracker.Log(res.Name, res.Measurement, res.Status)
	}
	s.cues.Observe(sess.ID, res)

	now := s.clock()
	took := now.Sub(began)
	sess.recordFrame(took)
	observability.RecordFrame(now, took)
	return res, nil
}

// LogMeasurement appends an externally produced measurement to the session log.
func (s *Service) LogMeasurement(ctx context.Context, id, name string, measurement float64, status exercise.Status) (session.Record, error) {
	sess, err := s.GetSession(ctx, id)
	if err != nil {
		return session.Record{}, err
	}
	return sess.Tracker.Log(name, measurement, status), nil
}

// SessionStats returns the aggregate snapshot of a session log.
func (s *Service) SessionStats(ctx context.Context, id string) (session.Stats, error) {
	sess, err := s.GetSession(ctx, id)
	if err != nil {
		return session.Stats{}, err
	}
	return sess.Tracker.Stats(), nil
}

// SessionProgress returns the progress summaries; ok is false for an empty log.
func (s *Service) SessionProgress(ctx context.Context, id string) (session.Progress, bool, error) {
	sess, err := s.GetSession(ctx, id)
	if err != nil {
		return session.Progress{}, false, err
	}
	p, ok := sess.Tracker.Progress()
	return p, ok, nil
}

// EndSession drops the session and its feedback throttle state.
func (s *Service) EndSession(ctx context.Context, id string) error {
	if _, err := s.GetSession(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cues.Forget(id)
	s.refreshActiveGauge(ctx)
	return nil
}

func (s *Service) refreshActiveGauge(ctx context.Context) {
	if n, err := s.repo.Count(ctx); err == nil {
		observability.SetActiveSessions(n)
	}
}
