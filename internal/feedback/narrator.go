// Package feedback turns classification results into short spoken-guidance
// cues and hands them to the narration service without blocking the frame loop.
package feedback

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/hmzi67/cervical-posture-detection/internal/events"
	"github.com/hmzi67/cervical-posture-detection/internal/exercise"
	"github.com/hmzi67/cervical-posture-detection/internal/observability"
)

// DefaultInterval is the minimum gap between cues for one session.
const DefaultInterval = 3 * time.Second

const publishTimeout = 5 * time.Second

var phrases = map[exercise.Status][]string{
	exercise.StatusGood: {
		"Great job! Perfect position.",
		"Excellent form! Hold it.",
		"Perfect! You're in the target range.",
	},
	exercise.StatusTooLittle: {
		"Move a little more.",
		"Increase the range slightly.",
		"You can go a bit further.",
	},
	exercise.StatusTooMuch: {
		"Ease back a little.",
		"Reduce the range slightly.",
		"Not so far, come back a bit.",
	},
	exercise.StatusForwardHead: {
		"Pull your chin back.",
		"Retract your head.",
		"Bring your head back over your shoulders.",
	},
}

var fallbackPhrase = []string{"Adjust your position."}

// Publisher delivers cues to the narration collaborator.
type Publisher interface {
	Publish(ctx context.Context, cue events.FeedbackCue) error
}

// NoopPublisher discards cues.
type NoopPublisher struct{}

// Publish performs no action.
func (NoopPublisher) Publish(context.Context, events.FeedbackCue) error { return nil }

// Option configures a Narrator.
type Option func(*Narrator)

// WithInterval sets the minimum gap between cues per session.
func WithInterval(d time.Duration) Option {
	return func(n *Narrator) { n.interval = d }
}

// WithBuffer sets the queue capacity; cues beyond it are dropped.
func WithBuffer(size int) Option {
	return func(n *Narrator) { n.buffer = size }
}

// WithLogger sets a custom logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(n *Narrator) { n.logger = l }
}

// WithClock overrides the time source used for throttling.
func WithClock(clock func() time.Time) Option {
	return func(n *Narrator) { n.clock = clock }
}

// Narrator throttles cues per session and publishes them from a background loop.
type Narrator struct {
	publisher Publisher
	interval  time.Duration
	buffer    int
	logger    logrus.FieldLogger
	clock     func() time.Time
	queue     chan events.FeedbackCue

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rotation map[exercise.Status]int
}

// NewNarrator constructs a Narrator. Call Run to start delivery.
func NewNarrator(publisher Publisher, opts ...Option) *Narrator {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	n := &Narrator{
		publisher: publisher,
		interval:  DefaultInterval,
		buffer:    64,
		logger:    logrus.StandardLogger(),
		clock:     time.Now,
		limiters:  make(map[string]*rate.Limiter),
		rotation:  make(map[exercise.Status]int),
	}
	for _, opt := range opts {
		opt(n)
	}
	n.queue = make(chan events.FeedbackCue, n.buffer)
	return n
}

// Observe queues a cue for the result unless the session spoke recently or
// the queue is full. It never blocks. Frames without a pose produce no cue.
func (n *Narrator) Observe(sessionID string, res exercise.Result) bool {
	if res.Status == exercise.StatusNoPose {
		return false
	}
	now := n.clock()

	n.mu.Lock()
	limiter, ok := n.limiters[sessionID]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(n.interval), 1)
		n.limiters[sessionID] = limiter
	}
	if !limiter.AllowN(now, 1) {
		n.mu.Unlock()
		observability.RecordCue(observability.CueThrottled)
		return false
	}
	message := n.nextPhrase(res.Status)
	n.mu.Unlock()

	cue := events.FeedbackCue{
		SessionID:   sessionID,
		Exercise:    res.Name,
		Status:      string(res.Status),
		Message:     message,
		Measurement: res.Measurement,
		IssuedAt:    now.UTC(),
	}
	select {
	case n.queue <- cue:
		return true
	default:
		observability.RecordCue(observability.CueDropped)
		n.logger.WithField("session_id", sessionID).Warn("feedback queue full, dropping cue")
		return false
	}
}

func (n *Narrator) nextPhrase(status exercise.Status) string {
	options, ok := phrases[status]
	if !ok {
		options = fallbackPhrase
	}
	idx := n.rotation[status] % len(options)
	n.rotation[status] = idx + 1
	return options[idx]
}

// Forget releases the throttle state of a session.
func (n *Narrator) Forget(sessionID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.limiters, sessionID)
}

// Run publishes queued cues until ctx is cancelled.
func (n *Narrator) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cue := <-n.queue:
			pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
			err := n.publisher.Publish(pubCtx, cue)
			cancel()
			if err != nil {
				observability.RecordCue(observability.CueFailed)
				n.logger.WithFields(logrus.Fields{
					"session_id": cue.SessionID,
					"status":     cue.Status,
				}).WithError(err).Error("publish feedback cue")
				continue
			}
			observability.RecordCue(observability.CuePublished)
		}
	}
}
