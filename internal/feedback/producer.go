package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/segmentio/kafka-go"

	"github.com/hmzi67/cervical-posture-detection/internal/events"
)

// Writer is the subset of kafka.Writer used for publishing cues.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher publishes cues as JSON to a single topic.
type KafkaPublisher struct {
	mu     sync.Mutex
	writer Writer
}

// NewKafkaPublisher creates a publisher writing to topic on brokers.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return NewPublisherWithWriter(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		RequiredAcks:           kafka.RequireOne,
		Compression:            kafka.Snappy,
		AllowAutoTopicCreation: true,
	})
}

// NewPublisherWithWriter wraps an existing writer.
func NewPublisherWithWriter(w Writer) *KafkaPublisher {
	return &KafkaPublisher{writer: w}
}

// Publish implements Publisher.
func (p *KafkaPublisher) Publish(ctx context.Context, cue events.FeedbackCue) error {
	payload, err := json.Marshal(cue)
	if err != nil {
		return fmt.Errorf("encode cue: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(cue.SessionID),
		Value: payload,
		Time:  cue.IssuedAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(events.TypeFeedbackCue)},
		},
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.writer.WriteMessages(ctx, msg)
}

// Close releases the underlying writer.
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.writer.Close()
}
