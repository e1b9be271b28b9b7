// Package consumer streams pose frames from Kafka into live sessions.
package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// Reader describes the kafka.Reader functions the processor interacts with.
type Reader interface {
	FetchMessage(context.Context) (kafka.Message, error)
	CommitMessages(context.Context, ...kafka.Message) error
	Close() error
}

// Handler processes decoded Kafka messages.
type Handler interface {
	Handle(context.Context, Message) error
}

// Message represents a decoded Kafka record.
type Message struct {
	Topic     string
	Partition int
	Offset    int64
	Key       []byte
	Payload   json.RawMessage
	Timestamp time.Time
	Headers   map[string]string
}

// Option configures processor behaviour.
type Option func(*Processor)

// WithLogger sets a custom logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(p *Processor) { p.logger = l }
}

// WithFetchBackoff sets the pause after a failed fetch.
func WithFetchBackoff(d time.Duration) Option {
	return func(p *Processor) { p.backoff = d }
}

// Processor coordinates the consumer loop.
type Processor struct {
	reader  Reader
	handler Handler
	logger  logrus.FieldLogger
	backoff time.Duration
}

// NewProcessor constructs a processor from a reader/handler pair.
func NewProcessor(reader Reader, handler Handler, opts ...Option) *Processor {
	p := &Processor{reader: reader, handler: handler, logger: logrus.StandardLogger(), backoff: 500 * time.Millisecond}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run consumes messages until ctx is cancelled. Handler failures are logged
// and the offset is still committed.
func (p *Processor) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		msg, err := p.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			p.logger.WithError(err).Warn("fetch failed")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.backoff):
			}
			continue
		}

		decoded := decode(msg)
		entry := p.logger.WithFields(logrus.Fields{"topic": msg.Topic, "partition": msg.Partition, "offset": msg.Offset})
		switch err := p.handler.Handle(ctx, decoded); {
		case errors.Is(err, ErrSkipped):
			RecordProcessed(decoded, outcomeSkipped)
			entry.WithError(err).Debug("message skipped")
		case err != nil:
			RecordProcessed(decoded, outcomeFailed)
			entry.WithError(err).Error("handler failed")
		default:
			RecordProcessed(decoded, outcomeHandled)
			entry.Debug("message processed")
		}

		if err := p.reader.CommitMessages(ctx, msg); err != nil {
			entry.WithError(err).Warn("commit failed")
		}
	}
}

func decode(msg kafka.Message) Message {
	decoded := Message{
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Key:       msg.Key,
		Payload:   append(json.RawMessage{}, msg.Value...),
		Timestamp: msg.Time,
		Headers:   make(map[string]string, len(msg.Headers)),
	}
	for _, header := range msg.Headers {
		decoded.Headers[header.Key] = string(header.Value)
	}
	return decoded
}
