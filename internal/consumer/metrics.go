package consumer

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeHandled = "handled"
	outcomeFailed  = "failed"
	outcomeSkipped = "skipped"
)

var (
	processedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "posture_service",
		Subsystem: "consumer",
		Name:      "messages_processed_total",
		Help:      "Number of Kafka messages processed by the frame consumer.",
	}, []string{"topic", "event_type", "outcome"})

	lastMessageGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "posture_service",
		Subsystem: "consumer",
		Name:      "last_message_timestamp_seconds",
		Help:      "Timestamp of the most recent Kafka message processed.",
	}, []string{"topic"})
)

func init() {
	prometheus.MustRegister(processedCounter, lastMessageGauge)
}

// RecordProcessed counts a message by outcome.
func RecordProcessed(msg Message, outcome string) {
	processedCounter.WithLabelValues(msg.Topic, msg.Headers["event_type"], outcome).Inc()
	if !msg.Timestamp.IsZero() {
		lastMessageGauge.WithLabelValues(msg.Topic).Set(float64(msg.Timestamp.Unix()))
	}
}

// ProcessedCount exposes the counter for a label set.
func ProcessedCount(topic, eventType, outcome string) prometheus.Counter {
	return processedCounter.WithLabelValues(topic, eventType, outcome)
}
