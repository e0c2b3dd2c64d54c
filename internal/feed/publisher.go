// Package feed mirrors domain events onto a Kafka topic so offline
// consumers (analytics, moderation) can replay them. Delivery here is
// best-effort and fully decoupled from the realtime fanout.
package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// Publisher writes domain events to a single topic keyed by event name.
type Publisher struct {
	writer *kafka.Writer
	logger *slog.Logger
}

func NewPublisher(brokers []string, topic string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			BatchTimeout: 50 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
			Async:        true,
		},
		logger: logger,
	}
}

// Publish emits one event. Marshal or broker errors are logged, never
// propagated: the feed must not fail a domain operation.
func (p *Publisher) Publish(ctx context.Context, event string, payload map[string]interface{}) {
	body := map[string]interface{}{
		"event":     event,
		"payload":   payload,
		"timestamp": time.Now().UnixMilli(),
	}
	value, err := json.Marshal(body)
	if err != nil {
		p.logger.Error("failed to marshal feed event", "event", event, "error", err)
		return
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event),
		Value: value,
	}); err != nil {
		p.logger.Warn("failed to publish feed event", "event", event, "error", err)
	}
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
