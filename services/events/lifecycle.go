package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"counselbook/models"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// LifecyclePublisher emits session lifecycle events for downstream consumers.
type LifecyclePublisher interface {
	PublishSessionEvent(ctx context.Context, evt models.SessionEvent) error
	Close() error
}

// MessageWriter is the subset of *kafka.Writer used here.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaLifecyclePublisher struct {
	writer MessageWriter
	logger *zap.Logger
}

// NewKafkaLifecyclePublisher returns a no-op publisher when brokers is empty.
func NewKafkaLifecyclePublisher(brokers []string, topic string, logger *zap.Logger) LifecyclePublisher {
	if len(brokers) == 0 || topic == "" {
		return NoopLifecyclePublisher{}
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{}, // per-session ordering
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		BatchTimeout: 50 * time.Millisecond,
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Warn(fmt.Sprintf(msg, args...))
		}),
	}
	return NewLifecyclePublisherWithWriter(writer, logger)
}

func NewLifecyclePublisherWithWriter(w MessageWriter, logger *zap.Logger) *KafkaLifecyclePublisher {
	return &KafkaLifecyclePublisher{writer: w, logger: logger}
}

func (p *KafkaLifecyclePublisher) PublishSessionEvent(ctx context.Context, evt models.SessionEvent) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal session event: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(evt.SessionID),
		Value: body,
		Headers: []kafka.Header{
			{Key: "status", Value: []byte(evt.Status)},
		},
		Time: evt.At,
	})
	if err != nil {
		return fmt.Errorf("failed to publish session event: %w", err)
	}
	return nil
}

func (p *KafkaLifecyclePublisher) Close() error {
	return p.writer.Close()
}

// NoopLifecyclePublisher drops events.
type NoopLifecyclePublisher struct{}

func (NoopLifecyclePublisher) PublishSessionEvent(context.Context, models.SessionEvent) error {
	return nil
}

func (NoopLifecyclePublisher) Close() error { return nil }
