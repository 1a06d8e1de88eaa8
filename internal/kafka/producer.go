package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ivpenchev/portfolio-tracker/internal/models"
	"github.com/segmentio/kafka-go"
)

// Producer handles publishing events to Kafka
type Producer struct {
	writer *kafka.Writer
	topic  string
}

// NewProducer creates a new Kafka producer
func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}

	return &Producer{
		writer: writer,
		topic:  topic,
	}
}

// PublishHoldingAdded publishes a holding added event
func (p *Producer) PublishHoldingAdded(ctx context.Context, holding *models.Holding) error {
	event := models.HoldingEvent{
		EventType: "HOLDING_ADDED",
		Holding:   holding,
		UserID:    holding.UserID,
		Timestamp: time.Now(),
	}
	return p.publish(ctx, holding.UserID, event)
}

// PublishHoldingUpdated publishes a holding updated event
func (p *Producer) PublishHoldingUpdated(ctx context.Context, holding *models.Holding) error {
	event := models.HoldingEvent{
		EventType: "HOLDING_UPDATED",
		Holding:   holding,
		UserID:    holding.UserID,
		Timestamp: time.Now(),
	}
	return p.publish(ctx, holding.UserID, event)
}

// PublishHoldingRemoved publishes a holding removed event
func (p *Producer) PublishHoldingRemoved(ctx context.Context, userID string, holding *models.Holding) error {
	event := models.HoldingEvent{
		EventType: "HOLDING_REMOVED",
		Holding:   holding,
		UserID:    userID,
		Timestamp: time.Now(),
	}
	return p.publish(ctx, userID, event)
}

func (p *Producer) publish(ctx context.Context, key string, event models.HoldingEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	return nil
}

// Close closes the Kafka producer
func (p *Producer) Close() error {
	return p.writer.Close()
}
