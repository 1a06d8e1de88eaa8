package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ivpenchev/portfolio-tracker/internal/models"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

// PricePointRepository defines the interface for price point database operations
type PricePointRepository interface {
	UpsertPricePoint(ctx context.Context, p *models.PricePoint) error
}

// Consumer ingests price tick events published by the market-data fetchers
// and persists them as canonical price points. Ingestion is idempotent per
// (symbol, calendar day): the repository upsert replaces same-day ticks.
type Consumer struct {
	reader *kafka.Reader
	repo   PricePointRepository
}

// NewConsumer creates a new Kafka consumer for price tick events
func NewConsumer(brokers []string, topic, groupID string, repo PricePointRepository) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		StartOffset:    kafka.FirstOffset,
		CommitInterval: time.Second,
	})

	return &Consumer{
		reader: reader,
		repo:   repo,
	}
}

// Start begins consuming messages from Kafka
func (c *Consumer) Start(ctx context.Context) error {
	log.Printf("Starting Kafka consumer for topic: %s", c.reader.Config().Topic)

	for {
		select {
		case <-ctx.Done():
			log.Println("Kafka consumer shutting down...")
			return c.reader.Close()
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil // Context cancelled, normal shutdown
				}
				log.Printf("Error reading message: %v", err)
				continue
			}

			if err := c.processMessage(ctx, msg); err != nil {
				log.Printf("Error processing message: %v", err)
				// Continue processing other messages
			}
		}
	}
}

// processMessage handles a single Kafka message
func (c *Consumer) processMessage(ctx context.Context, msg kafka.Message) error {
	var event models.PriceTickEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal price tick event: %w", err)
	}

	// Only process PRICE_TICK events
	if event.EventType != "PRICE_TICK" {
		log.Printf("Ignoring event type: %s", event.EventType)
		return nil
	}

	point, err := c.convertEventToPricePoint(event)
	if err != nil {
		return fmt.Errorf("failed to convert price tick event: %w", err)
	}

	if err := c.repo.UpsertPricePoint(ctx, point); err != nil {
		return fmt.Errorf("failed to save price point: %w", err)
	}

	log.Printf("Saved price point: %s (%s) = %s @ %s",
		point.Symbol, point.AssetClass, point.Price, point.ObservedAt.Format(time.RFC3339))

	return nil
}

// convertEventToPricePoint maps a PriceTickEvent to a PricePoint model
func (c *Consumer) convertEventToPricePoint(event models.PriceTickEvent) (*models.PricePoint, error) {
	symbol := strings.ToUpper(strings.TrimSpace(event.Symbol))
	if symbol == "" {
		return nil, fmt.Errorf("price tick has no symbol")
	}

	price, err := decimal.NewFromString(event.Price)
	if err != nil {
		return nil, fmt.Errorf("invalid price %s: %w", event.Price, err)
	}
	if !price.IsPositive() {
		return nil, fmt.Errorf("price must be positive, got %s", price)
	}

	class := strings.ToLower(event.AssetClass)
	switch class {
	case models.ClassCrypto, models.ClassStock, models.ClassMetal, models.ClassForex:
	default:
		return nil, fmt.Errorf("invalid asset class: %s", event.AssetClass)
	}

	// Parse observed_at timestamp
	var observedAt time.Time
	if event.ObservedAt != "" {
		observedAt, err = time.Parse(time.RFC3339, event.ObservedAt)
		if err != nil {
			// Try parsing without timezone
			observedAt, err = time.Parse("2006-01-02T15:04:05", event.ObservedAt)
			if err != nil {
				observedAt = time.Now()
			}
		}
	} else {
		observedAt = time.Now()
	}

	return &models.PricePoint{
		Symbol:     symbol,
		AssetClass: class,
		Price:      price,
		ObservedAt: observedAt,
	}, nil
}

// Close closes the Kafka consumer
func (c *Consumer) Close() error {
	return c.reader.Close()
}
