package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/creatorly/storefront/internal/domain"
	"github.com/segmentio/kafka-go"
)

// OrderSubmitted is emitted after an order was accepted by the order API
// and the shopper was handed off to the payment page.
type OrderSubmitted struct {
	SessionID   string             `json:"session_id"`
	OrderNumber string             `json:"order_number,omitempty"`
	Items       []domain.OrderItem `json:"items"`
	TotalAmount float64            `json:"total_amount"`
	Currency    string             `json:"currency"`
	SubmittedAt time.Time          `json:"submitted_at"`
}

type Publisher interface {
	Publish(ctx context.Context, evt OrderSubmitted) error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

func NewKafkaPublisher(brokers ...string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  "storefront-orders",
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{writer: w, closer: w}
}

type KafkaPublisher struct {
	writer messageWriter
	closer interface{ Close() error }
}

func (p *KafkaPublisher) Publish(ctx context.Context, evt OrderSubmitted) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(evt.SessionID), // session for ordering
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("order.submitted")},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish order event: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer.Close()
}
