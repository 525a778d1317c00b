package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cucharaita/storefront/internal/domain"
	"github.com/cucharaita/storefront/pkg/circuitbreaker"
	"github.com/segmentio/kafka-go"
)

const (
	OrderPlacedType = "order.placed"
	eventTypeHeader = "event_type"
)

// OrderPlaced is the payload written to the orders topic.
type OrderPlaced struct {
	Order    domain.Order `json:"order"`
	Products []string     `json:"products"`
}

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

func NewWriter(topic string, brokers ...string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		WriteTimeout:           5 * time.Second,
		RequiredAcks:           kafka.RequireOne,
	}
}

type Publisher struct {
	writer  MessageWriter
	breaker *circuitbreaker.Breaker
}

func NewPublisher(w MessageWriter, breaker *circuitbreaker.Breaker) *Publisher {
	if breaker == nil {
		breaker = circuitbreaker.New(circuitbreaker.DefaultConfig("order-events"))
	}
	return &Publisher{writer: w, breaker: breaker}
}

// PublishOrderPlaced writes the order keyed by its code so every event for
// one order lands on the same partition.
func (p *Publisher) PublishOrderPlaced(ctx context.Context, order domain.Order) error {
	payload, err := json.Marshal(OrderPlaced{Order: order, Products: order.ProductNames()})
	if err != nil {
		return fmt.Errorf("marshal order placed: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(order.Code),
		Value: payload,
		Headers: []kafka.Header{
			{Key: eventTypeHeader, Value: []byte(OrderPlacedType)},
		},
	}

	_, err = circuitbreaker.Do(p.breaker, func() (struct{}, error) {
		return struct{}{}, p.writer.WriteMessages(ctx, msg)
	})
	if err != nil {
		return fmt.Errorf("publish order %s: %w", order.Code, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
