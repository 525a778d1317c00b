package events

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"io"
	"net"
	"time"

	"github.com/cucharaita/storefront/internal/opinions"
	"github.com/cucharaita/storefront/pkg/circuitbreaker"
	"github.com/cucharaita/storefront/pkg/logger"
	"github.com/segmentio/kafka-go"
)

// MessageReader is the subset of *kafka.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ReviewRequests opens a review request for a placed order.
type ReviewRequests interface {
	CreateRequest(ctx context.Context, code string, products []string) error
}

func NewReader(topic, groupID string, brokers ...string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MaxBytes: 10e6, // 10MB
	})
}

// Consumer turns order.placed events into review requests. A message is
// committed once it is handled, found to be unusable, or has failed for a
// reason that retrying cannot fix.
type Consumer struct {
	reader      MessageReader
	requests    ReviewRequests
	retryable   func(error) bool
	backoff     time.Duration
	maxBackoff  time.Duration
	maxAttempts int
}

// NewConsumer builds a consumer. retryable decides which handler errors are
// worth another attempt; nil means Transient.
func NewConsumer(reader MessageReader, requests ReviewRequests, retryable func(error) bool) *Consumer {
	if retryable == nil {
		retryable = Transient
	}
	return &Consumer{
		reader:      reader,
		requests:    requests,
		retryable:   retryable,
		backoff:     time.Second,
		maxBackoff:  30 * time.Second,
		maxAttempts: 10,
	}
}

// Transient reports failures caused by timeouts, dropped connections or an
// open breaker.
func Transient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, circuitbreaker.ErrUnavailable) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func (c *Consumer) Run(ctx context.Context) {
	for ctx.Err() == nil {
		c.processMessage(ctx)
	}
}

func (c *Consumer) Close() {
	if err := c.reader.Close(); err != nil {
		logger.L().Error().Err(err).Msg("error closing kafka reader")
	}
}

func (c *Consumer) processMessage(ctx context.Context) {
	log := logger.FromContext(ctx)

	m, err := c.reader.FetchMessage(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			return
		}
		log.Error().Err(err).Msg("error reading message")
		c.wait(ctx, c.backoff)
		return
	}

	delay := c.backoff
	for attempt := 1; ; attempt++ {
		err := c.handle(ctx, m)
		if err == nil {
			break
		}
		if !c.retryable(err) || attempt >= c.maxAttempts {
			log.Error().Err(err).Str("key", string(m.Key)).Int64("offset", m.Offset).
				Int("attempts", attempt).Msg("dropping order event")
			break
		}
		log.Warn().Err(err).Str("key", string(m.Key)).Int("attempt", attempt).
			Msg("failed to create review request, retrying")
		if !c.wait(ctx, delay) {
			return
		}
		delay = min(delay*2, c.maxBackoff)
	}

	if err := c.reader.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
		log.Error().Err(err).Int64("offset", m.Offset).Msg("failed to commit message")
	}
}

func (c *Consumer) handle(ctx context.Context, m kafka.Message) error {
	log := logger.FromContext(ctx)

	if t := header(m, eventTypeHeader); t != "" && t != OrderPlacedType {
		log.Debug().Str("event_type", t).Msg("skipping event")
		return nil
	}

	var event OrderPlaced
	if err := json.Unmarshal(m.Value, &event); err != nil {
		log.Error().Err(err).Int64("offset", m.Offset).Msg("error parsing message")
		return nil
	}
	if event.Order.Code == "" {
		log.Error().Int64("offset", m.Offset).Msg("order event without code")
		return nil
	}

	products := event.Products
	if len(products) == 0 {
		products = event.Order.ProductNames()
	}

	err := c.requests.CreateRequest(ctx, event.Order.Code, products)
	if errors.Is(err, opinions.ErrDuplicateRequest) {
		log.Info().Str("code", event.Order.Code).Msg("review request already exists, skipping")
		return nil
	}
	return err
}

func (c *Consumer) wait(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func header(m kafka.Message, key string) string {
	for _, h := range m.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
