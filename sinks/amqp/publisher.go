package amqp

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/accellera-official/uvm-core/internal/amqpconn"
)

// DefaultExchange is the topic exchange report envelopes are published to.
const DefaultExchange = "uvm.reports"

// Publisher sends one serialized envelope to the broker per call.
type Publisher interface {
	Publish(ctx context.Context, routingKey, contentType string, body []byte) error
	Close() error
}

// BrokerPublisher publishes through a managed connection, reopening its
// channel after broker hiccups.
type BrokerPublisher struct {
	manager  *amqpconn.Manager
	exchange string

	mu      sync.Mutex
	channel *amqp091.Channel
	closed  bool
}

// NewPublisher creates a publisher on the given connection. An empty
// exchange selects DefaultExchange.
func NewPublisher(manager *amqpconn.Manager, exchange string) (*BrokerPublisher, error) {
	if manager == nil {
		return nil, fmt.Errorf("connection manager cannot be nil")
	}
	if exchange == "" {
		exchange = DefaultExchange
	}
	return &BrokerPublisher{manager: manager, exchange: exchange}, nil
}

// Publish implements Publisher.
func (p *BrokerPublisher) Publish(ctx context.Context, routingKey, contentType string, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return fmt.Errorf("publisher is closed")
	}
	if err := p.ensureChannel(); err != nil {
		return err
	}

	err := p.channel.PublishWithContext(ctx,
		p.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  contentType,
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		})
	if err != nil {
		// Force a fresh channel on the next attempt.
		p.channel = nil
		return fmt.Errorf("failed to publish envelope: %w", err)
	}
	return nil
}

// Close implements Publisher.
func (p *BrokerPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	if p.channel != nil {
		err := p.channel.Close()
		p.channel = nil
		return err
	}
	return nil
}

func (p *BrokerPublisher) ensureChannel() error {
	if p.channel != nil && !p.channel.IsClosed() {
		return nil
	}

	ch, err := p.manager.Channel()
	if err != nil {
		return err
	}
	if err := ch.ExchangeDeclare(
		p.exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		ch.Close()
		return fmt.Errorf("failed to declare exchange %s: %w", p.exchange, err)
	}
	p.channel = ch
	return nil
}

var _ Publisher = (*BrokerPublisher)(nil)
