// Package amqp ships report envelopes to a message broker so other
// processes can observe a run. Writes are buffered and published
// asynchronously; when the buffer is full the oldest envelope is shed
// rather than blocking the reporting path.
package amqp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/accellera-official/uvm-core/contracts"
	"github.com/accellera-official/uvm-core/internal/amqpconn"
	"github.com/accellera-official/uvm-core/internal/backoff"
	"github.com/accellera-official/uvm-core/sinks"
)

const publishTimeout = 10 * time.Second

// RoutingKey returns the topic key an envelope of the given severity is
// published under, e.g. "report.error".
func RoutingKey(severity string) string {
	return "report." + strings.ToLower(severity)
}

// Option configures the sink.
type Option func(*Sink)

// WithSinkLogger sets the logger for publish failures and shedding.
func WithSinkLogger(logger *slog.Logger) Option {
	return func(s *Sink) {
		s.logger = logger
	}
}

// WithCodec selects the wire encoding. JSON is the default.
func WithCodec(c Codec) Option {
	return func(s *Sink) {
		s.codec = c
	}
}

// WithBufferSize sets the number of envelopes held while the broker is slow.
func WithBufferSize(n int) Option {
	return func(s *Sink) {
		s.buffer = n
	}
}

// WithRetryPolicy sets the publish retry policy.
func WithRetryPolicy(p backoff.Policy) Option {
	return func(s *Sink) {
		s.policy = p
	}
}

// WithBreaker replaces the publish circuit breaker.
func WithBreaker(b *backoff.Breaker) Option {
	return func(s *Sink) {
		s.breaker = b
	}
}

// Sink publishes report envelopes to a broker exchange.
type Sink struct {
	pub     Publisher
	codec   Codec
	policy  backoff.Policy
	breaker *backoff.Breaker
	logger  *slog.Logger
	buffer  int

	mu      sync.RWMutex
	closed  bool
	queue   chan *contracts.Envelope
	wg      sync.WaitGroup
	dropped atomic.Uint64
}

// New creates a sink publishing through the given connection. An empty
// exchange selects DefaultExchange.
func New(manager *amqpconn.Manager, exchange string, opts ...Option) (*Sink, error) {
	pub, err := NewPublisher(manager, exchange)
	if err != nil {
		return nil, err
	}
	return NewWithPublisher(pub, opts...)
}

// NewWithPublisher creates a sink over an existing publisher.
func NewWithPublisher(pub Publisher, opts ...Option) (*Sink, error) {
	if pub == nil {
		return nil, fmt.Errorf("publisher cannot be nil")
	}

	s := &Sink{
		pub:    pub,
		codec:  JSONCodec{},
		policy: backoff.Default(),
		logger: slog.Default(),
		buffer: 256,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.buffer < 1 {
		s.buffer = 1
	}
	if s.breaker == nil {
		s.breaker = backoff.NewBreaker(backoff.WithStateChange(func(from, to backoff.BreakerState, reason string) {
			s.logger.Warn("broker circuit state changed",
				"from", from.String(),
				"to", to.String(),
				"reason", reason)
		}))
	}

	s.queue = make(chan *contracts.Envelope, s.buffer)
	s.wg.Add(1)
	go s.loop()
	return s, nil
}

// Write implements sinks.Sink. The envelope is queued for asynchronous
// publishing; a full queue sheds its oldest entry.
func (s *Sink) Write(_ context.Context, r *contracts.Report, composed string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return fmt.Errorf("amqp sink is closed")
	}

	env := contracts.NewEnvelope(r, composed)
	select {
	case s.queue <- env:
		return nil
	default:
	}

	// Full: make room by shedding the oldest queued envelope.
	select {
	case <-s.queue:
		s.dropped.Add(1)
	default:
	}
	select {
	case s.queue <- env:
	default:
		s.dropped.Add(1)
	}
	return nil
}

// Close drains the queue, waits for in-flight publishes and closes the
// publisher. It is safe to call more than once.
func (s *Sink) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.queue)
	s.mu.Unlock()

	s.wg.Wait()
	return s.pub.Close()
}

// Dropped returns how many envelopes were shed or abandoned after retries.
func (s *Sink) Dropped() uint64 {
	return s.dropped.Load()
}

func (s *Sink) loop() {
	defer s.wg.Done()
	for env := range s.queue {
		s.publishOne(env)
	}
}

func (s *Sink) publishOne(env *contracts.Envelope) {
	body, err := s.codec.Marshal(env)
	if err != nil {
		s.logger.Error("failed to encode report envelope",
			"reportId", env.ID,
			"error", err)
		s.dropped.Add(1)
		return
	}

	key := RoutingKey(env.Severity)
	err = s.breaker.Execute(func() error {
		return backoff.Retry(context.Background(), s.policy, func() error {
			ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
			defer cancel()
			return s.pub.Publish(ctx, key, s.codec.ContentType(), body)
		})
	})
	if err != nil {
		s.dropped.Add(1)
		var open *backoff.BreakerOpenError
		if errors.As(err, &open) {
			s.logger.Warn("broker circuit open, dropping report envelope",
				"reportId", env.ID,
				"routingKey", key,
				"nextProbe", open.NextProbe)
			return
		}
		s.logger.Error("failed to publish report envelope",
			"reportId", env.ID,
			"routingKey", key,
			"error", err)
	}
}

var _ sinks.Sink = (*Sink)(nil)
