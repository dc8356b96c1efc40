// Package amqpconn maintains the broker connection used by the AMQP report
// sink and the listen tooling, reconnecting automatically when it drops.
package amqpconn

import (
	"context"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/accellera-official/uvm-core/internal/backoff"
)

// StateListener receives connection state change notifications.
type StateListener interface {
	OnConnected()
	OnDisconnected(err error)
	OnReconnecting(attempt int)
}

// Manager maintains one broker connection with automatic reconnection.
type Manager struct {
	url         string
	conn        *amqp.Connection
	mu          sync.RWMutex
	policy      backoff.Policy
	maxRetries  int
	logger      *slog.Logger
	notifyClose chan *amqp.Error
	connected   bool
	closed      bool
	done        chan struct{}

	listenersMu sync.RWMutex
	listeners   []StateListener
}

// Option configures the Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithReconnectPolicy sets the policy that spaces reconnection attempts.
func WithReconnectPolicy(policy backoff.Policy) Option {
	return func(m *Manager) {
		m.policy = policy
	}
}

// WithMaxRetries limits reconnection attempts. Negative means retry forever.
func WithMaxRetries(retries int) Option {
	return func(m *Manager) {
		m.maxRetries = retries
	}
}

// NewManager creates a connection manager. Connect must be called before the
// connection is usable.
func NewManager(url string, opts ...Option) *Manager {
	m := &Manager{
		url: url,
		policy: &backoff.Exponential{
			InitialInterval: time.Second,
			MaxInterval:     5 * time.Minute,
			Multiplier:      2.0,
			Jitter:          true,
		},
		maxRetries: -1,
		logger:     slog.Default(),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	return m
}

// Connect establishes the initial connection and starts the reconnect
// watcher.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return nil
	}

	connCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	connChan := make(chan *amqp.Connection, 1)
	errChan := make(chan error, 1)
	go func() {
		conn, err := amqp.Dial(m.url)
		if err != nil {
			errChan <- err
			return
		}
		connChan <- conn
	}()

	select {
	case conn := <-connChan:
		m.conn = conn
		m.connected = true
		m.notifyClose = make(chan *amqp.Error)
		m.conn.NotifyClose(m.notifyClose)

		m.logger.Info("connected to broker", "url", SanitizeURL(m.url))
		m.notifyConnected()
		go m.watch()
		return nil

	case err := <-errChan:
		return &ConnError{
			Op:        "connect",
			URL:       SanitizeURL(m.url),
			Err:       err,
			Timestamp: time.Now(),
			Attempts:  1,
		}

	case <-connCtx.Done():
		return &ConnError{
			Op:        "connect",
			URL:       SanitizeURL(m.url),
			Err:       ErrDialTimeout,
			Timestamp: time.Now(),
			Attempts:  1,
		}
	}
}

// Connection returns the live connection.
func (m *Manager) Connection() (*amqp.Connection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.connected || m.conn == nil {
		return nil, ErrNotReady
	}
	if m.conn.IsClosed() {
		return nil, ErrClosed
	}
	return m.conn, nil
}

// Channel opens a fresh channel on the live connection.
func (m *Manager) Channel() (*amqp.Channel, error) {
	conn, err := m.Connection()
	if err != nil {
		return nil, err
	}
	return conn.Channel()
}

// IsConnected reports whether the connection is up.
func (m *Manager) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// Close shuts the manager down. It is safe to call more than once.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	close(m.done)
	m.connected = false

	if m.conn != nil {
		err := m.conn.Close()
		m.conn = nil
		return err
	}
	return nil
}

// AddStateListener registers a connection state listener.
func (m *Manager) AddStateListener(l StateListener) {
	m.listenersMu.Lock()
	defer m.listenersMu.Unlock()
	m.listeners = append(m.listeners, l)
}

// RemoveStateListener removes a previously registered listener.
func (m *Manager) RemoveStateListener(l StateListener) {
	m.listenersMu.Lock()
	defer m.listenersMu.Unlock()
	for i, have := range m.listeners {
		if have == l {
			m.listeners = append(m.listeners[:i], m.listeners[i+1:]...)
			break
		}
	}
}

func (m *Manager) watch() {
	for {
		select {
		case err := <-m.notifyClose:
			if err != nil {
				m.logger.Error("broker connection closed", "error", err)
			}

			m.mu.Lock()
			m.connected = false
			m.conn = nil
			m.mu.Unlock()

			m.notifyDisconnected(err)
			m.reconnect()

		case <-m.done:
			m.logger.Info("connection manager shutting down")
			return
		}
	}
}

func (m *Manager) reconnect() {
	retries := 0
	startTime := time.Now()

	for {
		select {
		case <-m.done:
			return
		default:
		}

		if m.maxRetries > 0 && retries >= m.maxRetries {
			m.logger.Error("max reconnection attempts reached",
				"attempts", retries,
				"duration", time.Since(startTime))
			m.notifyDisconnected(&ConnError{
				Op:        "reconnect",
				URL:       SanitizeURL(m.url),
				Err:       ErrMaxRetries,
				Timestamp: time.Now(),
				Attempts:  retries,
			})
			return
		}

		m.logger.Info("attempting to reconnect",
			"attempt", retries+1,
			"maxRetries", m.maxRetries)
		m.notifyReconnecting(retries + 1)

		if retries > 0 {
			select {
			case <-time.After(m.policy.NextDelay(retries)):
			case <-m.done:
				return
			}
		}

		connCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		connChan := make(chan *amqp.Connection, 1)
		errChan := make(chan error, 1)
		go func() {
			conn, err := amqp.Dial(m.url)
			if err != nil {
				errChan <- err
				return
			}
			connChan <- conn
		}()

		select {
		case conn := <-connChan:
			cancel()

			m.mu.Lock()
			m.conn = conn
			m.connected = true
			m.notifyClose = make(chan *amqp.Error)
			m.conn.NotifyClose(m.notifyClose)
			m.mu.Unlock()

			m.logger.Info("reconnected to broker",
				"attempts", retries+1,
				"duration", time.Since(startTime))
			m.notifyConnected()
			return

		case err := <-errChan:
			cancel()
			m.logger.Error("reconnection failed",
				"error", err,
				"attempt", retries+1)
			retries++

		case <-connCtx.Done():
			cancel()
			m.logger.Error("reconnection timeout", "attempt", retries+1)
			retries++

		case <-m.done:
			cancel()
			return
		}
	}
}

func (m *Manager) notifyConnected() {
	m.listenersMu.RLock()
	defer m.listenersMu.RUnlock()
	for _, l := range m.listeners {
		go l.OnConnected()
	}
}

func (m *Manager) notifyDisconnected(err error) {
	m.listenersMu.RLock()
	defer m.listenersMu.RUnlock()
	for _, l := range m.listeners {
		go l.OnDisconnected(err)
	}
}

func (m *Manager) notifyReconnecting(attempt int) {
	m.listenersMu.RLock()
	defer m.listenersMu.RUnlock()
	for _, l := range m.listeners {
		go l.OnReconnecting(attempt)
	}
}
