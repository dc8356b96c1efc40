package amqpconn

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotReady    = errors.New("amqp: connection not ready")
	ErrClosed      = errors.New("amqp: connection is closed")
	ErrMaxRetries  = errors.New("amqp: maximum reconnection attempts exceeded")
	ErrDialTimeout = errors.New("amqp: connection timeout")
)

// ConnError describes a failed connection operation.
type ConnError struct {
	Op        string
	URL       string
	Err       error
	Timestamp time.Time
	Attempts  int
}

func (e *ConnError) Error() string {
	if e.Attempts > 0 {
		return fmt.Sprintf("amqp connection error: %s failed after %d attempts: %v", e.Op, e.Attempts, e.Err)
	}
	return fmt.Sprintf("amqp connection error: %s failed: %v", e.Op, e.Err)
}

func (e *ConnError) Unwrap() error {
	return e.Err
}

// SanitizeURL removes credentials from a broker URL before it is logged.
func SanitizeURL(url string) string {
	if len(url) > 20 {
		return url[:10] + "***" + url[len(url)-10:]
	}
	return "***"
}
