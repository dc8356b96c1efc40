// Package console renders reports to a terminal, coloring them by severity.
// Color is dropped automatically when the destination is not a TTY.
package console

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"

	"github.com/accellera-official/uvm-core/contracts"
	"github.com/accellera-official/uvm-core/sinks"
)

// Option configures a console sink.
type Option func(*Sink)

// WithWriter redirects output away from stdout.
func WithWriter(w io.Writer) Option {
	return func(s *Sink) {
		s.w = w
	}
}

// WithColor forces coloring on or off regardless of TTY detection.
func WithColor(enabled bool) Option {
	return func(s *Sink) {
		s.forced = true
		s.colored = enabled
	}
}

// Sink writes severity-colored report lines to a terminal.
type Sink struct {
	mu      sync.Mutex
	w       io.Writer
	styles  map[contracts.Severity]*color.Color
	forced  bool
	colored bool
}

// New creates a console sink writing to stdout.
func New(opts ...Option) *Sink {
	s := &Sink{
		w: os.Stdout,
		styles: map[contracts.Severity]*color.Color{
			contracts.SeverityFatal:   color.New(color.FgRed, color.Bold),
			contracts.SeverityError:   color.New(color.FgRed),
			contracts.SeverityWarning: color.New(color.FgYellow),
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.forced {
		for _, c := range s.styles {
			if s.colored {
				c.EnableColor()
			} else {
				c.DisableColor()
			}
		}
	}
	return s
}

// Write implements sinks.Sink.
func (s *Sink) Write(_ context.Context, r *contracts.Report, composed string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if style, ok := s.styles[r.Severity]; ok {
		_, err := style.Fprintln(s.w, composed)
		return err
	}
	_, err := fmt.Fprintln(s.w, composed)
	return err
}

// Close implements sinks.Sink.
func (s *Sink) Close() error {
	return nil
}

var _ sinks.Sink = (*Sink)(nil)
